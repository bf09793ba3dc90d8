package catalog

import (
	"context"
	"errors"
	"strings"

	"mileage/internal/domain/allowance"
)

var ErrNoAddress = errors.New("no address to geocode")

type Geocoder interface {
	Geocode(ctx context.Context, address string) (lat, lon float64, err error)
}

type Service struct {
	Store    *Store
	Geocoder Geocoder
}

func NewService(store *Store, geocoder Geocoder) *Service {
	return &Service{Store: store, Geocoder: geocoder}
}

// GeocodeSubproject resolves a subproject's address and persists the
// resulting coordinates.
func (s *Service) GeocodeSubproject(ctx context.Context, subprojectID string) (*allowance.GeoPoint, error) {
	sp, err := s.Store.GetSubproject(ctx, subprojectID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sp.Address) == "" {
		return nil, ErrNoAddress
	}

	lat, lon, err := s.Geocoder.Geocode(ctx, sp.Address)
	if err != nil {
		return nil, err
	}

	point := allowance.GeoPoint{Latitude: lat, Longitude: lon}
	if err := s.Store.UpdateSubprojectLocation(ctx, subprojectID, point); err != nil {
		return nil, err
	}
	return &point, nil
}
