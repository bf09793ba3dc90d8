package core

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

// GeocodeEmployee resolves an employee's home address and persists the
// resulting coordinates.
func (s *Service) GeocodeEmployee(ctx context.Context, employeeID string) (*allowance.GeoPoint, error) {
	emp, err := s.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(emp.HomeAddress) == "" {
		return nil, ErrNoAddress
	}

	lat, lon, err := s.Geocoder.Geocode(ctx, emp.HomeAddress)
	if err != nil {
		return nil, err
	}

	point := allowance.GeoPoint{Latitude: lat, Longitude: lon}
	if err := s.Store.UpdateHomeLocation(ctx, employeeID, point); err != nil {
		return nil, err
	}
	return &point, nil
}
