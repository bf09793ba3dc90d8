package allowance

import (
	"errors"
	"math"
	"testing"
)

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	p := GeoPoint{Latitude: 47.3769, Longitude: 8.5417}
	d, err := Distance(p, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	zurich := GeoPoint{Latitude: 47.3769, Longitude: 8.5417}
	geneva := GeoPoint{Latitude: 46.2044, Longitude: 6.1432}

	forward, err := Distance(zurich, geneva)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	backward, err := Distance(geneva, zurich)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(forward-backward) > 1e-9 {
		t.Fatalf("expected symmetric distance, got %f and %f", forward, backward)
	}
}

func TestDistanceZurichGeneva(t *testing.T) {
	zurich := GeoPoint{Latitude: 47.3769, Longitude: 8.5417}
	geneva := GeoPoint{Latitude: 46.2044, Longitude: 6.1432}

	d, err := Distance(zurich, geneva)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d < 220 || d > 230 {
		t.Fatalf("expected roughly 225 km between Zurich and Geneva, got %f", d)
	}
}

func TestDistanceRejectsOutOfRangeCoordinates(t *testing.T) {
	cases := []struct {
		name string
		from GeoPoint
		to   GeoPoint
	}{
		{"latitude too high", GeoPoint{Latitude: 91, Longitude: 0}, GeoPoint{}},
		{"latitude too low", GeoPoint{Latitude: -91, Longitude: 0}, GeoPoint{}},
		{"longitude too high", GeoPoint{}, GeoPoint{Latitude: 0, Longitude: 181}},
		{"longitude too low", GeoPoint{}, GeoPoint{Latitude: 0, Longitude: -181}},
	}
	for _, tc := range cases {
		if _, err := Distance(tc.from, tc.to); !errors.Is(err, ErrInvalidCoordinates) {
			t.Fatalf("%s: expected ErrInvalidCoordinates, got %v", tc.name, err)
		}
	}
}

func TestValidAcceptsBoundaryValues(t *testing.T) {
	boundary := []GeoPoint{
		{Latitude: 90, Longitude: 180},
		{Latitude: -90, Longitude: -180},
		{Latitude: 0, Longitude: 0},
	}
	for _, p := range boundary {
		if !p.Valid() {
			t.Fatalf("expected %+v to be valid", p)
		}
	}
}
