package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeocodeParsesFirstResult(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"47.3769","lon":"8.5417"},{"lat":"0","lon":"0"}]`))
	}))
	defer ts.Close()

	client := New(ts.URL)
	lat, lon, err := client.Geocode(context.Background(), "Bahnhofstrasse 1, Zurich")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "Bahnhofstrasse 1, Zurich" {
		t.Fatalf("expected address in query, got %q", gotQuery)
	}
	if lat != 47.3769 || lon != 8.5417 {
		t.Fatalf("expected 47.3769/8.5417, got %f/%f", lat, lon)
	}
}

func TestGeocodeNoResults(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client := New(ts.URL)
	if _, _, err := client.Geocode(context.Background(), "nowhere"); !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
}

func TestGeocodeNonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := New(ts.URL)
	if _, _, err := client.Geocode(context.Background(), "anywhere"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestGeocodeBadCoordinatePayload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"not-a-number","lon":"8.5417"}]`))
	}))
	defer ts.Close()

	client := New(ts.URL)
	if _, _, err := client.Geocode(context.Background(), "somewhere"); err == nil {
		t.Fatal("expected error for unparseable latitude")
	}
}
