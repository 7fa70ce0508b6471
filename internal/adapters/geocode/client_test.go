package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/roamplan/itinerary-engine/internal/ports/out/geocoder"
)

func TestGeocode_ResolvesFirstResult(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Lisbon" {
			t.Errorf("q = %q, want Lisbon", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"Lisbon","display_name":"Lisbon, Portugal","lat":"38.7223","lon":"-9.1393"}]`))
	}))
	defer srv.Close()

	place, err := NewClient(srv.URL).Geocode(context.Background(), "Lisbon")
	if err != nil {
		t.Fatalf("Geocode: %v", err)
	}
	if place.Name != "Lisbon" || place.Address != "Lisbon, Portugal" {
		t.Fatalf("place = %+v", place)
	}
	if place.Latitude != 38.7223 || place.Longitude != -9.1393 {
		t.Fatalf("coords = %v,%v", place.Latitude, place.Longitude)
	}
}

func TestGeocode_NoMatch(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Geocode(context.Background(), "Atlantis")
	if !errors.Is(err, geocoder.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGeocode_ServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Geocode(context.Background(), "Lisbon"); err == nil {
		t.Fatal("want error on upstream failure")
	}
}
