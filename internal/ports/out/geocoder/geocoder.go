package geocoder

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("place not found")

// Place is a resolved free-text place name.
type Place struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
}

// Geocoder resolves a free-text place name to coordinates and a formatted
// address. The engine treats failures as soft: it proceeds with a
// placeholder location rather than aborting the edit.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Place, error)
}
