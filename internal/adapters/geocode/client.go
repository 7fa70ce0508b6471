// Package geocode resolves free-text place names against a Nominatim-style
// search endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/roamplan/itinerary-engine/internal/ports/out/geocoder"
)

const defaultTimeout = 5 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

type searchResult struct {
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (c *Client) Geocode(ctx context.Context, query string) (geocoder.Place, error) {
	u, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return geocoder.Place{}, fmt.Errorf("geocoder url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return geocoder.Place{}, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return geocoder.Place{}, fmt.Errorf("geocode %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geocoder.Place{}, fmt.Errorf("geocode %q: unexpected status %d", query, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return geocoder.Place{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return geocoder.Place{}, geocoder.ErrNotFound
	}

	r := results[0]
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return geocoder.Place{}, fmt.Errorf("parse latitude %q: %w", r.Lat, err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return geocoder.Place{}, fmt.Errorf("parse longitude %q: %w", r.Lon, err)
	}

	name := r.Name
	if name == "" {
		name = query
	}
	return geocoder.Place{
		Name:      name,
		Address:   r.DisplayName,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}
