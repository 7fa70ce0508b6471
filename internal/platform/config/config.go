// Package config loads process configuration from PLANNER_-prefixed
// environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// HTTPAddr is the listen address of the API server.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// LocalBackend selects the on-device store: "sqlite" or "memory".
	LocalBackend string `envconfig:"LOCAL_BACKEND" default:"sqlite"`

	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string `envconfig:"SQLITE_PATH" default:"itinerary.db"`

	// RemoteBackend selects the cloud store: "postgres" or "memory".
	RemoteBackend string `envconfig:"REMOTE_BACKEND" default:"memory"`

	// PostgresDSN is required for the postgres remote backend.
	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	// GeocoderURL points at a Nominatim-compatible search endpoint.
	GeocoderURL string `envconfig:"GEOCODER_URL" default:"https://nominatim.openstreetmap.org"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

func Load() (Config, error) {
	var c Config
	if err := envconfig.Process("planner", &c); err != nil {
		return Config{}, fmt.Errorf("load configuration: %w", err)
	}
	if c.RemoteBackend == "postgres" && c.PostgresDSN == "" {
		return Config{}, fmt.Errorf("PLANNER_POSTGRES_DSN is required for the postgres backend")
	}
	return c, nil
}
