package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "itinerary_engine",
			Name:      "mutations_total",
			Help:      "Trip mutations applied through the engine write path.",
		},
		[]string{"op"},
	)

	migratedTripsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "itinerary_engine",
			Name:      "guest_trips_migrated_total",
			Help:      "Local-only trips uploaded to the cloud store on sign-in.",
		},
	)
)
