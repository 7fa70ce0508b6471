package syncworker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "itinerary_engine",
			Subsystem: "syncworker",
			Name:      "delivered_total",
			Help:      "Queue entries acknowledged by the cloud store.",
		},
		[]string{"op"},
	)

	failuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "itinerary_engine",
			Subsystem: "syncworker",
			Name:      "delivery_failures_total",
			Help:      "Delivery attempts rejected by the cloud store.",
		},
		[]string{"op"},
	)

	droppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "itinerary_engine",
			Subsystem: "syncworker",
			Name:      "dropped_total",
			Help:      "Queue entries dropped because their payload could not be decoded.",
		},
	)

	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "itinerary_engine",
			Subsystem: "syncworker",
			Name:      "queue_depth",
			Help:      "Entries currently pending in the sync queue.",
		},
	)
)
