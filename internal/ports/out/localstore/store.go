package localstore

import (
	"context"
	"time"

	"github.com/roamplan/itinerary-engine/internal/domain"
)

// Store is the durable client-side trip store. It must survive process
// restarts; the engine treats it as the source of truth for the active
// session and never updates in-memory state before a write here succeeds.
type Store interface {
	Create(ctx context.Context, t domain.Trip) error

	// Update applies a partial update to an existing trip.
	Update(ctx context.Context, id domain.TripID, p domain.TripPatch) error

	Delete(ctx context.Context, id domain.TripID) error

	GetByID(ctx context.Context, id domain.TripID) (domain.Trip, error)
	GetAll(ctx context.Context) ([]domain.Trip, error)

	// GetLocalOnly returns trips that have never been written to the cloud.
	GetLocalOnly(ctx context.Context) ([]domain.Trip, error)

	// MarkAsSynced clears the local-only flag after a confirmed remote create.
	MarkAsSynced(ctx context.Context, id domain.TripID) error

	// Touch records when a trip was last opened.
	Touch(ctx context.Context, id domain.TripID, at time.Time) error
}
