package remotestore

import (
	"context"

	"github.com/roamplan/itinerary-engine/internal/domain"
)

// ChangeHandler receives the authoritative trip list for the subscribed owner.
type ChangeHandler func(trips []domain.Trip)

// ErrorHandler receives subscription delivery failures.
type ErrorHandler func(err error)

// Unsubscribe tears down a live subscription. Safe to call more than once.
type Unsubscribe func()

// Store is the cloud trip store, keyed by owning user. The engine only
// depends on this contract; the wire format behind it is the adapter's
// concern.
type Store interface {
	Create(ctx context.Context, t domain.Trip, owner domain.OwnerID) error
	Update(ctx context.Context, id domain.TripID, p domain.TripPatch, owner domain.OwnerID) error
	Delete(ctx context.Context, id domain.TripID, owner domain.OwnerID) error

	ListByOwner(ctx context.Context, owner domain.OwnerID) ([]domain.Trip, error)

	// SubscribeToTrips pushes the owner's authoritative trip list to onChange
	// whenever it changes, starting with the current list. Delivery failures
	// go to onError; the subscription itself stays up until unsubscribed.
	SubscribeToTrips(ctx context.Context, owner domain.OwnerID, onChange ChangeHandler, onError ErrorHandler) (Unsubscribe, error)
}
