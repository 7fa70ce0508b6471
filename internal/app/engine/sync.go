package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/ports/out/remotestore"
)

// Queue operation names. They are persisted in the sync queue, so renaming
// one is a migration.
const (
	OpTripCreate = "trip.create"
	OpTripUpdate = "trip.update"
	OpTripDelete = "trip.delete"
)

// QueuePayload is the serialized form of one pending cloud operation.
// Creates carry the full trip, updates carry a patch, deletes only the id.
type QueuePayload struct {
	TripID domain.TripID     `json:"tripId"`
	Trip   *domain.Trip      `json:"trip,omitempty"`
	Patch  *domain.TripPatch `json:"patch,omitempty"`
}

func EncodePayload(p QueuePayload) (json.RawMessage, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal queue payload: %w", err)
	}
	return raw, nil
}

func DecodePayload(raw json.RawMessage) (QueuePayload, error) {
	var p QueuePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return QueuePayload{}, fmt.Errorf("unmarshal queue payload: %w", err)
	}
	if p.TripID == "" {
		return QueuePayload{}, errors.New("queue payload has no trip id")
	}
	return p, nil
}

// Deliver applies one queued operation to the cloud store. Outcomes that
// cannot improve with retries count as success: a create that already exists
// was delivered by an earlier attempt, and an update or delete for a trip the
// cloud no longer has is moot.
func Deliver(ctx context.Context, store remotestore.Store, owner domain.OwnerID, op string, p QueuePayload) error {
	switch op {
	case OpTripCreate:
		if p.Trip == nil {
			return errors.New("create payload has no trip")
		}
		err := store.Create(ctx, *p.Trip, owner)
		if errors.Is(err, remotestore.ErrAlreadyExists) {
			return nil
		}
		return err

	case OpTripUpdate:
		if p.Patch == nil {
			return errors.New("update payload has no patch")
		}
		err := store.Update(ctx, p.TripID, *p.Patch, owner)
		if errors.Is(err, remotestore.ErrNotFound) {
			return nil
		}
		return err

	case OpTripDelete:
		err := store.Delete(ctx, p.TripID, owner)
		if errors.Is(err, remotestore.ErrNotFound) {
			return nil
		}
		return err

	default:
		return fmt.Errorf("unknown queue operation %q", op)
	}
}
