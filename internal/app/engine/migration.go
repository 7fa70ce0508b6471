package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/ports/out/remotestore"
)

// migrateGuestTrips uploads every local-only trip to the cloud store for the
// signed-in owner. The order is strict: cloud create first, then the local
// synced mark, then the in-memory flag, so a crash at any point leaves the
// trip still local-only and the next sign-in retries. A create that already
// exists counts as success, which makes the whole migration idempotent.
func (s *Service) migrateGuestTrips(ctx context.Context, owner domain.OwnerID) error {
	guests, err := s.local.GetLocalOnly(ctx)
	if err != nil {
		return fmt.Errorf("list guest trips: %w", err)
	}

	var failed int
	for _, t := range guests {
		t := t.Clone()
		t.IsLocalOnly = false

		err := s.remote.Create(ctx, t, owner)
		if err != nil && !errors.Is(err, remotestore.ErrAlreadyExists) {
			failed++
			s.log.Warn("migrate guest trip", "trip_id", t.ID, "error", err)
			continue
		}
		if err := s.local.MarkAsSynced(ctx, t.ID); err != nil {
			failed++
			s.log.Warn("mark trip as synced", "trip_id", t.ID, "error", err)
			continue
		}

		s.mu.Lock()
		if cur, ok := s.trips[t.ID]; ok {
			cur.IsLocalOnly = false
			s.trips[t.ID] = cur
		}
		s.mu.Unlock()
		migratedTripsTotal.Inc()
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d guest trips not migrated", failed, len(guests))
	}
	if len(guests) > 0 {
		s.log.Info("guest trips migrated", "count", len(guests)-failed)
		s.notify(Event{Type: EventTripsChanged})
	}
	return nil
}
