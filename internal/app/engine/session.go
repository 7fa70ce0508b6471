package engine

import (
	"context"
	"fmt"

	"github.com/roamplan/itinerary-engine/internal/domain"
)

// SignIn establishes a session for owner: guest trips are migrated to the
// cloud, then a live subscription starts pushing the owner's authoritative
// trip list into local state. Migration failures do not abort sign-in; the
// affected trips stay local-only and a later sign-in retries them.
func (s *Service) SignIn(ctx context.Context, owner domain.OwnerID) error {
	if owner == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}

	s.mu.Lock()
	if s.hasSession && s.owner == owner {
		s.mu.Unlock()
		return nil
	}
	prevUnsub := s.unsub
	s.owner = owner
	s.hasSession = true
	s.unsub = nil
	s.mu.Unlock()

	if prevUnsub != nil {
		prevUnsub()
	}

	if err := s.migrateGuestTrips(ctx, owner); err != nil {
		s.log.Warn("guest trip migration incomplete", "owner", owner, "error", err)
	}

	// The subscription delivers the initial list synchronously on some
	// backends, so it must start outside the state lock.
	unsub, err := s.remote.SubscribeToTrips(ctx, owner,
		func(trips []domain.Trip) { s.handleRemoteTrips(context.Background(), trips) },
		func(err error) { s.log.Warn("cloud subscription error", "owner", owner, "error", err) },
	)
	if err != nil {
		s.log.Warn("cloud subscription unavailable, queue delivery only", "owner", owner, "error", err)
	} else {
		s.mu.Lock()
		stillSignedIn := s.hasSession && s.owner == owner
		if stillSignedIn {
			s.unsub = unsub
		}
		s.mu.Unlock()
		if !stillSignedIn {
			unsub()
		}
	}

	s.notify(Event{Type: EventSessionChanged})
	return nil
}

// SignOut drops the session and the live subscription. Local state and the
// sync queue are kept; pending entries deliver on the next sign-in.
func (s *Service) SignOut(_ context.Context) {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.owner = ""
	s.hasSession = false
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	s.notify(Event{Type: EventSessionChanged})
}

// handleRemoteTrips reconciles a pushed authoritative trip list with local
// state. Each remote trip replaces the local copy only when it is strictly
// newer (later UpdatedAt, or same UpdatedAt with a higher version), so a
// device's own unsynced edits are never clobbered by an echo of older state.
// Trips absent from the push are left alone; deletion never propagates
// implicitly.
func (s *Service) handleRemoteTrips(ctx context.Context, remote []domain.Trip) {
	changed := false
	for _, rt := range remote {
		rt := rt.Clone()
		rt.IsLocalOnly = false

		s.mu.Lock()
		cur, exists := s.trips[rt.ID]
		if exists && !remoteWins(cur, rt) {
			s.mu.Unlock()
			continue
		}

		var err error
		if exists {
			err = s.local.Update(ctx, rt.ID, fullPatch(rt))
		} else {
			err = s.local.Create(ctx, rt)
		}
		if err != nil {
			s.mu.Unlock()
			s.log.Error("persist pushed trip", "trip_id", rt.ID, "error", err)
			continue
		}
		s.trips[rt.ID] = rt
		s.mu.Unlock()
		changed = true
	}

	if changed {
		s.notify(Event{Type: EventTripsChanged})
	}
}

// remoteWins decides whether a pushed trip supersedes the local copy.
func remoteWins(local, remote domain.Trip) bool {
	if remote.UpdatedAt.After(local.UpdatedAt) {
		return true
	}
	return remote.UpdatedAt.Equal(local.UpdatedAt) && remote.Version > local.Version
}

// fullPatch expresses a whole trip as a patch, for replacing a local copy
// with a pushed one through the store's update path.
func fullPatch(t domain.Trip) domain.TripPatch {
	it := t.Itinerary.Clone()
	return domain.TripPatch{
		Title:          &t.Title,
		Description:    &t.Description,
		Destination:    &t.Destination,
		StartDate:      &t.StartDate,
		EndDate:        &t.EndDate,
		Timezone:       &t.Timezone,
		Status:         &t.Status,
		Currency:       &t.Currency,
		Flags:          t.Flags,
		IsLocalOnly:    &t.IsLocalOnly,
		Version:        &t.Version,
		Itinerary:      &it,
		UpdatedAt:      &t.UpdatedAt,
		LastAccessedAt: &t.LastAccessedAt,
	}
}
