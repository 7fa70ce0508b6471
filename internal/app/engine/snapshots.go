package engine

import (
	"context"

	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/planner"
)

const maxSnapshots = 50

// snapshot is a full copy of a trip's day sequence before a structural edit.
// Full copies keep undo independent of how the edit was expressed.
type snapshot struct {
	label string
	days  []domain.Day
}

// history holds per-trip undo and redo stacks. A fresh structural edit clears
// the redo stack, so history stays linear.
type history struct {
	undo []snapshot
	redo []snapshot
}

func (s *Service) pushSnapshotLocked(id domain.TripID, label string, days []domain.Day) {
	h := s.hist[id]
	if h == nil {
		h = &history{}
		s.hist[id] = h
	}
	h.undo = append(h.undo, snapshot{label: label, days: domain.CloneDays(days)})
	if len(h.undo) > maxSnapshots {
		h.undo = h.undo[len(h.undo)-maxSnapshots:]
	}
	h.redo = nil
}

// CanUndo reports whether the trip has a structural edit to revert, and the
// label of that edit.
func (s *Service) CanUndo(id domain.TripID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.hist[id]
	if h == nil || len(h.undo) == 0 {
		return "", false
	}
	return h.undo[len(h.undo)-1].label, true
}

// CanRedo reports whether the trip has a reverted edit to reapply.
func (s *Service) CanRedo(id domain.TripID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.hist[id]
	if h == nil || len(h.redo) == 0 {
		return "", false
	}
	return h.redo[len(h.redo)-1].label, true
}

// Undo restores the day sequence from before the trip's latest structural
// edit. The restored sequence is renumbered against the current start date,
// persisted and synchronized like any other edit.
func (s *Service) Undo(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	s.mu.Lock()
	h := s.hist[id]
	if h == nil || len(h.undo) == 0 {
		s.mu.Unlock()
		return domain.Trip{}, ErrNothingToUndo
	}
	snap := h.undo[len(h.undo)-1]

	var redoSnap snapshot
	next, patch, err := s.applyTripChangeLocked(ctx, id, "", func(t *domain.Trip) (domain.TripPatch, error) {
		redoSnap = snapshot{label: snap.label, days: domain.CloneDays(t.Itinerary.Days)}
		days, end := planner.Renumber(snap.days, t.StartDate)
		t.Itinerary.Days = days
		t.EndDate = end
		return s.itineraryPatch(t), nil
	})
	if err != nil {
		s.mu.Unlock()
		return domain.Trip{}, err
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, redoSnap)
	localOnly := next.IsLocalOnly
	s.mu.Unlock()

	mutationsTotal.WithLabelValues("trip.undo").Inc()
	s.syncPatch(ctx, id, patch, localOnly)
	s.notify(Event{Type: EventTripsChanged, TripID: id})
	return next, nil
}

// Redo reapplies the most recently undone structural edit.
func (s *Service) Redo(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	s.mu.Lock()
	h := s.hist[id]
	if h == nil || len(h.redo) == 0 {
		s.mu.Unlock()
		return domain.Trip{}, ErrNothingToRedo
	}
	snap := h.redo[len(h.redo)-1]

	var undoSnap snapshot
	next, patch, err := s.applyTripChangeLocked(ctx, id, "", func(t *domain.Trip) (domain.TripPatch, error) {
		undoSnap = snapshot{label: snap.label, days: domain.CloneDays(t.Itinerary.Days)}
		days, end := planner.Renumber(snap.days, t.StartDate)
		t.Itinerary.Days = days
		t.EndDate = end
		return s.itineraryPatch(t), nil
	})
	if err != nil {
		s.mu.Unlock()
		return domain.Trip{}, err
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, undoSnap)
	localOnly := next.IsLocalOnly
	s.mu.Unlock()

	mutationsTotal.WithLabelValues("trip.redo").Inc()
	s.syncPatch(ctx, id, patch, localOnly)
	s.notify(Event{Type: EventTripsChanged, TripID: id})
	return next, nil
}
