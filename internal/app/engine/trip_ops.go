package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/planner"
	"github.com/roamplan/itinerary-engine/internal/ports/out/remotestore"
)

// CreateTrip builds a trip with one empty day per calendar day of the range
// and persists it locally before anything else. With a session the cloud
// create is awaited and the trip is marked synced on success, a failure
// falls back to the queue; without a session the trip stays local-only
// until sign-in migration uploads it.
func (s *Service) CreateTrip(ctx context.Context, in CreateTripInput) (domain.Trip, error) {
	title := domain.NormalizeTitle(in.Title)
	if title == "" {
		return domain.Trip{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	start := domain.DateOnly(in.StartDate)
	end := domain.DateOnly(in.EndDate)
	if end.Before(start) {
		return domain.Trip{}, ErrInvalidDateRange
	}

	now := s.clk.Now()
	span := domain.DaySpan(start, end)
	days := make([]domain.Day, span)
	for i := range days {
		days[i] = domain.Day{
			ID:         s.ids.NewDayID(),
			DayNumber:  i + 1,
			Date:       domain.AddDays(start, i),
			Activities: []domain.Activity{},
		}
	}

	t := domain.Trip{
		ID:          s.ids.NewTripID(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Destination: strings.TrimSpace(in.Destination),
		StartDate:   start,
		EndDate:     end,
		Timezone:    in.Timezone,
		Currency:    in.Currency,
		IsLocalOnly: true,
		Version:     1,
		Itinerary:   domain.Itinerary{Days: days},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	t.Status = t.DeriveStatus(now)

	if err := s.local.Create(ctx, t); err != nil {
		return domain.Trip{}, err
	}

	s.mu.Lock()
	s.trips[t.ID] = t.Clone()
	s.mu.Unlock()

	if owner, online := s.Session(); online {
		up := t.Clone()
		up.IsLocalOnly = false
		err := s.remote.Create(ctx, up, owner)
		switch {
		case err != nil && !errors.Is(err, remotestore.ErrAlreadyExists):
			s.log.Warn("direct cloud create failed, queueing", "trip_id", t.ID, "error", err)
			s.enqueue(ctx, OpTripCreate, QueuePayload{TripID: t.ID, Trip: &up})
		default:
			if err := s.MarkTripSynced(ctx, t.ID); err != nil {
				s.log.Warn("mark trip as synced", "trip_id", t.ID, "error", err)
			} else {
				t.IsLocalOnly = false
			}
		}
	}

	mutationsTotal.WithLabelValues("trip.create").Inc()
	s.notify(Event{Type: EventTripsChanged, TripID: t.ID})
	return t.Clone(), nil
}

// UpdateTrip applies a partial metadata update. Changing the start date
// shifts every day's date and the end date; the day count is preserved.
func (s *Service) UpdateTrip(ctx context.Context, id domain.TripID, in UpdateTripInput) (domain.Trip, error) {
	return s.applyTripChange(ctx, id, "trip.update", "", func(t *domain.Trip) (domain.TripPatch, error) {
		var p domain.TripPatch

		if in.Title.IsSpecified() {
			if in.Title.IsNull() {
				return p, fmt.Errorf("%w: title cannot be null", ErrInvalidInput)
			}
			title := domain.NormalizeTitle(in.Title.Value())
			if title == "" {
				return p, fmt.Errorf("%w: title is required", ErrInvalidInput)
			}
			t.Title = title
			p.Title = &title
		}
		if in.Description.IsSpecified() {
			desc := ""
			if !in.Description.IsNull() {
				desc = strings.TrimSpace(in.Description.Value())
			}
			t.Description = desc
			p.Description = &desc
		}
		if in.Destination.IsSpecified() {
			dest := ""
			if !in.Destination.IsNull() {
				dest = strings.TrimSpace(in.Destination.Value())
			}
			t.Destination = dest
			p.Destination = &dest
		}
		if in.Timezone.IsSpecified() {
			tz := ""
			if !in.Timezone.IsNull() {
				tz = in.Timezone.Value()
			}
			t.Timezone = tz
			p.Timezone = &tz
		}
		if in.Status.IsSpecified() {
			if in.Status.IsNull() {
				return p, fmt.Errorf("%w: status cannot be null", ErrInvalidInput)
			}
			st := in.Status.Value()
			t.Status = st
			p.Status = &st
		}
		if in.Currency.IsSpecified() {
			cur := ""
			if !in.Currency.IsNull() {
				cur = in.Currency.Value()
			}
			t.Currency = cur
			p.Currency = &cur
		}
		if in.Flags.IsSpecified() {
			flags := map[string]bool{}
			if !in.Flags.IsNull() {
				flags = in.Flags.Value()
			}
			t.Flags = flags
			p.Flags = flags
		}
		if in.StartDate.IsSpecified() {
			if in.StartDate.IsNull() {
				return p, fmt.Errorf("%w: start date cannot be null", ErrInvalidInput)
			}
			start := domain.DateOnly(in.StartDate.Value())
			days, end := planner.Renumber(t.Itinerary.Days, start)
			t.StartDate = start
			t.EndDate = end
			t.Itinerary.Days = days
			p.StartDate = &start
			p.EndDate = &end
			it := t.Itinerary.Clone()
			p.Itinerary = &it
		}
		return p, nil
	})
}

// DeleteTrip removes a trip everywhere: local store, in-memory state, any of
// its still-pending queue entries, and the cloud copy (directly when online,
// queued otherwise). Trips that never reached the cloud skip the remote leg.
func (s *Service) DeleteTrip(ctx context.Context, id domain.TripID) error {
	s.mu.Lock()
	t, ok := s.trips[id]
	if !ok {
		s.mu.Unlock()
		return ErrTripNotFound
	}
	if err := s.local.Delete(ctx, id); err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.trips, id)
	delete(s.hist, id)
	wasActive := s.activeID == id
	if wasActive {
		s.activeID = ""
	}
	localOnly := t.IsLocalOnly
	s.mu.Unlock()

	s.dropQueuedFor(ctx, id)

	if !localOnly {
		owner, online := s.Session()
		if online {
			if err := s.remote.Delete(ctx, id, owner); err != nil && !errors.Is(err, remotestore.ErrNotFound) {
				s.log.Warn("direct cloud delete failed, queueing", "trip_id", id, "error", err)
				s.enqueue(ctx, OpTripDelete, QueuePayload{TripID: id})
			}
		} else {
			s.enqueue(ctx, OpTripDelete, QueuePayload{TripID: id})
		}
	}

	mutationsTotal.WithLabelValues("trip.delete").Inc()
	s.notify(Event{Type: EventTripsChanged, TripID: id})
	if wasActive {
		s.notify(Event{Type: EventActiveTripChanged})
	}
	return nil
}

// dropQueuedFor acks every pending queue entry that targets the given trip.
// Deleting a trip makes its queued creates and updates moot.
func (s *Service) dropQueuedFor(ctx context.Context, id domain.TripID) {
	entries, err := s.queue.List(ctx)
	if err != nil {
		s.log.Warn("list sync queue for cascade", "trip_id", id, "error", err)
		return
	}
	for _, e := range entries {
		p, err := DecodePayload(e.Payload)
		if err != nil || p.TripID != id {
			continue
		}
		if e.Op == OpTripDelete {
			continue
		}
		if err := s.queue.Ack(ctx, e.ID); err != nil {
			s.log.Warn("drop queued entry", "entry_id", e.ID, "trip_id", id, "error", err)
		}
	}
}

// ReplaceItinerary swaps in a whole new day sequence, assigning ids to days
// and activities that lack one, then renumbering from the trip start date.
func (s *Service) ReplaceItinerary(ctx context.Context, id domain.TripID, it domain.Itinerary) (domain.Trip, error) {
	return s.applyTripChange(ctx, id, "itinerary.replace", "replace itinerary", func(t *domain.Trip) (domain.TripPatch, error) {
		if len(it.Days) == 0 {
			return domain.TripPatch{}, fmt.Errorf("%w: itinerary needs at least one day", ErrInvalidInput)
		}
		days := domain.CloneDays(it.Days)
		for i := range days {
			if days[i].ID == "" {
				days[i].ID = s.ids.NewDayID()
			}
			if days[i].Activities == nil {
				days[i].Activities = []domain.Activity{}
			}
			for j := range days[i].Activities {
				if days[i].Activities[j].ID == "" {
					days[i].Activities[j].ID = s.ids.NewActivityID()
				}
			}
		}
		days, end := planner.Renumber(days, t.StartDate)
		t.Itinerary = domain.Itinerary{Title: it.Title, Days: days}
		t.EndDate = end
		return s.itineraryPatch(t), nil
	})
}

// itineraryPatch builds the patch for a structural edit: the full itinerary
// plus the recomputed end date.
func (s *Service) itineraryPatch(t *domain.Trip) domain.TripPatch {
	it := t.Itinerary.Clone()
	end := t.EndDate
	return domain.TripPatch{Itinerary: &it, EndDate: &end}
}
