// Package engine implements the trip mutation and synchronization engine.
// All writes follow the same local-first path: compute the next state, persist
// it locally, update in-memory state, then deliver to the cloud store either
// directly or through the durable sync queue.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/ports/out/clock"
	"github.com/roamplan/itinerary-engine/internal/ports/out/geocoder"
	"github.com/roamplan/itinerary-engine/internal/ports/out/idgen"
	"github.com/roamplan/itinerary-engine/internal/ports/out/localstore"
	"github.com/roamplan/itinerary-engine/internal/ports/out/remotestore"
	"github.com/roamplan/itinerary-engine/internal/ports/out/syncqueue"
)

// Service owns the in-memory trip state and coordinates the local store, the
// sync queue and the cloud store. All exported methods are safe for
// concurrent use.
type Service struct {
	local  localstore.Store
	remote remotestore.Store
	queue  syncqueue.Queue
	ids    idgen.Generator
	geo    geocoder.Geocoder
	clk    clock.Clock
	log    *slog.Logger

	mu       sync.Mutex
	trips    map[domain.TripID]domain.Trip
	activeID domain.TripID
	hist     map[domain.TripID]*history

	owner      domain.OwnerID
	hasSession bool
	unsub      remotestore.Unsubscribe

	lmu       sync.Mutex
	listeners map[int]Listener
	nextLID   int
}

func NewService(
	local localstore.Store,
	remote remotestore.Store,
	queue syncqueue.Queue,
	ids idgen.Generator,
	geo geocoder.Geocoder,
	clk clock.Clock,
	log *slog.Logger,
) *Service {
	return &Service{
		local:     local,
		remote:    remote,
		queue:     queue,
		ids:       ids,
		geo:       geo,
		clk:       clk,
		log:       log,
		trips:     make(map[domain.TripID]domain.Trip),
		hist:      make(map[domain.TripID]*history),
		listeners: make(map[int]Listener),
	}
}

// Load hydrates the in-memory state from the local store. Call once at
// startup, before serving requests.
func (s *Service) Load(ctx context.Context) error {
	trips, err := s.local.GetAll(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	for _, t := range trips {
		s.trips[t.ID] = t
	}
	s.mu.Unlock()
	s.log.Info("trips loaded from local store", "count", len(trips))
	return nil
}

// Subscribe registers an observer for engine events. The returned function
// removes it.
func (s *Service) Subscribe(l Listener) func() {
	s.lmu.Lock()
	id := s.nextLID
	s.nextLID++
	s.listeners[id] = l
	s.lmu.Unlock()
	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Service) notify(ev Event) {
	s.lmu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.lmu.Unlock()
	for _, l := range ls {
		l(ev)
	}
}

// GetTrip returns a deep copy of the trip.
func (s *Service) GetTrip(_ context.Context, id domain.TripID) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[id]
	if !ok {
		return domain.Trip{}, ErrTripNotFound
	}
	return t.Clone(), nil
}

// TripSummaries returns the trip list sorted by start date, newest updates
// breaking ties.
func (s *Service) TripSummaries(_ context.Context) []TripSummary {
	s.mu.Lock()
	now := s.clk.Now()
	out := make([]TripSummary, 0, len(s.trips))
	for _, t := range s.trips {
		out = append(out, TripSummary{
			ID:          t.ID,
			Title:       t.Title,
			Destination: t.Destination,
			StartDate:   t.StartDate,
			EndDate:     t.EndDate,
			Status:      t.DeriveStatus(now),
			DayCount:    len(t.Itinerary.Days),
			IsLocalOnly: t.IsLocalOnly,
			UpdatedAt:   t.UpdatedAt,
		})
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SetActiveTrip selects the trip subsequent day and activity operations apply
// to, and records the access time.
func (s *Service) SetActiveTrip(ctx context.Context, id domain.TripID) error {
	now := s.clk.Now()

	s.mu.Lock()
	t, ok := s.trips[id]
	if !ok {
		s.mu.Unlock()
		return ErrTripNotFound
	}
	if err := s.local.Touch(ctx, id, now); err != nil {
		s.mu.Unlock()
		return err
	}
	t.LastAccessedAt = now
	s.trips[id] = t
	s.activeID = id
	s.mu.Unlock()

	s.notify(Event{Type: EventActiveTripChanged, TripID: id})
	return nil
}

// ClearActiveTrip deselects the active trip.
func (s *Service) ClearActiveTrip(_ context.Context) {
	s.mu.Lock()
	s.activeID = ""
	s.mu.Unlock()
	s.notify(Event{Type: EventActiveTripChanged})
}

// ActiveTrip returns a deep copy of the currently selected trip.
func (s *Service) ActiveTrip(_ context.Context) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[s.activeID]
	if !ok {
		return domain.Trip{}, ErrNoActiveTrip
	}
	return t.Clone(), nil
}

// ActiveTripDays returns the day sequence of the active trip.
func (s *Service) ActiveTripDays(_ context.Context) ([]domain.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[s.activeID]
	if !ok {
		return nil, ErrNoActiveTrip
	}
	return domain.CloneDays(t.Itinerary.Days), nil
}

func (s *Service) activeTripIDLocked() (domain.TripID, error) {
	if _, ok := s.trips[s.activeID]; !ok {
		return "", ErrNoActiveTrip
	}
	return s.activeID, nil
}

// Session reports the signed-in owner, if any. The sync worker uses it to
// decide whether queued entries can be delivered.
func (s *Service) Session() (domain.OwnerID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner, s.hasSession
}

// applyTripChangeLocked runs one step of the write path under s.mu: it clones
// the current trip, lets mutate produce the next state and its patch, stamps
// version and update time, persists locally and only then replaces the
// in-memory trip. A failed local write leaves memory untouched and nothing is
// queued. snapshotLabel, when non-empty, records the pre-edit day sequence on
// the undo stack.
func (s *Service) applyTripChangeLocked(
	ctx context.Context,
	id domain.TripID,
	snapshotLabel string,
	mutate func(t *domain.Trip) (domain.TripPatch, error),
) (domain.Trip, domain.TripPatch, error) {
	cur, ok := s.trips[id]
	if !ok {
		return domain.Trip{}, domain.TripPatch{}, ErrTripNotFound
	}

	next := cur.Clone()
	patch, err := mutate(&next)
	if err != nil {
		return domain.Trip{}, domain.TripPatch{}, err
	}

	now := s.clk.Now()
	version := cur.Version + 1
	next.Version = version
	next.UpdatedAt = now
	patch.Version = &version
	patch.UpdatedAt = &now

	if err := s.local.Update(ctx, id, patch); err != nil {
		return domain.Trip{}, domain.TripPatch{}, err
	}

	if snapshotLabel != "" {
		s.pushSnapshotLocked(id, snapshotLabel, cur.Itinerary.Days)
	}
	s.trips[id] = next
	return next.Clone(), patch, nil
}

// applyTripChange is the full write path: applyTripChangeLocked under the
// lock, then cloud delivery and observer notification outside it.
func (s *Service) applyTripChange(
	ctx context.Context,
	id domain.TripID,
	op string,
	snapshotLabel string,
	mutate func(t *domain.Trip) (domain.TripPatch, error),
) (domain.Trip, error) {
	s.mu.Lock()
	localOnly := false
	if cur, ok := s.trips[id]; ok {
		localOnly = cur.IsLocalOnly
	}
	next, patch, err := s.applyTripChangeLocked(ctx, id, snapshotLabel, mutate)
	s.mu.Unlock()
	if err != nil {
		return domain.Trip{}, err
	}

	mutationsTotal.WithLabelValues(op).Inc()
	s.syncPatch(ctx, id, patch, localOnly)
	s.notify(Event{Type: EventTripsChanged, TripID: id})
	return next, nil
}

// syncPatch delivers an update to the cloud store, falling back to the sync
// queue when there is no session or the direct write fails. Local-only trips
// are skipped entirely; their first cloud write happens via trip creation.
func (s *Service) syncPatch(ctx context.Context, id domain.TripID, patch domain.TripPatch, localOnly bool) {
	if localOnly {
		if !s.sessionActive() {
			return
		}
		// The initial upload is still pending, as a queued create or the
		// next migration pass, so queue the patch behind it.
		s.enqueue(ctx, OpTripUpdate, QueuePayload{TripID: id, Patch: &patch})
		return
	}

	owner, ok := s.Session()
	if !ok {
		s.enqueue(ctx, OpTripUpdate, QueuePayload{TripID: id, Patch: &patch})
		return
	}
	if err := s.remote.Update(ctx, id, patch, owner); err != nil {
		s.log.Warn("direct cloud update failed, queueing", "trip_id", id, "error", err)
		s.enqueue(ctx, OpTripUpdate, QueuePayload{TripID: id, Patch: &patch})
	}
}

// MarkTripSynced records that a trip's cloud copy exists, clearing the
// local-only flag in the local store and in memory. The sync worker calls it
// after delivering a queued create; without the in-memory update a later
// delete would read a stale flag and leave the cloud copy behind.
func (s *Service) MarkTripSynced(ctx context.Context, id domain.TripID) error {
	if err := s.local.MarkAsSynced(ctx, id); err != nil && !errors.Is(err, localstore.ErrNotFound) {
		return err
	}

	s.mu.Lock()
	changed := false
	if t, ok := s.trips[id]; ok && t.IsLocalOnly {
		t.IsLocalOnly = false
		s.trips[id] = t
		changed = true
	}
	s.mu.Unlock()

	if changed {
		s.notify(Event{Type: EventTripsChanged, TripID: id})
	}
	return nil
}

func (s *Service) sessionActive() bool {
	_, ok := s.Session()
	return ok
}

func (s *Service) enqueue(ctx context.Context, op string, p QueuePayload) {
	raw, err := EncodePayload(p)
	if err != nil {
		s.log.Error("encode queue payload", "op", op, "trip_id", p.TripID, "error", err)
		return
	}
	if _, err := s.queue.Enqueue(ctx, op, raw); err != nil {
		s.log.Error("enqueue sync operation", "op", op, "trip_id", p.TripID, "error", err)
	}
}
