package remotestore

import (
	"context"
	"sort"
	"sync"

	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/ports/out/remotestore"
)

type ownedTrip struct {
	owner domain.OwnerID
	trip  domain.Trip
}

// Store is an in-memory implementation of remotestore.Store with a
// synchronous subscriber fanout. Tests use it to stand in for the cloud.
type Store struct {
	mu   sync.RWMutex
	byID map[domain.TripID]ownedTrip

	nextSub int
	subs    map[int]subscription
}

type subscription struct {
	owner    domain.OwnerID
	onChange remotestore.ChangeHandler
}

func NewStore() *Store {
	return &Store{
		byID: make(map[domain.TripID]ownedTrip),
		subs: make(map[int]subscription),
	}
}

func (s *Store) Create(ctx context.Context, t domain.Trip, owner domain.OwnerID) error {
	_ = ctx
	s.mu.Lock()
	if _, ok := s.byID[t.ID]; ok {
		s.mu.Unlock()
		return remotestore.ErrAlreadyExists
	}
	s.byID[t.ID] = ownedTrip{owner: owner, trip: t.Clone()}
	s.mu.Unlock()
	s.notify(owner)
	return nil
}

func (s *Store) Update(ctx context.Context, id domain.TripID, p domain.TripPatch, owner domain.OwnerID) error {
	_ = ctx
	s.mu.Lock()
	ot, ok := s.byID[id]
	if !ok || ot.owner != owner {
		s.mu.Unlock()
		return remotestore.ErrNotFound
	}
	t := ot.trip
	p.Apply(&t)
	s.byID[id] = ownedTrip{owner: owner, trip: t.Clone()}
	s.mu.Unlock()
	s.notify(owner)
	return nil
}

func (s *Store) Delete(ctx context.Context, id domain.TripID, owner domain.OwnerID) error {
	_ = ctx
	s.mu.Lock()
	ot, ok := s.byID[id]
	if !ok || ot.owner != owner {
		s.mu.Unlock()
		return remotestore.ErrNotFound
	}
	delete(s.byID, id)
	s.mu.Unlock()
	s.notify(owner)
	return nil
}

func (s *Store) ListByOwner(ctx context.Context, owner domain.OwnerID) ([]domain.Trip, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(owner), nil
}

func (s *Store) SubscribeToTrips(ctx context.Context, owner domain.OwnerID, onChange remotestore.ChangeHandler, onError remotestore.ErrorHandler) (remotestore.Unsubscribe, error) {
	_ = ctx
	_ = onError
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = subscription{owner: owner, onChange: onChange}
	initial := s.listLocked(owner)
	s.mu.Unlock()

	// Initial delivery of the current list, per the port contract.
	onChange(initial)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}, nil
}

func (s *Store) notify(owner domain.OwnerID) {
	s.mu.RLock()
	trips := s.listLocked(owner)
	handlers := make([]remotestore.ChangeHandler, 0)
	for _, sub := range s.subs {
		if sub.owner == owner {
			handlers = append(handlers, sub.onChange)
		}
	}
	s.mu.RUnlock()
	for _, h := range handlers {
		h(trips)
	}
}

func (s *Store) listLocked(owner domain.OwnerID) []domain.Trip {
	out := make([]domain.Trip, 0)
	for _, ot := range s.byID {
		if ot.owner == owner {
			out = append(out, ot.trip.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
