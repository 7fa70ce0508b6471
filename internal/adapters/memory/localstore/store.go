package localstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/ports/out/localstore"
)

// Store is an in-memory implementation of localstore.Store.
// It is safe for concurrent use. Durability is the caller's problem — this
// adapter backs tests and dev mode; production uses the sqlite adapter.
type Store struct {
	mu   sync.RWMutex
	byID map[domain.TripID]domain.Trip
}

func NewStore() *Store {
	return &Store{byID: make(map[domain.TripID]domain.Trip)}
}

func (s *Store) Create(ctx context.Context, t domain.Trip) error {
	_ = ctx
	if t.ID == "" {
		return localstore.ErrAlreadyExists
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[t.ID]; ok {
		return localstore.ErrAlreadyExists
	}
	s.byID[t.ID] = t.Clone()
	return nil
}

func (s *Store) Update(ctx context.Context, id domain.TripID, p domain.TripPatch) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return localstore.ErrNotFound
	}
	p.Apply(&t)
	s.byID[id] = t.Clone()
	return nil
}

func (s *Store) Delete(ctx context.Context, id domain.TripID) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return localstore.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Store) GetByID(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return domain.Trip{}, localstore.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *Store) GetAll(ctx context.Context) ([]domain.Trip, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Trip, 0, len(s.byID))
	for _, t := range s.byID {
		out = append(out, t.Clone())
	}
	sortTrips(out)
	return out, nil
}

func (s *Store) GetLocalOnly(ctx context.Context) ([]domain.Trip, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Trip, 0)
	for _, t := range s.byID {
		if t.IsLocalOnly {
			out = append(out, t.Clone())
		}
	}
	sortTrips(out)
	return out, nil
}

func (s *Store) MarkAsSynced(ctx context.Context, id domain.TripID) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return localstore.ErrNotFound
	}
	t.IsLocalOnly = false
	s.byID[id] = t
	return nil
}

func (s *Store) Touch(ctx context.Context, id domain.TripID, at time.Time) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[id]
	if !ok {
		return localstore.ErrNotFound
	}
	t.LastAccessedAt = at.UTC()
	s.byID[id] = t
	return nil
}

func sortTrips(ts []domain.Trip) {
	// Deterministic listing: startDate ascending, createdAt then ID as
	// tie-breakers.
	sort.Slice(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
