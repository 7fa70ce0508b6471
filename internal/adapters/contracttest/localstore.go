// Package contracttest holds behavioral suites that every implementation of
// a port must pass. Adapter packages run them from their own tests.
package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/ports/out/localstore"
)

// RunLocalStore exercises the localstore.Store contract against a fresh
// store from newStore.
func RunLocalStore(t *testing.T, newStore func(t *testing.T) localstore.Store) {
	t.Helper()
	ctx := context.Background()

	sample := func(id domain.TripID, localOnly bool) domain.Trip {
		start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		return domain.Trip{
			ID:          id,
			Title:       "Sample " + string(id),
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, 1),
			Status:      domain.TripStatusPlanning,
			IsLocalOnly: localOnly,
			Version:     1,
			Itinerary: domain.Itinerary{Days: []domain.Day{
				{ID: domain.DayID(string(id) + "-d1"), DayNumber: 1, Date: start, Activities: []domain.Activity{}},
				{ID: domain.DayID(string(id) + "-d2"), DayNumber: 2, Date: start.AddDate(0, 0, 1), Activities: []domain.Activity{}},
			}},
			CreatedAt: start,
			UpdatedAt: start,
		}
	}

	t.Run("create then get round-trips the document", func(t *testing.T) {
		s := newStore(t)
		want := sample("trip-1", true)
		if err := s.Create(ctx, want); err != nil {
			t.Fatalf("Create: %v", err)
		}
		got, err := s.GetByID(ctx, "trip-1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Title != want.Title || got.Version != want.Version || len(got.Itinerary.Days) != 2 {
			t.Fatalf("got %+v, want %+v", got, want)
		}
		if got.Itinerary.Days[1].DayNumber != 2 {
			t.Fatalf("day numbering lost: %+v", got.Itinerary.Days)
		}
	})

	t.Run("create duplicate id fails", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, sample("trip-1", true)); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.Create(ctx, sample("trip-1", true)); !errors.Is(err, localstore.ErrAlreadyExists) {
			t.Fatalf("err = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("update applies a patch", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, sample("trip-1", true)); err != nil {
			t.Fatalf("Create: %v", err)
		}
		title := "Renamed"
		version := int64(2)
		if err := s.Update(ctx, "trip-1", domain.TripPatch{Title: &title, Version: &version}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		got, err := s.GetByID(ctx, "trip-1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Title != "Renamed" || got.Version != 2 {
			t.Fatalf("got title %q version %d", got.Title, got.Version)
		}
		if len(got.Itinerary.Days) != 2 {
			t.Fatal("patch clobbered unrelated fields")
		}
	})

	t.Run("update unknown trip", func(t *testing.T) {
		s := newStore(t)
		title := "x"
		if err := s.Update(ctx, "missing", domain.TripPatch{Title: &title}); !errors.Is(err, localstore.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("delete removes the trip", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, sample("trip-1", true)); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.Delete(ctx, "trip-1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.GetByID(ctx, "trip-1"); !errors.Is(err, localstore.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, "trip-1"); !errors.Is(err, localstore.ErrNotFound) {
			t.Fatalf("second delete err = %v, want ErrNotFound", err)
		}
	})

	t.Run("get all is ordered by start date", func(t *testing.T) {
		s := newStore(t)
		later := sample("trip-b", true)
		later.StartDate = later.StartDate.AddDate(0, 1, 0)
		if err := s.Create(ctx, later); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.Create(ctx, sample("trip-a", true)); err != nil {
			t.Fatalf("Create: %v", err)
		}
		all, err := s.GetAll(ctx)
		if err != nil {
			t.Fatalf("GetAll: %v", err)
		}
		if len(all) != 2 || all[0].ID != "trip-a" || all[1].ID != "trip-b" {
			t.Fatalf("order = %v", []domain.TripID{all[0].ID, all[1].ID})
		}
	})

	t.Run("local-only filter and mark as synced", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, sample("trip-guest", true)); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.Create(ctx, sample("trip-cloud", false)); err != nil {
			t.Fatalf("Create: %v", err)
		}
		guests, err := s.GetLocalOnly(ctx)
		if err != nil {
			t.Fatalf("GetLocalOnly: %v", err)
		}
		if len(guests) != 1 || guests[0].ID != "trip-guest" {
			t.Fatalf("guests = %+v", guests)
		}
		if err := s.MarkAsSynced(ctx, "trip-guest"); err != nil {
			t.Fatalf("MarkAsSynced: %v", err)
		}
		guests, err = s.GetLocalOnly(ctx)
		if err != nil {
			t.Fatalf("GetLocalOnly: %v", err)
		}
		if len(guests) != 0 {
			t.Fatalf("guests after sync = %+v", guests)
		}
	})

	t.Run("touch records access time", func(t *testing.T) {
		s := newStore(t)
		if err := s.Create(ctx, sample("trip-1", true)); err != nil {
			t.Fatalf("Create: %v", err)
		}
		at := time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC)
		if err := s.Touch(ctx, "trip-1", at); err != nil {
			t.Fatalf("Touch: %v", err)
		}
		got, err := s.GetByID(ctx, "trip-1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if !got.LastAccessedAt.Equal(at) {
			t.Fatalf("LastAccessedAt = %v, want %v", got.LastAccessedAt, at)
		}
	})
}
