package engine

import (
	"context"
	"errors"
	"testing"
)

func TestUndo_RestoresPreEditDays(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	trip := f.mustCreateTrip(t, "History", date(2025, 6, 1), date(2025, 6, 3))
	f.mustActivate(t, trip.ID)

	ctx := context.Background()
	if _, err := f.svc.AddDay(ctx, 1); err != nil {
		t.Fatalf("AddDay: %v", err)
	}

	got, err := f.svc.Undo(ctx, trip.ID)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if n := len(got.Itinerary.Days); n != 3 {
		t.Fatalf("day count after undo = %d, want 3", n)
	}
	for i, d := range got.Itinerary.Days {
		if d.DayNumber != i+1 || !d.Date.Equal(date(2025, 6, 1+i)) {
			t.Fatalf("day[%d] = number %d date %v, invariants broken", i, d.DayNumber, d.Date)
		}
	}
	if !got.EndDate.Equal(date(2025, 6, 3)) {
		t.Fatalf("end date = %v, want 2025-06-03", got.EndDate)
	}
	// Undo is itself a persisted edit.
	stored, err := f.local.GetByID(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.Itinerary.Days) != 3 {
		t.Fatalf("stored day count = %d, want 3", len(stored.Itinerary.Days))
	}
}

func TestRedo_ReappliesUndoneEdit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	trip := f.mustCreateTrip(t, "History", date(2025, 6, 1), date(2025, 6, 3))
	f.mustActivate(t, trip.ID)

	ctx := context.Background()
	res, err := f.svc.AddDay(ctx, 1)
	if err != nil {
		t.Fatalf("AddDay: %v", err)
	}
	if _, err := f.svc.Undo(ctx, trip.ID); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	got, err := f.svc.Redo(ctx, trip.ID)
	if err != nil {
		t.Fatalf("Redo: %v", err)
	}
	if n := len(got.Itinerary.Days); n != 4 {
		t.Fatalf("day count after redo = %d, want 4", n)
	}
	if got.Itinerary.Days[1].ID != res.Day.ID {
		t.Fatalf("redo restored day %s at position 1, want %s", got.Itinerary.Days[1].ID, res.Day.ID)
	}
}

func TestNewEditClearsRedoStack(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	trip := f.mustCreateTrip(t, "Linear", date(2025, 6, 1), date(2025, 6, 3))
	f.mustActivate(t, trip.ID)

	ctx := context.Background()
	if _, err := f.svc.AddDay(ctx, 0); err != nil {
		t.Fatalf("AddDay: %v", err)
	}
	if _, err := f.svc.Undo(ctx, trip.ID); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if _, ok := f.svc.CanRedo(trip.ID); !ok {
		t.Fatal("want redo available after undo")
	}

	if _, err := f.svc.AddDay(ctx, 2); err != nil {
		t.Fatalf("AddDay: %v", err)
	}
	if _, ok := f.svc.CanRedo(trip.ID); ok {
		t.Fatal("redo stack must clear on a fresh edit")
	}
	if _, err := f.svc.Redo(ctx, trip.ID); !errors.Is(err, ErrNothingToRedo) {
		t.Fatalf("Redo err = %v, want ErrNothingToRedo", err)
	}
}

func TestUndo_EmptyHistory(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	trip := f.mustCreateTrip(t, "Blank", date(2025, 6, 1), date(2025, 6, 2))

	if _, err := f.svc.Undo(context.Background(), trip.ID); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("Undo err = %v, want ErrNothingToUndo", err)
	}
}

func TestMetadataEditsRecordNoSnapshot(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	trip := f.mustCreateTrip(t, "Meta", date(2025, 6, 1), date(2025, 6, 2))

	ctx := context.Background()
	if _, err := f.svc.UpdateTrip(ctx, trip.ID, UpdateTripInput{Title: Some("Renamed")}); err != nil {
		t.Fatalf("UpdateTrip: %v", err)
	}
	if _, ok := f.svc.CanUndo(trip.ID); ok {
		t.Fatal("metadata edit must not be undoable")
	}
}
