package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/planner"
	"github.com/roamplan/itinerary-engine/internal/ports/out/geocoder"
)

// AddDay inserts an empty day into the active trip at the given position
// (0-based, clamped; position past the end appends) and extends the trip by
// one calendar day.
func (s *Service) AddDay(ctx context.Context, position int) (AddDayResult, error) {
	return s.addDay(ctx, position, nil, "")
}

// AddDayWithLocation geocodes the query before inserting the day, so the
// lookup never runs under the state lock. A failed lookup does not block the
// insert: the day gets a name-only placeholder location and the result's
// Note says so.
func (s *Service) AddDayWithLocation(ctx context.Context, position int, locationQuery string) (AddDayResult, error) {
	locationQuery = strings.TrimSpace(locationQuery)
	if locationQuery == "" {
		return s.addDay(ctx, position, nil, "")
	}

	loc := &domain.LocationData{Name: locationQuery}
	note := ""
	place, err := s.geo.Geocode(ctx, locationQuery)
	switch {
	case err == nil:
		loc = &domain.LocationData{
			Name:      place.Name,
			Address:   place.Address,
			Latitude:  place.Latitude,
			Longitude: place.Longitude,
		}
	case errors.Is(err, geocoder.ErrNotFound):
		note = fmt.Sprintf("no match found for %q, saved the name only", locationQuery)
	default:
		s.log.Warn("geocode lookup failed", "query", locationQuery, "error", err)
		note = fmt.Sprintf("location lookup failed for %q, saved the name only", locationQuery)
	}
	return s.addDay(ctx, position, loc, note)
}

func (s *Service) addDay(ctx context.Context, position int, loc *domain.LocationData, note string) (AddDayResult, error) {
	s.mu.Lock()
	id, err := s.activeTripIDLocked()
	s.mu.Unlock()
	if err != nil {
		return AddDayResult{}, err
	}

	var inserted domain.Day
	trip, err := s.applyTripChange(ctx, id, "day.add", "add day", func(t *domain.Trip) (domain.TripPatch, error) {
		days, day, end := planner.AddDay(t.Itinerary.Days, position, t.StartDate, s.ids.NewDayID)
		if loc != nil {
			l := *loc
			day.PrimaryLocation = &l
			for i := range days {
				if days[i].ID == day.ID {
					days[i].PrimaryLocation = &l
				}
			}
		}
		inserted = day
		t.Itinerary.Days = days
		t.EndDate = end
		return s.itineraryPatch(t), nil
	})
	if err != nil {
		return AddDayResult{}, err
	}
	return AddDayResult{Trip: trip, Day: inserted, Note: note}, nil
}

// AddDays appends count empty days to the end of the active trip, extending
// it by count calendar days.
func (s *Service) AddDays(ctx context.Context, count int) (domain.Trip, error) {
	if count <= 0 {
		return domain.Trip{}, fmt.Errorf("%w: count must be positive", ErrInvalidInput)
	}
	s.mu.Lock()
	id, err := s.activeTripIDLocked()
	s.mu.Unlock()
	if err != nil {
		return domain.Trip{}, err
	}

	return s.applyTripChange(ctx, id, "day.add", "add days", func(t *domain.Trip) (domain.TripPatch, error) {
		days := t.Itinerary.Days
		var end time.Time
		for i := 0; i < count; i++ {
			days, _, end = planner.AddDay(days, len(days), t.StartDate, s.ids.NewDayID)
		}
		t.Itinerary.Days = days
		t.EndDate = end
		return s.itineraryPatch(t), nil
	})
}

// RemoveDay removes a day from the active trip and shortens the trip by one
// calendar day. handling decides where the day's activities go; activities
// that had no adjacent day to land in come back as orphans. Removing the
// only day, or an unknown day, changes nothing.
func (s *Service) RemoveDay(ctx context.Context, dayID domain.DayID, handling planner.ActivityHandling) (RemoveDayResult, error) {
	s.mu.Lock()
	id, err := s.activeTripIDLocked()
	s.mu.Unlock()
	if err != nil {
		return RemoveDayResult{}, err
	}

	var (
		orphans []domain.Activity
		removed bool
	)
	trip, err := s.applyTripChange(ctx, id, "day.remove", "remove day", func(t *domain.Trip) (domain.TripPatch, error) {
		days, orph, end, ok := planner.RemoveDay(t.Itinerary.Days, dayID, handling, t.StartDate)
		orphans, removed = orph, ok
		if !ok {
			if len(t.Itinerary.Days) <= 1 {
				return domain.TripPatch{}, fmt.Errorf("%w: a trip must keep at least one day", ErrInvalidInput)
			}
			return domain.TripPatch{}, ErrDayNotFound
		}
		t.Itinerary.Days = days
		t.EndDate = end
		return s.itineraryPatch(t), nil
	})
	if err != nil {
		return RemoveDayResult{}, err
	}
	return RemoveDayResult{Trip: trip, Orphaned: orphans, Removed: removed}, nil
}

// ReorderDays moves a day to a new position in the active trip. Dates and
// numbers follow slice position, so the moved day takes on the dates of its
// new slot.
func (s *Service) ReorderDays(ctx context.Context, fromIndex, toIndex int) (domain.Trip, error) {
	s.mu.Lock()
	id, err := s.activeTripIDLocked()
	s.mu.Unlock()
	if err != nil {
		return domain.Trip{}, err
	}

	return s.applyTripChange(ctx, id, "day.reorder", "reorder days", func(t *domain.Trip) (domain.TripPatch, error) {
		days, end := planner.ReorderDays(t.Itinerary.Days, fromIndex, toIndex, t.StartDate)
		t.Itinerary.Days = days
		t.EndDate = end
		return s.itineraryPatch(t), nil
	})
}

// ModifyDay updates a day's location and travel annotations in place. It is
// not a structural edit and records no undo snapshot.
func (s *Service) ModifyDay(ctx context.Context, dayID domain.DayID, in ModifyDayInput) (domain.Trip, error) {
	s.mu.Lock()
	id, err := s.activeTripIDLocked()
	s.mu.Unlock()
	if err != nil {
		return domain.Trip{}, err
	}

	return s.applyTripChange(ctx, id, "day.modify", "", func(t *domain.Trip) (domain.TripPatch, error) {
		idx := dayIndex(t.Itinerary.Days, dayID)
		if idx == -1 {
			return domain.TripPatch{}, ErrDayNotFound
		}
		day := &t.Itinerary.Days[idx]

		if in.PrimaryLocation.IsSpecified() {
			if in.PrimaryLocation.IsNull() {
				day.PrimaryLocation = nil
			} else {
				loc := in.PrimaryLocation.Value()
				day.PrimaryLocation = &loc
			}
		}
		if in.TravelFromPrevious.IsSpecified() {
			if in.TravelFromPrevious.IsNull() {
				day.TravelFromPrevious = nil
			} else {
				tr := in.TravelFromPrevious.Value()
				day.TravelFromPrevious = &tr
			}
		}
		return s.itineraryPatch(t), nil
	})
}

func dayIndex(days []domain.Day, id domain.DayID) int {
	for i, d := range days {
		if d.ID == id {
			return i
		}
	}
	return -1
}
