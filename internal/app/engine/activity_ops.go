package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/planner"
)

// AddActivity appends an activity to a day of the active trip.
func (s *Service) AddActivity(ctx context.Context, dayID domain.DayID, in ActivityInput) (domain.Activity, error) {
	s.mu.Lock()
	id, err := s.activeTripIDLocked()
	s.mu.Unlock()
	if err != nil {
		return domain.Activity{}, err
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return domain.Activity{}, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}

	var created domain.Activity
	_, err = s.applyTripChange(ctx, id, "activity.add", "add activity", func(t *domain.Trip) (domain.TripPatch, error) {
		idx := dayIndex(t.Itinerary.Days, dayID)
		if idx == -1 {
			return domain.TripPatch{}, ErrDayNotFound
		}
		act := domain.Activity{
			ID:          s.ids.NewActivityID(),
			Time:        in.Time,
			EndTime:     in.EndTime,
			Description: desc,
			Type:        in.Type,
			Location:    in.Location,
			Details:     in.Details,
		}
		if act.Type == "" {
			act.Type = domain.ActivityTypeActivity
		}
		t.Itinerary.Days[idx].Activities = append(t.Itinerary.Days[idx].Activities, act)
		created = act.Clone()
		return s.itineraryPatch(t), nil
	})
	if err != nil {
		return domain.Activity{}, err
	}
	return created, nil
}

// UpdateActivity applies a partial update to one activity of the active trip.
func (s *Service) UpdateActivity(ctx context.Context, dayID domain.DayID, activityID domain.ActivityID, in UpdateActivityInput) (domain.Activity, error) {
	s.mu.Lock()
	id, err := s.activeTripIDLocked()
	s.mu.Unlock()
	if err != nil {
		return domain.Activity{}, err
	}

	var updated domain.Activity
	_, err = s.applyTripChange(ctx, id, "activity.update", "", func(t *domain.Trip) (domain.TripPatch, error) {
		di := dayIndex(t.Itinerary.Days, dayID)
		if di == -1 {
			return domain.TripPatch{}, ErrDayNotFound
		}
		ai := activityIndex(t.Itinerary.Days[di].Activities, activityID)
		if ai == -1 {
			return domain.TripPatch{}, ErrActivityNotFound
		}
		act := &t.Itinerary.Days[di].Activities[ai]

		if in.Time.IsSpecified() {
			if in.Time.IsNull() {
				act.Time = nil
			} else {
				v := in.Time.Value()
				act.Time = &v
			}
		}
		if in.EndTime.IsSpecified() {
			if in.EndTime.IsNull() {
				act.EndTime = nil
			} else {
				v := in.EndTime.Value()
				act.EndTime = &v
			}
		}
		if in.Description.IsSpecified() {
			if in.Description.IsNull() {
				return domain.TripPatch{}, fmt.Errorf("%w: description cannot be null", ErrInvalidInput)
			}
			desc := strings.TrimSpace(in.Description.Value())
			if desc == "" {
				return domain.TripPatch{}, fmt.Errorf("%w: description is required", ErrInvalidInput)
			}
			act.Description = desc
		}
		if in.Type.IsSpecified() {
			if in.Type.IsNull() {
				return domain.TripPatch{}, fmt.Errorf("%w: type cannot be null", ErrInvalidInput)
			}
			act.Type = in.Type.Value()
		}
		if in.Location.IsSpecified() {
			if in.Location.IsNull() {
				act.Location = domain.LocationData{}
			} else {
				act.Location = in.Location.Value()
			}
		}
		if in.Details.IsSpecified() {
			if in.Details.IsNull() {
				act.Details = nil
			} else {
				d := in.Details.Value()
				act.Details = &d
			}
		}
		updated = act.Clone()
		return s.itineraryPatch(t), nil
	})
	if err != nil {
		return domain.Activity{}, err
	}
	return updated, nil
}

// DeleteActivity removes one activity from a day of the active trip.
func (s *Service) DeleteActivity(ctx context.Context, dayID domain.DayID, activityID domain.ActivityID) error {
	s.mu.Lock()
	id, err := s.activeTripIDLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	_, err = s.applyTripChange(ctx, id, "activity.delete", "delete activity", func(t *domain.Trip) (domain.TripPatch, error) {
		di := dayIndex(t.Itinerary.Days, dayID)
		if di == -1 {
			return domain.TripPatch{}, ErrDayNotFound
		}
		acts := t.Itinerary.Days[di].Activities
		ai := activityIndex(acts, activityID)
		if ai == -1 {
			return domain.TripPatch{}, ErrActivityNotFound
		}
		t.Itinerary.Days[di].Activities = append(acts[:ai], acts[ai+1:]...)
		return s.itineraryPatch(t), nil
	})
	return err
}

// ReorderActivities moves an activity to a new position within one day of the
// active trip. Out-of-range indexes clamp rather than fail.
func (s *Service) ReorderActivities(ctx context.Context, dayID domain.DayID, fromIndex, toIndex int) (domain.Trip, error) {
	s.mu.Lock()
	id, err := s.activeTripIDLocked()
	s.mu.Unlock()
	if err != nil {
		return domain.Trip{}, err
	}

	return s.applyTripChange(ctx, id, "activity.reorder", "reorder activities", func(t *domain.Trip) (domain.TripPatch, error) {
		di := dayIndex(t.Itinerary.Days, dayID)
		if di == -1 {
			return domain.TripPatch{}, ErrDayNotFound
		}
		t.Itinerary.Days[di].Activities = planner.ReorderActivities(t.Itinerary.Days[di].Activities, fromIndex, toIndex)
		return s.itineraryPatch(t), nil
	})
}

// MoveActivityBetweenDays moves the activity at sourceIndex of one day to
// destIndex of another within the active trip. Both days change in the same
// write; there is no intermediate state with the activity in both or neither.
func (s *Service) MoveActivityBetweenDays(ctx context.Context, sourceDayID, destDayID domain.DayID, sourceIndex, destIndex int) (domain.Trip, error) {
	s.mu.Lock()
	id, err := s.activeTripIDLocked()
	s.mu.Unlock()
	if err != nil {
		return domain.Trip{}, err
	}

	if sourceDayID == destDayID {
		return s.ReorderActivities(ctx, sourceDayID, sourceIndex, destIndex)
	}

	return s.applyTripChange(ctx, id, "activity.move", "move activity", func(t *domain.Trip) (domain.TripPatch, error) {
		si := dayIndex(t.Itinerary.Days, sourceDayID)
		di := dayIndex(t.Itinerary.Days, destDayID)
		if si == -1 || di == -1 {
			return domain.TripPatch{}, ErrDayNotFound
		}
		newSrc, newDst, moved := planner.MoveActivityBetweenDays(
			t.Itinerary.Days[si].Activities,
			t.Itinerary.Days[di].Activities,
			sourceIndex, destIndex,
		)
		if !moved {
			return domain.TripPatch{}, ErrActivityNotFound
		}
		t.Itinerary.Days[si].Activities = newSrc
		t.Itinerary.Days[di].Activities = newDst
		return s.itineraryPatch(t), nil
	})
}

func activityIndex(acts []domain.Activity, id domain.ActivityID) int {
	for i, a := range acts {
		if a.ID == id {
			return i
		}
	}
	return -1
}
