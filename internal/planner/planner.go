// Package planner contains the pure structural-edit functions for itinerary
// day sequences. Every function returns fresh slices and leaves its inputs
// untouched; persistence and state updates belong to the engine.
//
// Edge-case policy: index-based operations clamp rather than fail, because
// drag interactions produce transient out-of-range values. Malformed ids make
// the whole operation a no-op rather than a partial mutation.
package planner

import (
	"time"

	"github.com/roamplan/itinerary-engine/internal/domain"
)

// ActivityHandling selects the disposition of a removed day's activities.
type ActivityHandling string

const (
	// HandlePrevious appends the removed day's activities to the preceding day.
	HandlePrevious ActivityHandling = "previous"
	// HandleNext prepends the removed day's activities to the following day.
	HandleNext ActivityHandling = "next"
	// HandleDelete discards the removed day's activities.
	HandleDelete ActivityHandling = "delete"
)

// Renumber re-establishes the day-sequence invariants in one step: dense
// 1..N day numbers and dates computed from the trip start date. It returns
// the sequence and the implied trip end date (the last day's date).
func Renumber(days []domain.Day, tripStart time.Time) ([]domain.Day, time.Time) {
	out := domain.CloneDays(days)
	for i := range out {
		out[i].DayNumber = i + 1
		out[i].Date = domain.AddDays(tripStart, i)
	}
	if len(out) == 0 {
		return out, domain.DateOnly(tripStart)
	}
	return out, out[len(out)-1].Date
}

// ReorderActivities moves the activity at fromIndex to toIndex within a
// single day. toIndex is clamped to [0, len-1]; an out-of-range fromIndex or
// equal indices leave the sequence unchanged.
func ReorderActivities(acts []domain.Activity, fromIndex, toIndex int) []domain.Activity {
	out := domain.CloneActivities(acts)
	if fromIndex < 0 || fromIndex >= len(out) {
		return out
	}
	toIndex = clamp(toIndex, 0, len(out)-1)
	if fromIndex == toIndex {
		return out
	}
	moved := out[fromIndex]
	out = append(out[:fromIndex], out[fromIndex+1:]...)
	out = append(out[:toIndex], append([]domain.Activity{moved}, out[toIndex:]...)...)
	return out
}

// MoveActivityBetweenDays removes the activity at sourceIndex from src and
// inserts it into dst at destIndex (clamped to [0, len(dst)]). Both resulting
// sequences are returned together; the caller must apply both or neither.
// moved is false when sourceIndex is out of range, in which case both
// sequences are returned unchanged.
func MoveActivityBetweenDays(src, dst []domain.Activity, sourceIndex, destIndex int) (newSrc, newDst []domain.Activity, moved bool) {
	newSrc = domain.CloneActivities(src)
	newDst = domain.CloneActivities(dst)
	if sourceIndex < 0 || sourceIndex >= len(newSrc) {
		return newSrc, newDst, false
	}
	destIndex = clamp(destIndex, 0, len(newDst))

	act := newSrc[sourceIndex]
	newSrc = append(newSrc[:sourceIndex], newSrc[sourceIndex+1:]...)
	newDst = append(newDst[:destIndex], append([]domain.Activity{act}, newDst[destIndex:]...)...)
	return newSrc, newDst, true
}

// ReorderDays moves the day at fromIndex to toIndex, then renumbers and
// redates the whole sequence from tripStart. Out-of-range fromIndex is a
// no-op aside from renumbering.
func ReorderDays(days []domain.Day, fromIndex, toIndex int, tripStart time.Time) ([]domain.Day, time.Time) {
	out := domain.CloneDays(days)
	if fromIndex >= 0 && fromIndex < len(out) {
		toIndex = clamp(toIndex, 0, len(out)-1)
		if fromIndex != toIndex {
			moved := out[fromIndex]
			out = append(out[:fromIndex], out[fromIndex+1:]...)
			out = append(out[:toIndex], append([]domain.Day{moved}, out[toIndex:]...)...)
		}
	}
	return Renumber(out, tripStart)
}

// AddDay inserts a new empty day at position (0-based; position == len
// appends). The position is clamped into [0, len]. It returns the renumbered
// sequence, the inserted day, and the resulting trip end date.
func AddDay(days []domain.Day, position int, tripStart time.Time, newID func() domain.DayID) ([]domain.Day, domain.Day, time.Time) {
	out := domain.CloneDays(days)
	position = clamp(position, 0, len(out))

	day := domain.Day{ID: newID(), Activities: []domain.Activity{}}
	out = append(out[:position], append([]domain.Day{day}, out[position:]...)...)

	out, end := Renumber(out, tripStart)
	return out, out[position], end
}

// RemoveDay removes the day with the given id and renumbers/redates the
// remainder. handling decides where the removed day's activities go; when the
// adjacent day does not exist (removing the first day with HandlePrevious, or
// the last with HandleNext) the activities are returned as orphans instead of
// being silently discarded.
//
// Removing the only remaining day is rejected: a trip always has at least one
// day. An unknown id is a no-op. removed reports whether the day was taken
// out; the end date is always recomputed from tripStart.
func RemoveDay(days []domain.Day, dayID domain.DayID, handling ActivityHandling, tripStart time.Time) (out []domain.Day, orphans []domain.Activity, end time.Time, removed bool) {
	idx := -1
	for i, d := range days {
		if d.ID == dayID {
			idx = i
			break
		}
	}
	if idx == -1 || len(days) <= 1 {
		out, end = Renumber(days, tripStart)
		return out, nil, end, false
	}

	out = domain.CloneDays(days)
	acts := out[idx].Activities
	out = append(out[:idx], out[idx+1:]...)

	switch handling {
	case HandlePrevious:
		if idx > 0 {
			out[idx-1].Activities = append(out[idx-1].Activities, acts...)
		} else {
			orphans = acts
		}
	case HandleNext:
		if idx < len(out) {
			out[idx].Activities = append(domain.CloneActivities(acts), out[idx].Activities...)
		} else {
			orphans = acts
		}
	case HandleDelete:
		// discarded
	default:
		orphans = acts
	}

	out, end = Renumber(out, tripStart)
	return out, orphans, end, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
