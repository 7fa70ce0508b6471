package domain

import "time"

type TripStatus string

const (
	TripStatusPlanning  TripStatus = "planning"
	TripStatusUpcoming  TripStatus = "upcoming"
	TripStatusActive    TripStatus = "active"
	TripStatusCompleted TripStatus = "completed"
	TripStatusArchived  TripStatus = "archived"
)

// Trip is the top-level planning unit: a date range with one Itinerary.
// Trips serialize to JSON for the local document store, the sync queue and
// the cloud store, so the field tags are part of the persisted shape.
//
// Invariants:
//   - EndDate >= StartDate (inclusive range)
//   - DaySpan(StartDate, EndDate) == len(Itinerary.Days) except while a
//     structural edit is in flight
type Trip struct {
	ID          TripID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Destination string `json:"destination,omitempty"`

	StartDate time.Time `json:"startDate"` // date-only semantics
	EndDate   time.Time `json:"endDate"`   // date-only semantics
	Timezone  string    `json:"timezone,omitempty"`

	Status   TripStatus      `json:"status"`
	Currency string          `json:"currency,omitempty"`
	Flags    map[string]bool `json:"flags,omitempty"`

	// IsLocalOnly is true until the trip's first successful cloud write.
	IsLocalOnly bool `json:"isLocalOnly"`

	// Version is a monotonic counter bumped on every mutation. It detects
	// lost updates between devices during reconciliation.
	Version int64 `json:"version"`

	Itinerary Itinerary `json:"itinerary"`

	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
}

// Itinerary is owned exclusively by its Trip; day order is significant.
type Itinerary struct {
	Title string `json:"title,omitempty"`
	Days  []Day  `json:"days"`
}

// Clone returns a deep copy. Engine state hands out copies only, so callers
// can never alias the canonical in-memory trip.
func (t Trip) Clone() Trip {
	cp := t
	if t.Flags != nil {
		cp.Flags = make(map[string]bool, len(t.Flags))
		for k, v := range t.Flags {
			cp.Flags[k] = v
		}
	}
	cp.Itinerary = t.Itinerary.Clone()
	return cp
}

func (it Itinerary) Clone() Itinerary {
	cp := it
	cp.Days = CloneDays(it.Days)
	return cp
}

// DeriveStatus computes the trip status implied by the date range at the
// given instant. Archived is sticky and never derived away. Trips starting
// within two weeks count as upcoming.
func (t Trip) DeriveStatus(now time.Time) TripStatus {
	if t.Status == TripStatusArchived {
		return TripStatusArchived
	}
	today := DateOnly(now)
	switch {
	case today.Before(DateOnly(t.StartDate)):
		if DateOnly(t.StartDate).Sub(today).Hours() <= 14*24 {
			return TripStatusUpcoming
		}
		return TripStatusPlanning
	case today.After(DateOnly(t.EndDate)):
		return TripStatusCompleted
	default:
		return TripStatusActive
	}
}
