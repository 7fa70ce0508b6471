package domain

import "time"

// TripPatch is a partial update to a trip: nil fields are left untouched.
// It is the unit of synchronization — the same value is persisted to the
// local store, carried through the sync queue as JSON, and applied by the
// remote store, so the three destinations can never disagree about what an
// edit contained.
type TripPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Destination *string     `json:"destination,omitempty"`
	StartDate   *time.Time  `json:"startDate,omitempty"`
	EndDate     *time.Time  `json:"endDate,omitempty"`
	Timezone    *string     `json:"timezone,omitempty"`
	Status      *TripStatus `json:"status,omitempty"`
	Currency    *string     `json:"currency,omitempty"`

	// Flags replaces the whole flag set when non-nil.
	Flags map[string]bool `json:"flags,omitempty"`

	IsLocalOnly *bool  `json:"isLocalOnly,omitempty"`
	Version     *int64 `json:"version,omitempty"`

	// Itinerary replaces the whole itinerary when non-nil. Structural edits
	// always ship the full day sequence so the ordering invariants travel
	// with the patch.
	Itinerary *Itinerary `json:"itinerary,omitempty"`

	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
	LastAccessedAt *time.Time `json:"lastAccessedAt,omitempty"`
}

// Apply overlays the patch onto t in place.
func (p TripPatch) Apply(t *Trip) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Destination != nil {
		t.Destination = *p.Destination
	}
	if p.StartDate != nil {
		t.StartDate = DateOnly(*p.StartDate)
	}
	if p.EndDate != nil {
		t.EndDate = DateOnly(*p.EndDate)
	}
	if p.Timezone != nil {
		t.Timezone = *p.Timezone
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Currency != nil {
		t.Currency = *p.Currency
	}
	if p.Flags != nil {
		t.Flags = make(map[string]bool, len(p.Flags))
		for k, v := range p.Flags {
			t.Flags[k] = v
		}
	}
	if p.IsLocalOnly != nil {
		t.IsLocalOnly = *p.IsLocalOnly
	}
	if p.Version != nil {
		t.Version = *p.Version
	}
	if p.Itinerary != nil {
		t.Itinerary = p.Itinerary.Clone()
	}
	if p.UpdatedAt != nil {
		t.UpdatedAt = *p.UpdatedAt
	}
	if p.LastAccessedAt != nil {
		t.LastAccessedAt = *p.LastAccessedAt
	}
}
