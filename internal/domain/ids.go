package domain

// OwnerID is the authenticated owner of cloud-persisted trips (typically the
// auth subject). We model it as an opaque identifier: its format is controlled
// by the identity provider.
type OwnerID string

// TripID is an internal identifier for a trip record.
type TripID string

// DayID is an internal identifier for a single itinerary day.
// Assigned once at creation; edits never reassign it.
type DayID string

// ActivityID is an internal identifier for a single activity within a day.
// Assigned once at creation; edits never reassign it.
type ActivityID string
