package engine

import (
	"time"

	"github.com/roamplan/itinerary-engine/internal/domain"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

type CreateTripInput struct {
	Title       string
	Description string
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Timezone    string
	Currency    string
}

type UpdateTripInput struct {
	// Title is optional and cannot be null.
	Title Optional[string]

	Description Optional[string]
	Destination Optional[string]

	// StartDate shifts the whole itinerary: all day dates and the end date
	// are recomputed from the new start.
	StartDate Optional[time.Time]

	Timezone Optional[string]
	Status   Optional[domain.TripStatus]
	Currency Optional[string]
	Flags    Optional[map[string]bool]
}

type ActivityInput struct {
	Time        *time.Time
	EndTime     *time.Time
	Description string
	Type        domain.ActivityType
	Location    domain.LocationData
	Details     *domain.ActivityDetails
}

type UpdateActivityInput struct {
	Time        Optional[time.Time] // null clears the scheduled time
	EndTime     Optional[time.Time] // null clears the end time
	Description Optional[string]
	Type        Optional[domain.ActivityType]
	Location    Optional[domain.LocationData]
	Details     Optional[domain.ActivityDetails] // null clears the details block
}

type ModifyDayInput struct {
	PrimaryLocation    Optional[domain.LocationData] // null clears the location
	TravelFromPrevious Optional[domain.TravelInfo]   // null clears the travel leg
}

// TripSummary is the read model for trip lists.
type TripSummary struct {
	ID          domain.TripID
	Title       string
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	Status      domain.TripStatus
	DayCount    int
	IsLocalOnly bool
	UpdatedAt   time.Time
}

// RemoveDayResult reports the outcome of a day removal for caller-side
// diagnostics: activities that no adjacent day absorbed are returned, not
// silently discarded.
type RemoveDayResult struct {
	Trip     domain.Trip
	Orphaned []domain.Activity
	Removed  bool
}

// AddDayResult carries the inserted day and, for geocoded inserts, a note
// explaining a placeholder location.
type AddDayResult struct {
	Trip domain.Trip
	Day  domain.Day
	Note string
}

type EventType string

const (
	EventTripsChanged      EventType = "trips_changed"
	EventActiveTripChanged EventType = "active_trip_changed"
	EventSessionChanged    EventType = "session_changed"
)

// Event is pushed to registered observers after state changes. Handlers run
// on the mutating goroutine (or the subscription goroutine for remote
// pushes) and must not block.
type Event struct {
	Type   EventType
	TripID domain.TripID
}

type Listener func(Event)
