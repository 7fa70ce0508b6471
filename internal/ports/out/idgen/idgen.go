package idgen

import "github.com/roamplan/itinerary-engine/internal/domain"

// Generator produces collision-resistant ids for trips, days and activities.
// Using an interface enables deterministic ids in tests.
type Generator interface {
	NewTripID() domain.TripID
	NewDayID() domain.DayID
	NewActivityID() domain.ActivityID
}
