package domain

import "time"

type ActivityType string

const (
	ActivityTypeFood     ActivityType = "food"
	ActivityTypeLodging  ActivityType = "lodging"
	ActivityTypeActivity ActivityType = "activity"
	ActivityTypeTravel   ActivityType = "travel"
)

type TravelMode string

const (
	TravelModeWalk    TravelMode = "walk"
	TravelModeDrive   TravelMode = "drive"
	TravelModeTransit TravelMode = "transit"
	TravelModeFlight  TravelMode = "flight"
)

// LocationData names a place; coordinates and address are best-effort.
type LocationData struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	Address   string  `json:"address,omitempty"`
	// PlaceRef is an external place reference (provider-specific id).
	PlaceRef string `json:"placeRef,omitempty"`
}

// ActivityDetails holds the optional booking/annotation fields of an activity.
type ActivityDetails struct {
	BookingRef  string     `json:"bookingRef,omitempty"`
	Contact     string     `json:"contact,omitempty"`
	Cost        float64    `json:"cost,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Attachments []string   `json:"attachments,omitempty"`
	TravelMode  TravelMode `json:"travelMode,omitempty"`
}

// Activity is a single scheduled or unscheduled stop within a Day.
// An activity belongs to exactly one day at a time; move operations remove it
// from the source day and insert it into the destination day atomically.
type Activity struct {
	ID          ActivityID       `json:"id"`
	Time        *time.Time       `json:"time,omitempty"`
	EndTime     *time.Time       `json:"endTime,omitempty"`
	Description string           `json:"description"`
	Type        ActivityType     `json:"type"`
	Location    LocationData     `json:"location"`
	Details     *ActivityDetails `json:"details,omitempty"`
}

// TravelInfo describes movement from the prior day's location.
// Meaningless for the first day of a trip.
type TravelInfo struct {
	Mode     TravelMode    `json:"mode"`
	Duration time.Duration `json:"duration"`
}

// Day is one calendar day of an itinerary.
//
// Invariants: DayNumber is a dense 1..N sequence matching slice position, and
// Date equals the trip start date plus (DayNumber-1) days. Every structural
// edit re-establishes both in the same step.
type Day struct {
	ID                 DayID         `json:"id"`
	DayNumber          int           `json:"dayNumber"`
	Date               time.Time     `json:"date"` // date-only semantics
	Activities         []Activity    `json:"activities"`
	PrimaryLocation    *LocationData `json:"primaryLocation,omitempty"`
	TravelFromPrevious *TravelInfo   `json:"travelFromPrevious,omitempty"`
}

func (a Activity) Clone() Activity {
	cp := a
	cp.Time = cloneTimePtr(a.Time)
	cp.EndTime = cloneTimePtr(a.EndTime)
	if a.Details != nil {
		d := *a.Details
		if a.Details.Tags != nil {
			d.Tags = append([]string(nil), a.Details.Tags...)
		}
		if a.Details.Attachments != nil {
			d.Attachments = append([]string(nil), a.Details.Attachments...)
		}
		cp.Details = &d
	}
	return cp
}

func (d Day) Clone() Day {
	cp := d
	cp.Activities = CloneActivities(d.Activities)
	if d.PrimaryLocation != nil {
		loc := *d.PrimaryLocation
		cp.PrimaryLocation = &loc
	}
	if d.TravelFromPrevious != nil {
		tr := *d.TravelFromPrevious
		cp.TravelFromPrevious = &tr
	}
	return cp
}

// CloneDays deep-copies a day sequence.
func CloneDays(days []Day) []Day {
	if days == nil {
		return nil
	}
	out := make([]Day, len(days))
	for i, d := range days {
		out[i] = d.Clone()
	}
	return out
}

// CloneActivities deep-copies an activity sequence.
func CloneActivities(acts []Activity) []Activity {
	if acts == nil {
		return nil
	}
	out := make([]Activity, len(acts))
	for i, a := range acts {
		out[i] = a.Clone()
	}
	return out
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
