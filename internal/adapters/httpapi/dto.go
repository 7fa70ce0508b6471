package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/roamplan/itinerary-engine/internal/app/engine"
	"github.com/roamplan/itinerary-engine/internal/domain"
)

type createTripRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Destination string             `json:"destination,omitempty"`
	StartDate   openapi_types.Date `json:"startDate"`
	EndDate     openapi_types.Date `json:"endDate"`
	Timezone    string             `json:"timezone,omitempty"`
	Currency    string             `json:"currency,omitempty"`
}

// updateTripRequest distinguishes omitted fields from explicit nulls, so a
// PATCH can clear a value without clobbering the rest.
type updateTripRequest struct {
	Title       nullable.Nullable[string]             `json:"title,omitempty"`
	Description nullable.Nullable[string]             `json:"description,omitempty"`
	Destination nullable.Nullable[string]             `json:"destination,omitempty"`
	StartDate   nullable.Nullable[openapi_types.Date] `json:"startDate,omitempty"`
	Timezone    nullable.Nullable[string]             `json:"timezone,omitempty"`
	Status      nullable.Nullable[string]             `json:"status,omitempty"`
	Currency    nullable.Nullable[string]             `json:"currency,omitempty"`
	Flags       nullable.Nullable[map[string]bool]    `json:"flags,omitempty"`
}

type addDayRequest struct {
	Position int    `json:"position"`
	Location string `json:"location,omitempty"`
}

type extendDaysRequest struct {
	Count int `json:"count"`
}

type modifyDayRequest struct {
	PrimaryLocation    nullable.Nullable[domain.LocationData] `json:"primaryLocation,omitempty"`
	TravelFromPrevious nullable.Nullable[domain.TravelInfo]   `json:"travelFromPrevious,omitempty"`
}

type addActivityRequest struct {
	Time        *time.Time              `json:"time,omitempty"`
	EndTime     *time.Time              `json:"endTime,omitempty"`
	Description string                  `json:"description"`
	Type        string                  `json:"type,omitempty"`
	Location    domain.LocationData     `json:"location,omitempty"`
	Details     *domain.ActivityDetails `json:"details,omitempty"`
}

type updateActivityRequest struct {
	Time        nullable.Nullable[time.Time]              `json:"time,omitempty"`
	EndTime     nullable.Nullable[time.Time]              `json:"endTime,omitempty"`
	Description nullable.Nullable[string]                 `json:"description,omitempty"`
	Type        nullable.Nullable[string]                 `json:"type,omitempty"`
	Location    nullable.Nullable[domain.LocationData]    `json:"location,omitempty"`
	Details     nullable.Nullable[domain.ActivityDetails] `json:"details,omitempty"`
}

type reorderRequest struct {
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

type moveActivityRequest struct {
	SourceDayID domain.DayID `json:"sourceDayId"`
	DestDayID   domain.DayID `json:"destDayId"`
	SourceIndex int          `json:"sourceIndex"`
	DestIndex   int          `json:"destIndex"`
}

type addDayResponse struct {
	Trip domain.Trip `json:"trip"`
	Day  domain.Day  `json:"day"`
	Note string      `json:"note,omitempty"`
}

type removeDayResponse struct {
	Trip     domain.Trip       `json:"trip"`
	Orphaned []domain.Activity `json:"orphanedActivities,omitempty"`
}

type historyResponse struct {
	CanUndo   bool   `json:"canUndo"`
	UndoLabel string `json:"undoLabel,omitempty"`
	CanRedo   bool   `json:"canRedo"`
	RedoLabel string `json:"redoLabel,omitempty"`
}

type sessionResponse struct {
	SignedIn bool   `json:"signedIn"`
	Owner    string `json:"owner,omitempty"`
}

// opt converts a wire tri-state field to the engine's.
func opt[T any](n nullable.Nullable[T]) engine.Optional[T] {
	if !n.IsSpecified() {
		return engine.Unspecified[T]()
	}
	if n.IsNull() {
		return engine.Null[T]()
	}
	return engine.Some(n.MustGet())
}

// optMap converts with a value mapping, for fields whose wire type differs
// from the engine type.
func optMap[A, B any](n nullable.Nullable[A], f func(A) B) engine.Optional[B] {
	if !n.IsSpecified() {
		return engine.Unspecified[B]()
	}
	if n.IsNull() {
		return engine.Null[B]()
	}
	return engine.Some(f(n.MustGet()))
}
