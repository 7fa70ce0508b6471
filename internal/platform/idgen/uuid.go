package idgen

import (
	"github.com/google/uuid"

	"github.com/roamplan/itinerary-engine/internal/domain"
)

// UUIDGenerator issues random UUIDv4 ids for all aggregate types.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewTripID() domain.TripID         { return domain.TripID(uuid.NewString()) }
func (UUIDGenerator) NewDayID() domain.DayID           { return domain.DayID(uuid.NewString()) }
func (UUIDGenerator) NewActivityID() domain.ActivityID { return domain.ActivityID(uuid.NewString()) }
