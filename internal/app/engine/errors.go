package engine

import "errors"

var (
	ErrTripNotFound     = errors.New("trip not found")
	ErrDayNotFound      = errors.New("day not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrNoActiveTrip     = errors.New("no active trip")
	ErrInvalidDateRange = errors.New("end date must be on or after start date")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrNothingToRedo    = errors.New("nothing to redo")
)
