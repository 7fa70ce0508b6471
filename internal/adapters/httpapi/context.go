package httpapi

import (
	"context"

	"github.com/roamplan/itinerary-engine/internal/domain"
)

type contextKey string

const subjectKey contextKey = "subject"

// WithSubject returns a context carrying the authenticated user id.
func WithSubject(ctx context.Context, subject domain.OwnerID) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFromContext extracts the authenticated user id, if any.
func SubjectFromContext(ctx context.Context) (domain.OwnerID, bool) {
	s, ok := ctx.Value(subjectKey).(domain.OwnerID)
	return s, ok && s != ""
}
