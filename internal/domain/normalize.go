package domain

import "strings"

// NormalizeTitle trims leading/trailing whitespace and collapses internal
// whitespace runs. It is used for trip and itinerary title normalization.
func NormalizeTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
