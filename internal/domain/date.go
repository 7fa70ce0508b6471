package domain

import "time"

// Calendar dates carry date-only semantics: they are stored as UTC midnight
// and compared by day, never by instant.

// DateOnly truncates t to UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the calendar date n days after t, normalized to UTC midnight.
func AddDays(t time.Time, n int) time.Time {
	return DateOnly(t).AddDate(0, 0, n)
}

// DaySpan returns the inclusive number of calendar days between start and end.
// A trip running 2025-06-01..2025-06-03 spans 3 days.
func DaySpan(start, end time.Time) int {
	s, e := DateOnly(start), DateOnly(end)
	return int(e.Sub(s).Hours()/24) + 1
}

// SameDate reports whether a and b fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}
