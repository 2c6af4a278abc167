package util

import (
	"strconv"
	"time"
)

// DateLayout is the calendar date format used in configs and requests.
const DateLayout = "2006-01-02"

// ParseTime tries YYYY-MM-DD, RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayRange returns the half-open window [Day(from), Day(to)): the end date is exclusive.
func DayRange(from, to time.Time) (time.Time, time.Time) {
	return Day(from), Day(to)
}

// InDayRange reports whether t falls inside DayRange(from, to).
func InDayRange(t, from, to time.Time) bool {
	f, e := DayRange(from, to)
	return !t.Before(f) && t.Before(e)
}
