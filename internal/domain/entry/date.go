package entry

import (
	"strings"
	"time"
)

// DateFormat is the ISO-8601 calendar date layout used on every boundary
const DateFormat = "2006-01-02"

// DateOf truncates t to its calendar day at midnight UTC
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO calendar date. The field name is used in the returned ValidationError.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ValidationError{Field: field, Reason: "is required"}
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, ValidationError{Field: field, Reason: "must be a date in YYYY-MM-DD format"}
	}
	return t, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// AddMonths advances t by n calendar months, keeping the day of month when it exists
// in the target month and clamping to the month's last day otherwise (Jan 31 + 1 = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()

	// Day 1 never overflows, so normalization only carries months into years.
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
