package entry

import (
	"strings"
	"time"
)

// Filter constrains listing and aggregation. Zero fields mean no constraint on that dimension.
type Filter struct {
	Kind      Kind
	Category  string
	StartDate time.Time // inclusive
	EndDate   time.Time // inclusive
}

// FilterParams is the raw, unvalidated form of a Filter as received from a caller
type FilterParams struct {
	Kind      string
	Category  string
	StartDate string
	EndDate   string
}

// NewFilter normalizes raw parameters into a Filter. The date range is both-or-neither.
func NewFilter(p FilterParams) (Filter, error) {
	var f Filter

	if kind := strings.TrimSpace(p.Kind); kind != "" {
		k, err := ParseKind(kind)
		if err != nil {
			return Filter{}, err
		}
		f.Kind = k
	}

	f.Category = strings.TrimSpace(p.Category)

	start := strings.TrimSpace(p.StartDate)
	end := strings.TrimSpace(p.EndDate)
	if (start == "") != (end == "") {
		return Filter{}, ValidationError{Field: "date_range", Reason: "startDate and endDate must be supplied together"}
	}
	if start == "" {
		return f, nil
	}

	var err error
	if f.StartDate, err = ParseDate("startDate", start); err != nil {
		return Filter{}, err
	}
	if f.EndDate, err = ParseDate("endDate", end); err != nil {
		return Filter{}, err
	}

	return f, f.Validate()
}

// Validate checks the invariants of an already-typed filter
func (f Filter) Validate() error {
	if f.Kind != "" && !f.Kind.Valid() {
		return ValidationError{Field: "kind", Reason: "must be income or expense"}
	}
	if f.StartDate.IsZero() != f.EndDate.IsZero() {
		return ValidationError{Field: "date_range", Reason: "startDate and endDate must be supplied together"}
	}
	if f.HasDateRange() && DateOf(f.StartDate).After(DateOf(f.EndDate)) {
		return ValidationError{Field: "date_range", Reason: "startDate must not be after endDate"}
	}
	return nil
}

// HasDateRange reports whether the filter bounds OccursOn
func (f Filter) HasDateRange() bool {
	return !f.StartDate.IsZero() && !f.EndDate.IsZero()
}

// Matches applies the filter to a single entry
func (f Filter) Matches(e *Entry) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.HasDateRange() {
		day := DateOf(e.OccursOn)
		if day.Before(DateOf(f.StartDate)) || day.After(DateOf(f.EndDate)) {
			return false
		}
	}
	return true
}
