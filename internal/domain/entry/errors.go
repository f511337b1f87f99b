package entry

import (
	"fmt"
	"strconv"
)

// ValidationError indicates malformed, missing or out-of-range input
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return "invalid " + e.Field + ": " + e.Reason
}

// NotFoundError indicates that the entry does not exist or is not owned by the caller.
// Both cases are reported identically.
type NotFoundError struct {
	EntryID int64
}

func (e NotFoundError) Error() string {
	return "entry not found: " + strconv.FormatInt(e.EntryID, 10)
}

// Is implements the errors.Is interface for NotFoundError
func (e NotFoundError) Is(target error) bool {
	t, ok := target.(NotFoundError)
	if !ok {
		return false
	}
	// A zero target ID matches any NotFoundError
	if t.EntryID == 0 {
		return true
	}
	return e.EntryID == t.EntryID
}

// ConflictError indicates a uniqueness violation reported by the Store
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string {
	return "conflict: " + e.Reason
}

// StoreError wraps a persistence failure
type StoreError struct {
	Op  string
	Err error
}

func (e StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e StoreError) Unwrap() error {
	return e.Err
}

// SeriesError reports a failed installment series. Index is the 0-based installment that failed
// and Succeeded how many installments remain committed.
type SeriesError struct {
	Index      int
	Succeeded  int
	RolledBack bool
	Err        error
}

func (e SeriesError) Error() string {
	if e.RolledBack {
		return fmt.Sprintf("installment %d failed, series rolled back: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("installment %d failed after %d committed: %v", e.Index, e.Succeeded, e.Err)
}

func (e SeriesError) Unwrap() error {
	return e.Err
}
