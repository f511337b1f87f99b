package entry

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies an entry as money coming in or going out
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k belongs to the closed set of kinds
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// ParseKind converts a raw string into a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ValidationError{Field: "kind", Reason: "must be income or expense"}
	}
	return k, nil
}

// Entry represents a single income or expense record owned by one user
type Entry struct {
	ID          int64           `json:"id"`
	OwnerID     string          `json:"owner_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // Always positive, direction is carried by Kind
	Kind        Kind            `json:"kind"`
	Category    string          `json:"category"`
	OccursOn    time.Time       `json:"occurs_on"` // Calendar date at UTC midnight
	CreatedAt   time.Time       `json:"created_at"`
}

// Fields holds the mutable part of an entry, used for both create and full-field update
type Fields struct {
	Description string
	Amount      decimal.Decimal
	Kind        Kind
	Category    string
	OccursOn    time.Time
}

// Normalize validates the fields and returns a cleaned copy: trimmed text,
// amount rounded to cents and date truncated to a calendar day.
func (f Fields) Normalize() (Fields, error) {
	out := Fields{
		Description: strings.TrimSpace(f.Description),
		Amount:      Round2(f.Amount),
		Kind:        f.Kind,
		Category:    strings.TrimSpace(f.Category),
		OccursOn:    DateOf(f.OccursOn),
	}

	if out.Description == "" {
		return Fields{}, ValidationError{Field: "description", Reason: "cannot be empty"}
	}
	if !out.Amount.IsPositive() {
		return Fields{}, ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if !WithinRange(out.Amount) {
		return Fields{}, ValidationError{Field: "amount", Reason: "must not exceed " + MaxAmount.StringFixed(2)}
	}
	if !out.Kind.Valid() {
		return Fields{}, ValidationError{Field: "kind", Reason: "must be income or expense"}
	}
	if out.Category == "" {
		return Fields{}, ValidationError{Field: "category", Reason: "cannot be empty"}
	}
	if f.OccursOn.IsZero() {
		return Fields{}, ValidationError{Field: "date", Reason: "is required"}
	}

	return out, nil
}

// New builds an unsaved entry for the owner. The ID is assigned by the Store on insert.
func New(ownerID string, f Fields, createdAt time.Time) (*Entry, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, ValidationError{Field: "owner_id", Reason: "cannot be empty"}
	}

	normalized, err := f.Normalize()
	if err != nil {
		return nil, err
	}

	return &Entry{
		OwnerID:     ownerID,
		Description: normalized.Description,
		Amount:      normalized.Amount,
		Kind:        normalized.Kind,
		Category:    normalized.Category,
		OccursOn:    normalized.OccursOn,
		CreatedAt:   createdAt,
	}, nil
}

// Apply replaces the mutable fields, leaving ID, OwnerID and CreatedAt untouched
func (e *Entry) Apply(f Fields) error {
	normalized, err := f.Normalize()
	if err != nil {
		return err
	}

	e.Description = normalized.Description
	e.Amount = normalized.Amount
	e.Kind = normalized.Kind
	e.Category = normalized.Category
	e.OccursOn = normalized.OccursOn
	return nil
}

// OwnedBy reports whether the entry belongs to ownerID
func (e *Entry) OwnedBy(ownerID string) bool {
	return e != nil && e.OwnerID == ownerID
}

// Clone returns a copy that does not share state with e
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// Less orders entries by OccursOn descending, then ID descending
func Less(a, b *Entry) bool {
	if !a.OccursOn.Equal(b.OccursOn) {
		return a.OccursOn.After(b.OccursOn)
	}
	return a.ID > b.ID
}
