package entry

import "context"

// Store defines durable keyed storage of entries. Implementations must guarantee
// unique IDs and atomic single-entry writes.
type Store interface {
	// Insert persists a new entry and returns the assigned ID
	Insert(ctx context.Context, e *Entry) (int64, error)

	// GetByID returns nil, nil when no entry has the given ID
	GetByID(ctx context.Context, id int64) (*Entry, error)

	// QueryByOwner returns the owner's entries matching the filter
	QueryByOwner(ctx context.Context, ownerID string, f Filter) ([]*Entry, error)

	// Update replaces the mutable fields of an existing entry.
	// Returns NotFoundError if the entry no longer exists.
	Update(ctx context.Context, e *Entry) error

	// Delete removes the entry permanently.
	// Returns NotFoundError if the entry does not exist.
	Delete(ctx context.Context, id int64) error
}

// Transactor is implemented by stores that can run several writes atomically.
// fn receives a Store bound to the transaction; returning an error rolls everything back.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx Store) error) error
}
