package ledger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/personal-finance-ledger/internal/domain/entry"
	"github.com/personal-finance-ledger/internal/domain/installment"
)

// Options tunes engine policy
type Options struct {
	// FallbackCategory is used for installment plans submitted without a category
	FallbackCategory string
	// AtomicInstallments runs a series in one Store transaction when the Store supports it
	AtomicInstallments bool
}

// Engine owns the entry lifecycle. It is stateless between calls; the Store is the only
// shared mutable resource.
type Engine struct {
	store  entry.Store
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a ledger engine over the given store
func NewEngine(store entry.Store, opts Options, logger *slog.Logger) *Engine {
	if strings.TrimSpace(opts.FallbackCategory) == "" {
		opts.FallbackCategory = DefaultFallbackCategory
	}
	return &Engine{
		store:  store,
		opts:   opts,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// DefaultFallbackCategory is the category given to installments planned without one
const DefaultFallbackCategory = "Credit Card"

// Create validates the fields and persists a new entry for the owner
func (e *Engine) Create(ctx context.Context, ownerID string, f entry.Fields) (*entry.Entry, error) {
	created, err := entry.New(ownerID, f, e.now())
	if err != nil {
		return nil, err
	}

	id, err := e.store.Insert(ctx, created)
	if err != nil {
		e.logger.Error("Failed to insert entry", "owner_id", created.OwnerID, "error", err)
		return nil, storeErr("insert", err)
	}
	created.ID = id

	e.logger.Debug("Entry created", "entry_id", id, "owner_id", created.OwnerID, "kind", string(created.Kind))
	return created, nil
}

// Get returns one of the owner's entries. Entries of other owners are reported as not found.
func (e *Engine) Get(ctx context.Context, ownerID string, id int64) (*entry.Entry, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	return e.owned(ctx, e.store, ownerID, id)
}

// CreateInstallmentSeries expands the plan and persists one expense per installment, in order.
// Without a transaction, installments written before a failure stay committed and the returned
// SeriesError says which index failed and how many succeeded.
func (e *Engine) CreateInstallmentSeries(ctx context.Context, ownerID string, plan installment.Plan) ([]*entry.Entry, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	items, err := installment.Expand(plan, e.opts.FallbackCategory)
	if err != nil {
		return nil, err
	}

	// Build every entry up front so a validation failure never leaves a partial series
	createdAt := e.now()
	pending := make([]*entry.Entry, len(items))
	for i, item := range items {
		if pending[i], err = entry.New(ownerID, item.Fields(), createdAt); err != nil {
			return nil, err
		}
	}

	if tx, ok := e.store.(entry.Transactor); ok && e.opts.AtomicInstallments {
		var saved []*entry.Entry
		err := tx.InTx(ctx, func(s entry.Store) error {
			var insertErr error
			saved, insertErr = e.insertSeries(ctx, s, pending)
			return insertErr
		})
		if err != nil {
			var seriesErr entry.SeriesError
			if errors.As(err, &seriesErr) {
				seriesErr.Succeeded = 0
				seriesErr.RolledBack = true
				err = seriesErr
			} else {
				err = entry.SeriesError{Index: 0, RolledBack: true, Err: storeErr("transaction", err)}
			}
			e.logger.Error("Installment series rolled back", "owner_id", ownerID, "count", len(pending), "error", err)
			return nil, err
		}
		e.logger.Info("Installment series created", "owner_id", ownerID, "count", len(saved), "atomic", true)
		return saved, nil
	}

	saved, err := e.insertSeries(ctx, e.store, pending)
	if err != nil {
		e.logger.Error("Installment series partially persisted", "owner_id", ownerID, "count", len(pending), "committed", len(saved), "error", err)
		return saved, err
	}
	e.logger.Info("Installment series created", "owner_id", ownerID, "count", len(saved), "atomic", false)
	return saved, nil
}

func (e *Engine) insertSeries(ctx context.Context, s entry.Store, pending []*entry.Entry) ([]*entry.Entry, error) {
	saved := make([]*entry.Entry, 0, len(pending))
	for i, p := range pending {
		id, err := s.Insert(ctx, p)
		if err != nil {
			return saved, entry.SeriesError{Index: i, Succeeded: len(saved), Err: storeErr("insert", err)}
		}
		p.ID = id
		saved = append(saved, p)
	}
	return saved, nil
}

// Update replaces the mutable fields of one of the owner's entries.
// ID, owner and creation time never change.
func (e *Engine) Update(ctx context.Context, ownerID string, id int64, f entry.Fields) (*entry.Entry, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	current, err := e.owned(ctx, e.store, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := current.Apply(f); err != nil {
		return nil, err
	}

	if err := e.store.Update(ctx, current); err != nil {
		e.logger.Error("Failed to update entry", "entry_id", id, "error", err)
		return nil, storeErr("update", err)
	}
	return current, nil
}

// Delete permanently removes one of the owner's entries. Deleting twice yields NotFoundError.
func (e *Engine) Delete(ctx context.Context, ownerID string, id int64) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	if _, err := e.owned(ctx, e.store, ownerID, id); err != nil {
		return err
	}
	if err := e.store.Delete(ctx, id); err != nil {
		e.logger.Error("Failed to delete entry", "entry_id", id, "error", err)
		return storeErr("delete", err)
	}
	return nil
}

// List returns the owner's entries matching the filter, newest first with ties broken by ID descending
func (e *Engine) List(ctx context.Context, ownerID string, f entry.Filter) ([]*entry.Entry, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	entries, err := e.store.QueryByOwner(ctx, ownerID, f)
	if err != nil {
		e.logger.Error("Failed to query entries", "owner_id", ownerID, "error", err)
		return nil, storeErr("query", err)
	}

	// Stores may push the filter down or not; the result must be identical either way
	out := make([]*entry.Entry, 0, len(entries))
	for _, en := range entries {
		if en.OwnedBy(ownerID) && f.Matches(en) {
			out = append(out, en)
		}
	}
	slices.SortFunc(out, func(a, b *entry.Entry) int {
		switch {
		case entry.Less(a, b):
			return -1
		case entry.Less(b, a):
			return 1
		}
		return 0
	})
	return out, nil
}

// owned loads an entry and hides it unless ownerID owns it
func (e *Engine) owned(ctx context.Context, s entry.Store, ownerID string, id int64) (*entry.Entry, error) {
	found, err := s.GetByID(ctx, id)
	if err != nil {
		e.logger.Error("Failed to load entry", "entry_id", id, "error", err)
		return nil, storeErr("get", err)
	}
	if !found.OwnedBy(ownerID) {
		return nil, entry.NotFoundError{EntryID: id}
	}
	return found, nil
}

func requireOwner(ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return entry.ValidationError{Field: "owner_id", Reason: "cannot be empty"}
	}
	return nil
}

// storeErr preserves typed errors from the Store and wraps everything else as StoreError
func storeErr(op string, err error) error {
	var (
		notFound entry.NotFoundError
		conflict entry.ConflictError
		wrapped  entry.StoreError
	)
	if errors.As(err, &notFound) || errors.As(err, &conflict) || errors.As(err, &wrapped) {
		return err
	}
	return entry.StoreError{Op: op, Err: err}
}
