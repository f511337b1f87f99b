// Package postgres provides the PostgreSQL implementation of the entry store.
// Filters are pushed down into SQL and installment series can run in one transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/personal-finance-ledger/internal/domain/entry"
	"github.com/personal-finance-ledger/internal/platform/persistence"
)

const uniqueViolationCode = "23505"

const entryColumns = "id, owner_id, description, amount_cents, kind, category, occurs_on, created_at"

// EntryStore implements entry.Store and entry.Transactor for PostgreSQL
type EntryStore struct {
	querier persistence.Querier    // Can be *pgxpool.Pool or pgx.Tx
	begin   persistence.TxBeginner // nil when bound to a transaction
	logger  *slog.Logger
}

var (
	_ entry.Store      = (*EntryStore)(nil)
	_ entry.Transactor = (*EntryStore)(nil)
)

// NewEntryStore creates a PostgreSQL entry store on the database pool
func NewEntryStore(logger *slog.Logger, db *persistence.PostgresDB) *EntryStore {
	return newEntryStore(logger, db.Pool())
}

func newEntryStore(logger *slog.Logger, pool persistence.Pool) *EntryStore {
	return &EntryStore{
		querier: pool,
		begin:   pool,
		logger:  logger,
	}
}

// WithTx returns a store that runs every statement on tx
func (s *EntryStore) WithTx(tx pgx.Tx) *EntryStore {
	return &EntryStore{
		querier: tx,
		logger:  s.logger,
	}
}

// InTx runs fn in a single database transaction. A store already bound to a
// transaction runs fn directly on itself.
func (s *EntryStore) InTx(ctx context.Context, fn func(tx entry.Store) error) error {
	if s.begin == nil {
		return fn(s)
	}
	return persistence.RunTx(ctx, s.begin, func(tx pgx.Tx) error {
		return fn(s.WithTx(tx))
	})
}

// Insert stores a new entry and returns the id assigned by the entries sequence
func (s *EntryStore) Insert(ctx context.Context, e *entry.Entry) (int64, error) {
	query := `
		INSERT INTO entries (owner_id, description, amount_cents, kind, category, occurs_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := s.querier.QueryRow(ctx, query,
		e.OwnerID,
		e.Description,
		entry.ToCents(e.Amount),
		string(e.Kind),
		e.Category,
		e.OccursOn,
		e.CreatedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return 0, entry.ConflictError{Reason: pgErr.Detail}
		}
		s.logger.Error("Failed to insert entry", "owner_id", e.OwnerID, "error", err)
		return 0, fmt.Errorf("failed to insert entry: %w", err)
	}

	return id, nil
}

// GetByID retrieves an entry by id. Returns nil, nil when it does not exist.
func (s *EntryStore) GetByID(ctx context.Context, id int64) (*entry.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE id = $1
	`

	e, err := scanEntry(s.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("Failed to get entry", "entry_id", id, "error", err)
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return e, nil
}

// QueryByOwner returns the owner's entries matching the filter, newest first
func (s *EntryStore) QueryByOwner(ctx context.Context, ownerID string, f entry.Filter) ([]*entry.Entry, error) {
	query, args := buildOwnerQuery(ownerID, f)

	rows, err := s.querier.Query(ctx, query, args...)
	if err != nil {
		s.logger.Error("Failed to query entries", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []*entry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			s.logger.Error("Failed to scan entry", "owner_id", ownerID, "error", err)
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("Error iterating entries", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}

	return entries, nil
}

// Update replaces the mutable columns of an entry. Returns NotFoundError if no row matched.
func (s *EntryStore) Update(ctx context.Context, e *entry.Entry) error {
	query := `
		UPDATE entries
		SET description = $1, amount_cents = $2, kind = $3, category = $4, occurs_on = $5
		WHERE id = $6
	`

	result, err := s.querier.Exec(ctx, query,
		e.Description,
		entry.ToCents(e.Amount),
		string(e.Kind),
		e.Category,
		e.OccursOn,
		e.ID,
	)
	if err != nil {
		s.logger.Error("Failed to update entry", "entry_id", e.ID, "error", err)
		return fmt.Errorf("failed to update entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entry.NotFoundError{EntryID: e.ID}
	}

	return nil
}

// Delete removes an entry. Returns NotFoundError if no row matched.
func (s *EntryStore) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM entries WHERE id = $1`

	result, err := s.querier.Exec(ctx, query, id)
	if err != nil {
		s.logger.Error("Failed to delete entry", "entry_id", id, "error", err)
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return entry.NotFoundError{EntryID: id}
	}

	return nil
}

// buildOwnerQuery renders the filter as SQL with positional arguments
func buildOwnerQuery(ownerID string, f entry.Filter) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("SELECT " + entryColumns + " FROM entries WHERE owner_id = $1")
	args := []interface{}{ownerID}

	if f.Kind != "" {
		args = append(args, string(f.Kind))
		fmt.Fprintf(&sb, " AND kind = $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	if f.HasDateRange() {
		args = append(args, entry.DateOf(f.StartDate), entry.DateOf(f.EndDate))
		fmt.Fprintf(&sb, " AND occurs_on BETWEEN $%d AND $%d", len(args)-1, len(args))
	}
	sb.WriteString(" ORDER BY occurs_on DESC, id DESC")

	return sb.String(), args
}

func scanEntry(row pgx.Row) (*entry.Entry, error) {
	var (
		e      entry.Entry
		cents  int64
		kind   string
		occurs time.Time
	)
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Description, &cents, &kind, &e.Category, &occurs, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Amount = entry.FromCents(cents)
	e.Kind = entry.Kind(kind)
	e.OccursOn = entry.DateOf(occurs)
	e.CreatedAt = e.CreatedAt.UTC()
	return &e, nil
}
