package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personal-finance-ledger/internal/domain/entry"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var entryRowColumns = []string{"id", "owner_id", "description", "amount_cents", "kind", "category", "occurs_on", "created_at"}

func sampleEntry() *entry.Entry {
	return &entry.Entry{
		OwnerID:     "user-1",
		Description: "Salary",
		Amount:      decimal.RequireFromString("1500.25"),
		Kind:        entry.KindIncome,
		Category:    "Work",
		OccursOn:    time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2024, time.March, 6, 9, 30, 0, 0, time.UTC),
	}
}

func TestEntryStore_Insert(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newEntryStore(newTestLogger(), mock)
	e := sampleEntry()
	query := regexp.QuoteMeta("INSERT INTO entries (owner_id, description, amount_cents, kind, category, occurs_on, created_at)")

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(e.OwnerID, e.Description, int64(150025), "income", e.Category, e.OccursOn, e.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		id, err := store.Insert(ctx, e)
		assert.NoError(t, err)
		assert.Equal(t, int64(42), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UniqueViolationIsConflict", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(e.OwnerID, e.Description, int64(150025), "income", e.Category, e.OccursOn, e.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505", Detail: "Key (id)=(42) already exists."})

		_, err := store.Insert(ctx, e)
		var conflict entry.ConflictError
		assert.ErrorAs(t, err, &conflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		mock.ExpectQuery(query).
			WithArgs(e.OwnerID, e.Description, int64(150025), "income", e.Category, e.OccursOn, e.CreatedAt).
			WillReturnError(dbErr)

		_, err := store.Insert(ctx, e)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to insert entry")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEntryStore_GetByID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newEntryStore(newTestLogger(), mock)
	want := sampleEntry()
	want.ID = 7
	query := regexp.QuoteMeta("FROM entries") + `\s+` + regexp.QuoteMeta("WHERE id = $1")

	t.Run("Success", func(t *testing.T) {
		rows := pgxmock.NewRows(entryRowColumns).
			AddRow(int64(7), want.OwnerID, want.Description, int64(150025), "income", want.Category, want.OccursOn, want.CreatedAt)
		mock.ExpectQuery(query).WithArgs(int64(7)).WillReturnRows(rows)

		got, err := store.GetByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got.ID)
		assert.Equal(t, "1500.25", got.Amount.StringFixed(2))
		assert.Equal(t, entry.KindIncome, got.Kind)
		assert.Equal(t, want.OccursOn, got.OccursOn)
		assert.Equal(t, want.CreatedAt, got.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFoundReturnsNil", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(int64(8)).WillReturnError(pgx.ErrNoRows)

		got, err := store.GetByID(ctx, 8)
		assert.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectQuery(query).WithArgs(int64(9)).WillReturnError(dbErr)

		got, err := store.GetByID(ctx, 9)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEntryStore_QueryByOwner(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newEntryStore(newTestLogger(), mock)
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	f := entry.Filter{Kind: entry.KindExpense, Category: "Food", StartDate: start, EndDate: end}

	t.Run("Success", func(t *testing.T) {
		query, _ := buildOwnerQuery("user-1", f)
		createdAt := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
		rows := pgxmock.NewRows(entryRowColumns).
			AddRow(int64(3), "user-1", "Dinner", int64(4550), "expense", "Food", end, createdAt).
			AddRow(int64(2), "user-1", "Lunch", int64(1200), "expense", "Food", start, createdAt)
		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs("user-1", "expense", "Food", start, end).
			WillReturnRows(rows)

		entries, err := store.QueryByOwner(ctx, "user-1", f)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "45.50", entries[0].Amount.StringFixed(2))
		assert.Equal(t, "Lunch", entries[1].Description)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		dbErr := errors.New("timeout")
		mock.ExpectQuery(regexp.QuoteMeta("FROM entries WHERE owner_id = $1")).
			WithArgs("user-1").
			WillReturnError(dbErr)

		entries, err := store.QueryByOwner(ctx, "user-1", entry.Filter{})
		assert.Nil(t, entries)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBuildOwnerQuery(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		filter    entry.Filter
		wantWhere string
		wantArgs  []interface{}
	}{
		{"NoFilter", entry.Filter{}, "WHERE owner_id = $1 ORDER BY", []interface{}{"u"}},
		{"KindOnly", entry.Filter{Kind: entry.KindIncome}, "WHERE owner_id = $1 AND kind = $2 ORDER BY", []interface{}{"u", "income"}},
		{"CategoryOnly", entry.Filter{Category: "Rent"}, "WHERE owner_id = $1 AND category = $2 ORDER BY", []interface{}{"u", "Rent"}},
		{"DateRange", entry.Filter{StartDate: start, EndDate: end}, "WHERE owner_id = $1 AND occurs_on BETWEEN $2 AND $3 ORDER BY", []interface{}{"u", start, end}},
		{
			"Everything",
			entry.Filter{Kind: entry.KindExpense, Category: "Food", StartDate: start, EndDate: end},
			"WHERE owner_id = $1 AND kind = $2 AND category = $3 AND occurs_on BETWEEN $4 AND $5 ORDER BY",
			[]interface{}{"u", "expense", "Food", start, end},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query, args := buildOwnerQuery("u", tc.filter)
			assert.Contains(t, query, tc.wantWhere)
			assert.True(t, strings.HasSuffix(query, "ORDER BY occurs_on DESC, id DESC"))
			assert.Equal(t, tc.wantArgs, args)
		})
	}
}

func TestEntryStore_Update(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newEntryStore(newTestLogger(), mock)
	e := sampleEntry()
	e.ID = 5
	query := regexp.QuoteMeta("UPDATE entries")

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(e.Description, int64(150025), "income", e.Category, e.OccursOn, int64(5)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, store.Update(ctx, e))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoRowsIsNotFound", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(e.Description, int64(150025), "income", e.Category, e.OccursOn, int64(5)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := store.Update(ctx, e)
		assert.ErrorIs(t, err, entry.NotFoundError{EntryID: 5})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEntryStore_Delete(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newEntryStore(newTestLogger(), mock)
	query := regexp.QuoteMeta("DELETE FROM entries WHERE id = $1")

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(int64(5)).WillReturnResult(pgxmock.NewResult("DELETE", 1))
		assert.NoError(t, store.Delete(ctx, 5))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SecondDeleteIsNotFound", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(int64(5)).WillReturnResult(pgxmock.NewResult("DELETE", 0))
		assert.ErrorIs(t, store.Delete(ctx, 5), entry.NotFoundError{EntryID: 5})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		dbErr := errors.New("db gone")
		mock.ExpectExec(query).WithArgs(int64(6)).WillReturnError(dbErr)
		err := store.Delete(ctx, 6)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to delete entry")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEntryStore_InTx(t *testing.T) {
	ctx := context.Background()
	insert := regexp.QuoteMeta("INSERT INTO entries")

	t.Run("CommitsAllInserts", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := newEntryStore(newTestLogger(), mock)

		mock.ExpectBegin()
		mock.ExpectQuery(insert).WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectQuery(insert).WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))
		mock.ExpectCommit()

		var ids []int64
		err = store.InTx(ctx, func(tx entry.Store) error {
			for i := 0; i < 2; i++ {
				id, err := tx.Insert(ctx, sampleEntry())
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2}, ids)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollsBackOnFailure", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := newEntryStore(newTestLogger(), mock)

		dbErr := errors.New("check constraint violated")
		mock.ExpectBegin()
		mock.ExpectQuery(insert).WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectQuery(insert).WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(dbErr)
		mock.ExpectRollback()

		err = store.InTx(ctx, func(tx entry.Store) error {
			for i := 0; i < 2; i++ {
				if _, err := tx.Insert(ctx, sampleEntry()); err != nil {
					return err
				}
			}
			return nil
		})
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NestedInTxReusesTransaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		store := newEntryStore(newTestLogger(), mock)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err = store.InTx(ctx, func(tx entry.Store) error {
			return tx.(entry.Transactor).InTx(ctx, func(inner entry.Store) error { return nil })
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
