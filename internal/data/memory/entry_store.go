package memory

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/personal-finance-ledger/internal/domain/entry"
)

// EntryStore is an in-process entry.Store. It hands out copies so callers never share
// state with the stored entries.
type EntryStore struct {
	mu      sync.RWMutex
	entries map[int64]*entry.Entry
	lastID  int64
	logger  *slog.Logger
}

var (
	_ entry.Store      = (*EntryStore)(nil)
	_ entry.Transactor = (*EntryStore)(nil)
)

// NewEntryStore creates an empty in-memory store
func NewEntryStore(logger *slog.Logger) *EntryStore {
	return &EntryStore{
		entries: make(map[int64]*entry.Entry),
		logger:  logger,
	}
}

func (s *EntryStore) Insert(ctx context.Context, e *entry.Entry) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(e), nil
}

func (s *EntryStore) GetByID(ctx context.Context, id int64) (*entry.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id].Clone(), nil
}

func (s *EntryStore) QueryByOwner(ctx context.Context, ownerID string, f entry.Filter) ([]*entry.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query(ownerID, f), nil
}

func (s *EntryStore) Update(ctx context.Context, e *entry.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update(e)
}

func (s *EntryStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delete(id)
}

// InTx runs fn while holding the write lock and restores the previous contents if fn fails
func (s *EntryStore) InTx(ctx context.Context, fn func(tx entry.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := maps.Clone(s.entries)
	lastID := s.lastID

	if err := fn(&txView{store: s}); err != nil {
		s.entries = snapshot
		s.lastID = lastID
		s.logger.Debug("In-memory transaction rolled back", "error", err)
		return err
	}
	return nil
}

// Len returns the number of stored entries
func (s *EntryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *EntryStore) insert(e *entry.Entry) int64 {
	s.lastID++
	stored := e.Clone()
	stored.ID = s.lastID
	s.entries[stored.ID] = stored
	return stored.ID
}

func (s *EntryStore) query(ownerID string, f entry.Filter) []*entry.Entry {
	var out []*entry.Entry
	for _, e := range s.entries {
		if e.OwnerID == ownerID && f.Matches(e) {
			out = append(out, e.Clone())
		}
	}
	return out
}

func (s *EntryStore) update(e *entry.Entry) error {
	if _, ok := s.entries[e.ID]; !ok {
		return entry.NotFoundError{EntryID: e.ID}
	}
	s.entries[e.ID] = e.Clone()
	return nil
}

func (s *EntryStore) delete(id int64) error {
	if _, ok := s.entries[id]; !ok {
		return entry.NotFoundError{EntryID: id}
	}
	delete(s.entries, id)
	return nil
}

// txView is the Store handed to InTx callbacks. The lock is already held by InTx.
type txView struct {
	store *EntryStore
}

func (t *txView) Insert(ctx context.Context, e *entry.Entry) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return t.store.insert(e), nil
}

func (t *txView) GetByID(ctx context.Context, id int64) (*entry.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return t.store.entries[id].Clone(), nil
}

func (t *txView) QueryByOwner(ctx context.Context, ownerID string, f entry.Filter) ([]*entry.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return t.store.query(ownerID, f), nil
}

func (t *txView) Update(ctx context.Context, e *entry.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.store.update(e)
}

func (t *txView) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.store.delete(id)
}
