package ledger

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/personal-finance-ledger/internal/domain/entry"
)

type MockStore struct {
	mock.Mock
}

var _ entry.Store = (*MockStore)(nil)

func (m *MockStore) Insert(ctx context.Context, e *entry.Entry) (int64, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) GetByID(ctx context.Context, id int64) (*entry.Entry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entry.Entry), args.Error(1)
}

func (m *MockStore) QueryByOwner(ctx context.Context, ownerID string, f entry.Filter) ([]*entry.Entry, error) {
	args := m.Called(ctx, ownerID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entry.Entry), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, e *entry.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTxStore runs InTx callbacks against its own MockStore
type MockTxStore struct {
	MockStore
}

var _ entry.Transactor = (*MockTxStore)(nil)

func (m *MockTxStore) InTx(ctx context.Context, fn func(tx entry.Store) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(&m.MockStore)
}

type MockLister struct {
	mock.Mock
}

var _ Lister = (*MockLister)(nil)

func (m *MockLister) List(ctx context.Context, ownerID string, f entry.Filter) ([]*entry.Entry, error) {
	args := m.Called(ctx, ownerID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entry.Entry), args.Error(1)
}
