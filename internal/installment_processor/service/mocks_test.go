package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/personal-finance-ledger/internal/domain/entry"
	"github.com/personal-finance-ledger/internal/domain/installment"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

// MockProcessingService mocks the ProcessingService interface
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessInstallmentRequest(ctx context.Context, request *shared.InstallmentRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

// MockSeriesCreator mocks the ledger engine
type MockSeriesCreator struct {
	mock.Mock
}

func (m *MockSeriesCreator) CreateInstallmentSeries(ctx context.Context, ownerID string, plan installment.Plan) ([]*entry.Entry, error) {
	args := m.Called(ctx, ownerID, plan)
	created, _ := args.Get(0).([]*entry.Entry)
	return created, args.Error(1)
}
