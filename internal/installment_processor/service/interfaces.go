package service

import (
	"context"

	"github.com/personal-finance-ledger/internal/domain/entry"
	"github.com/personal-finance-ledger/internal/domain/installment"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

// ProcessingService turns an installment request into a persisted series
type ProcessingService interface {
	ProcessInstallmentRequest(ctx context.Context, request *shared.InstallmentRequest) error
}

// SeriesCreator is the part of the ledger engine the processor depends on
type SeriesCreator interface {
	CreateInstallmentSeries(ctx context.Context, ownerID string, plan installment.Plan) ([]*entry.Entry, error)
}
