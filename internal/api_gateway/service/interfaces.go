package service

import (
	"context"

	"github.com/personal-finance-ledger/internal/domain/entry"
	"github.com/personal-finance-ledger/internal/domain/installment"
	"github.com/personal-finance-ledger/internal/domain/shared"
	"github.com/personal-finance-ledger/internal/ledger"
)

// EntryService defines the entry operations exposed over HTTP. *ledger.Engine implements it.
type EntryService interface {
	// Create persists a new entry for the owner
	// Returns ValidationError for bad fields
	Create(ctx context.Context, ownerID string, f entry.Fields) (*entry.Entry, error)

	// Get returns NotFoundError when the entry is absent or owned by someone else
	Get(ctx context.Context, ownerID string, id int64) (*entry.Entry, error)

	Update(ctx context.Context, ownerID string, id int64, f entry.Fields) (*entry.Entry, error)
	Delete(ctx context.Context, ownerID string, id int64) error

	// List returns matching entries newest first
	List(ctx context.Context, ownerID string, f entry.Filter) ([]*entry.Entry, error)
}

// ReportService defines the aggregate reads. *ledger.Aggregator implements it.
type ReportService interface {
	Summarize(ctx context.Context, ownerID string, f entry.Filter) (ledger.Summary, error)
	ByCategory(ctx context.Context, ownerID string, f entry.Filter) ([]ledger.CategoryTotal, error)
}

// InstallmentService creates installment series inline or hands them to the processor
type InstallmentService interface {
	// CreateSeries expands and persists the plan before returning
	CreateSeries(ctx context.Context, ownerID string, plan installment.Plan) ([]*entry.Entry, error)

	// Submit validates the plan and publishes it for asynchronous processing.
	// Returns ErrAsyncDisabled when no publisher is configured.
	Submit(ctx context.Context, ownerID string, plan installment.Plan, correlationID string) (*shared.InstallmentRequest, error)
}

// SeriesCreator is the part of the ledger engine used for installments
type SeriesCreator interface {
	CreateInstallmentSeries(ctx context.Context, ownerID string, plan installment.Plan) ([]*entry.Entry, error)
}

var (
	_ EntryService  = (*ledger.Engine)(nil)
	_ ReportService = (*ledger.Aggregator)(nil)
	_ SeriesCreator = (*ledger.Engine)(nil)
)
