package service

import (
	"context"
	"log/slog"

	"github.com/personal-finance-ledger/internal/domain/entry"
	"github.com/personal-finance-ledger/internal/domain/installment"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

type ProcessingServiceImpl struct {
	engine SeriesCreator
	logger *slog.Logger
}

func NewProcessingService(engine SeriesCreator, logger *slog.Logger) ProcessingService {
	return &ProcessingServiceImpl{
		engine: engine,
		logger: logger,
	}
}

// ProcessInstallmentRequest converts the request into a plan and creates the series.
// Engine errors are returned unchanged so the caller can classify them.
func (s *ProcessingServiceImpl) ProcessInstallmentRequest(ctx context.Context, request *shared.InstallmentRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	plan, err := PlanFromRequest(request)
	if err != nil {
		logger.Warn("Rejected installment request", "request_id", request.RequestID.String(), "error", err)
		return err
	}

	logger.Info("Processing installment request",
		"request_id", request.RequestID.String(),
		"owner_id", request.OwnerID,
		"count", plan.Count,
	)

	created, err := s.engine.CreateInstallmentSeries(ctx, request.OwnerID, plan)
	if err != nil {
		logger.Error("Installment series failed",
			"request_id", request.RequestID.String(),
			"committed", len(created),
			"error", err,
		)
		return err
	}

	logger.Info("Installment series persisted", "request_id", request.RequestID.String(), "entries", len(created))
	return nil
}

// PlanFromRequest parses the wire request into an installment plan
func PlanFromRequest(request *shared.InstallmentRequest) (installment.Plan, error) {
	firstDate, err := entry.ParseDate("first_date", request.FirstDate)
	if err != nil {
		return installment.Plan{}, err
	}
	return installment.Plan{
		TotalAmount: request.TotalAmount,
		Count:       request.Count,
		FirstDate:   firstDate,
		Description: request.Description,
		Category:    request.Category,
	}, nil
}
