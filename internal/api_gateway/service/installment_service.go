package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/personal-finance-ledger/internal/domain/entry"
	"github.com/personal-finance-ledger/internal/domain/installment"
	"github.com/personal-finance-ledger/internal/domain/shared"
	"github.com/personal-finance-ledger/internal/platform/messaging/producers"
)

// ErrAsyncDisabled is returned by Submit when Kafka intake is turned off
var ErrAsyncDisabled = errors.New("asynchronous installment intake is disabled")

// InstallmentServiceImpl implements the InstallmentService interface
type InstallmentServiceImpl struct {
	engine           SeriesCreator
	publisher        producers.InstallmentRequestPublisher // nil when Kafka is disabled
	fallbackCategory string
	logger           *slog.Logger
	now              func() time.Time
}

// NewInstallmentService creates a new installment service. publisher may be nil.
func NewInstallmentService(
	logger *slog.Logger,
	engine SeriesCreator,
	publisher producers.InstallmentRequestPublisher,
	fallbackCategory string,
) InstallmentService {
	return &InstallmentServiceImpl{
		engine:           engine,
		publisher:        publisher,
		fallbackCategory: fallbackCategory,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *InstallmentServiceImpl) CreateSeries(ctx context.Context, ownerID string, plan installment.Plan) ([]*entry.Entry, error) {
	return s.engine.CreateInstallmentSeries(ctx, ownerID, plan)
}

// Submit rejects invalid plans up front so the caller gets a 400 instead of a DLQ entry
func (s *InstallmentServiceImpl) Submit(ctx context.Context, ownerID string, plan installment.Plan, correlationID string) (*shared.InstallmentRequest, error) {
	if s.publisher == nil {
		return nil, ErrAsyncDisabled
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, entry.ValidationError{Field: "owner_id", Reason: "cannot be empty"}
	}
	if _, err := installment.Expand(plan, s.fallbackCategory); err != nil {
		return nil, err
	}

	request := &shared.InstallmentRequest{
		RequestID:     uuid.New(),
		OwnerID:       ownerID,
		TotalAmount:   plan.TotalAmount,
		Count:         plan.Count,
		FirstDate:     entry.FormatDate(plan.FirstDate),
		Description:   plan.Description,
		Category:      plan.Category,
		CorrelationID: correlationID,
		Timestamp:     s.now(),
	}

	if err := s.publisher.PublishInstallmentRequest(ctx, request); err != nil {
		s.logger.Error("Failed to publish installment request",
			"owner_id", ownerID,
			"count", plan.Count,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Installment request published",
		"request_id", request.RequestID.String(),
		"owner_id", ownerID,
		"count", plan.Count,
	)
	return request, nil
}
