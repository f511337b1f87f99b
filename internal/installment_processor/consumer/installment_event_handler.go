package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/personal-finance-ledger/internal/domain/entry"
	"github.com/personal-finance-ledger/internal/domain/shared"
	"github.com/personal-finance-ledger/internal/installment_processor/service"
	"github.com/personal-finance-ledger/internal/platform/messaging/producers"
)

const dlqPublishTimeout = 10 * time.Second

// InstallmentEventHandler handles installment request messages from Kafka
type InstallmentEventHandler struct {
	processingService service.ProcessingService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewInstallmentEventHandler creates a new handler. producer may be nil when the DLQ is disabled.
func NewInstallmentEventHandler(
	logger *slog.Logger,
	processingService service.ProcessingService,
	producer producers.DeadLetterPublisher,
) *InstallmentEventHandler {
	return &InstallmentEventHandler{
		processingService: processingService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes one message. A nil return commits the offset; an error makes the
// consumer retry it. Requests that can never succeed go to the DLQ instead.
func (h *InstallmentEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.InstallmentRequest
	if err := json.Unmarshal(value, &request); err != nil {
		h.logger.Error("Failed to unmarshal installment request from Kafka message",
			"error", err,
			"message_key", string(key),
		)
		return h.deadLetter(ctx, key, value, shared.FailureReasonMalformedMessage, err)
	}

	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received installment request for processing",
		"request_id", request.RequestID.String(),
		"owner_id", request.OwnerID,
		"count", request.Count,
	)

	err := h.processingService.ProcessInstallmentRequest(ctx, &request)
	if err == nil {
		logger.Info("Successfully processed installment request", "request_id", request.RequestID.String())
		return nil
	}

	reason, retryable := classify(ctx, err)
	if retryable {
		return fmt.Errorf("processing installment request %s failed: %w", request.RequestID.String(), err)
	}
	return h.deadLetter(ctx, key, value, reason, err)
}

// classify maps a processing error to a DLQ reason. Retryable errors are redelivered instead.
func classify(ctx context.Context, err error) (shared.FailureReason, bool) {
	var (
		validationErr entry.ValidationError
		seriesErr     entry.SeriesError
		storeErr      entry.StoreError
	)

	// A series with committed installments is never redelivered, even on shutdown
	isSeries := errors.As(err, &seriesErr)
	if isSeries && !seriesErr.RolledBack && seriesErr.Succeeded > 0 {
		return shared.FailureReasonPartialSeries, false
	}

	if ctx.Err() != nil {
		// Shutting down; nothing was kept, leave the offset for the next consumer
		return "", true
	}

	switch {
	case isSeries && seriesErr.RolledBack:
		return shared.FailureReasonSeriesRolledBack, false
	case isSeries:
		return shared.FailureReasonPartialSeries, false
	case errors.As(err, &validationErr):
		return shared.FailureReasonValidationFailed, false
	case errors.As(err, &storeErr):
		return shared.FailureReasonPersistenceFailed, false
	default:
		return shared.FailureReasonUnknownError, false
	}
}

func (h *InstallmentEventHandler) deadLetter(ctx context.Context, key, value []byte, reason shared.FailureReason, cause error) error {
	if h.producer == nil {
		return fmt.Errorf("%s with no DLQ configured: %w", reason, cause)
	}

	// The DLQ write must still land when the message is dead-lettered during shutdown
	dlqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dlqPublishTimeout)
	defer cancel()

	if dlqErr := h.producer.PublishToDLQ(dlqCtx, string(key), value, reason, cause.Error()); dlqErr != nil {
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", dlqErr,
			"original_error", cause,
			"message_key", string(key),
		)
		return fmt.Errorf("failed to dead-letter message: %w", errors.Join(cause, dlqErr))
	}

	h.logger.Warn("Published unprocessable installment request to DLQ", "message_key", string(key), "reason", string(reason))
	return nil
}
