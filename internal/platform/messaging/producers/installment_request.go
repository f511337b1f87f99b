package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/personal-finance-ledger/internal/config"
	"github.com/personal-finance-ledger/internal/domain/shared"
)

// Header names carried by installment request messages
const (
	HeaderCorrelationID = "correlation-id"
	HeaderRequestID     = "request-id"
)

// InstallmentRequestProducer publishes installment requests keyed by owner,
// so one owner's requests are processed in submission order.
type InstallmentRequestProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

var _ InstallmentRequestPublisher = (*InstallmentRequestProducer)(nil)

// NewInstallmentRequestProducer creates the producer and ensures its topic exists
func NewInstallmentRequestProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*InstallmentRequestProducer, error) {
	if cfg.InstallmentTopic == "" {
		return nil, fmt.Errorf("kafka installment topic is not configured")
	}

	if err := ensureTopic(cfg, cfg.InstallmentTopic, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure installment topic %s exists: %w", cfg.InstallmentTopic, err)
	}

	// Synchronous writes: the API only answers 202 once the broker holds the request
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.InstallmentTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.MaxWait,
	}

	return &InstallmentRequestProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.InstallmentTopic,
	}, nil
}

// PublishInstallmentRequest writes the request to the installment topic
func (p *InstallmentRequestProducer) PublishInstallmentRequest(ctx context.Context, request *shared.InstallmentRequest) error {
	value, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal installment request: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(request.OwnerID),
		Value: value,
		Headers: []kafka.Header{
			{Key: HeaderRequestID, Value: []byte(request.RequestID.String())},
			{Key: HeaderCorrelationID, Value: []byte(request.CorrelationID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish installment request",
			"topic", p.topic,
			"request_id", request.RequestID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to publish installment request to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published installment request",
		"topic", p.topic,
		"request_id", request.RequestID.String(),
		"owner_id", request.OwnerID,
	)
	return nil
}

func (p *InstallmentRequestProducer) Close() error {
	p.logger.Info("Closing installment request producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
