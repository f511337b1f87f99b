package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentRequest defines a Kafka message asking for an installment series to be created
type InstallmentRequest struct {
	RequestID     uuid.UUID       `json:"request_id"`
	OwnerID       string          `json:"owner_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Count         int             `json:"count"`
	FirstDate     string          `json:"first_date"` // YYYY-MM-DD
	Description   string          `json:"description"`
	Category      string          `json:"category,omitempty"`
	CorrelationID string          `json:"correlation_id"`
	Timestamp     time.Time       `json:"timestamp"`
}
