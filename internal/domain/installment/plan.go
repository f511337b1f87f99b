package installment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/personal-finance-ledger/internal/domain/entry"
)

// Plan is a transient request to split one purchase into Count monthly expenses.
// It is expanded and discarded, never persisted.
type Plan struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int             `json:"count"`
	FirstDate   time.Time       `json:"first_date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
}

// Installment is one derived element of an expanded Plan
type Installment struct {
	Position    int // 1-based
	Count       int
	Amount      decimal.Decimal
	OccursOn    time.Time
	Description string
	Category    string
}

// Fields converts the installment into entry fields of kind expense
func (i Installment) Fields() entry.Fields {
	return entry.Fields{
		Description: i.Description,
		Amount:      i.Amount,
		Kind:        entry.KindExpense,
		Category:    i.Category,
		OccursOn:    i.OccursOn,
	}
}

// Label annotates a description with the installment position
func Label(description string, position, count int) string {
	return fmt.Sprintf("%s (Installment %d/%d)", description, position, count)
}
