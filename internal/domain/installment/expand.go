package installment

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/personal-finance-ledger/internal/domain/entry"
)

const (
	// MaxCount caps a plan at thirty years of monthly installments
	MaxCount = 360

	maxYear = 9999
)

// Expand splits a plan into Count dated installments whose amounts sum to round2(TotalAmount).
// The first Count-1 installments carry round2(total/count) and the last one the remainder.
// Installment i occurs i calendar months after FirstDate, clamped to the end of short months.
// An empty plan category is replaced by fallbackCategory.
func Expand(plan Plan, fallbackCategory string) ([]Installment, error) {
	if plan.Count < 1 {
		return nil, entry.ValidationError{Field: "count", Reason: "must be at least 1"}
	}
	if plan.Count > MaxCount {
		return nil, entry.ValidationError{Field: "count", Reason: fmt.Sprintf("must be at most %d", MaxCount)}
	}

	total := entry.Round2(plan.TotalAmount)
	if !total.IsPositive() {
		return nil, entry.ValidationError{Field: "total_amount", Reason: "must be greater than zero"}
	}
	if !entry.WithinRange(total) {
		return nil, entry.ValidationError{Field: "total_amount", Reason: "must not exceed " + entry.MaxAmount.StringFixed(2)}
	}
	if plan.FirstDate.IsZero() {
		return nil, entry.ValidationError{Field: "first_date", Reason: "is required"}
	}
	description := strings.TrimSpace(plan.Description)
	if description == "" {
		return nil, entry.ValidationError{Field: "description", Reason: "cannot be empty"}
	}

	count := decimal.NewFromInt(int64(plan.Count))
	per := entry.Round2(total.Div(count))
	last := entry.Round2(total.Sub(per.Mul(count.Sub(decimal.NewFromInt(1)))))

	// Totals below one cent per installment cannot be split into positive amounts
	if !per.IsPositive() || !last.IsPositive() {
		return nil, entry.ValidationError{Field: "total_amount", Reason: "too small to split into the requested number of installments"}
	}

	category := strings.TrimSpace(plan.Category)
	if category == "" {
		category = fallbackCategory
	}
	firstDate := entry.DateOf(plan.FirstDate)
	if entry.AddMonths(firstDate, plan.Count-1).Year() > maxYear {
		return nil, entry.ValidationError{Field: "first_date", Reason: "series would run past year 9999"}
	}

	out := make([]Installment, plan.Count)
	for i := range out {
		amount := per
		if i == plan.Count-1 {
			amount = last
		}
		out[i] = Installment{
			Position:    i + 1,
			Count:       plan.Count,
			Amount:      amount,
			OccursOn:    entry.AddMonths(firstDate, i),
			Description: Label(description, i+1, plan.Count),
			Category:    category,
		}
	}

	return out, nil
}
