package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/personal-finance-ledger/internal/domain/entry"
	"github.com/personal-finance-ledger/internal/domain/installment"
	"github.com/personal-finance-ledger/internal/ledger"
)

// EntryRequest is the body of create and full update. Field rules live in the domain.
type EntryRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	Category    string          `json:"category"`
	Date        string          `json:"date"` // YYYY-MM-DD
}

// Fields converts the request into domain fields
func (r EntryRequest) Fields() (entry.Fields, error) {
	kind, err := entry.ParseKind(r.Kind)
	if err != nil {
		return entry.Fields{}, err
	}
	date, err := entry.ParseDate("date", r.Date)
	if err != nil {
		return entry.Fields{}, err
	}
	return entry.Fields{
		Description: r.Description,
		Amount:      r.Amount,
		Kind:        kind,
		Category:    r.Category,
		OccursOn:    date,
	}, nil
}

// EntryResponse represents an entry in API responses
type EntryResponse struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Kind        string  `json:"kind"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	CreatedAt   string  `json:"created_at"`
}

func toEntryResponse(e *entry.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount.InexactFloat64(),
		Kind:        string(e.Kind),
		Category:    e.Category,
		Date:        entry.FormatDate(e.OccursOn),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

func toEntryResponses(entries []*entry.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	return out
}

// FilterQuery holds the optional list and report filters
type FilterQuery struct {
	Kind      string `form:"kind"`
	Category  string `form:"category"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

func (q FilterQuery) Filter() (entry.Filter, error) {
	return entry.NewFilter(entry.FilterParams{
		Kind:      q.Kind,
		Category:  q.Category,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	})
}

// InstallmentPlanRequest asks for a purchase to be split into monthly expenses
type InstallmentPlanRequest struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	Count       int             `json:"count"`
	FirstDate   string          `json:"first_date"` // YYYY-MM-DD
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
}

func (r InstallmentPlanRequest) Plan() (installment.Plan, error) {
	firstDate, err := entry.ParseDate("first_date", r.FirstDate)
	if err != nil {
		return installment.Plan{}, err
	}
	return installment.Plan{
		TotalAmount: r.TotalAmount,
		Count:       r.Count,
		FirstDate:   firstDate,
		Description: r.Description,
		Category:    r.Category,
	}, nil
}

// InstallmentAcceptedResponse is returned by asynchronous submission
type InstallmentAcceptedResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// SummaryResponse carries the income, expense and balance totals
type SummaryResponse struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

func toSummaryResponse(s ledger.Summary) SummaryResponse {
	return SummaryResponse{
		Income:  s.Income.InexactFloat64(),
		Expense: s.Expense.InexactFloat64(),
		Balance: s.Balance.InexactFloat64(),
	}
}

// CategoryTotalResponse is one (category, kind) group of a breakdown
type CategoryTotalResponse struct {
	Category string  `json:"category"`
	Kind     string  `json:"kind"`
	Total    float64 `json:"total"`
	Count    int     `json:"count"`
}

func toCategoryResponses(groups []ledger.CategoryTotal) []CategoryTotalResponse {
	out := make([]CategoryTotalResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, CategoryTotalResponse{
			Category: g.Category,
			Kind:     string(g.Kind),
			Total:    g.Total.InexactFloat64(),
			Count:    g.Count,
		})
	}
	return out
}
