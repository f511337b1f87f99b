package ledger

import (
	"cmp"
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/personal-finance-ledger/internal/domain/entry"
)

// Lister is the read path the aggregator reduces over
type Lister interface {
	List(ctx context.Context, ownerID string, f entry.Filter) ([]*entry.Entry, error)
}

// Summary holds filtered totals. Balance is Income minus Expense.
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// CategoryTotal is one (category, kind) group of a breakdown
type CategoryTotal struct {
	Category string          `json:"category"`
	Kind     entry.Kind      `json:"kind"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// Aggregator computes reports as pure reductions over List, so reports always agree with listing
type Aggregator struct {
	lister Lister
}

// NewAggregator creates an aggregator reading through lister
func NewAggregator(lister Lister) *Aggregator {
	return &Aggregator{lister: lister}
}

// Summarize totals income and expense for the owner's filtered entries.
// Rounding happens once at the end, never per entry.
func (a *Aggregator) Summarize(ctx context.Context, ownerID string, f entry.Filter) (Summary, error) {
	entries, err := a.lister.List(ctx, ownerID, f)
	if err != nil {
		return Summary{}, err
	}

	income, expense := decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch e.Kind {
		case entry.KindIncome:
			income = income.Add(e.Amount)
		case entry.KindExpense:
			expense = expense.Add(e.Amount)
		}
	}

	income = entry.Round2(income)
	expense = entry.Round2(expense)
	return Summary{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}, nil
}

// ByCategory groups the owner's filtered entries by (category, kind), largest total first
// with ties broken by category and then kind.
func (a *Aggregator) ByCategory(ctx context.Context, ownerID string, f entry.Filter) ([]CategoryTotal, error) {
	entries, err := a.lister.List(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		category string
		kind     entry.Kind
	}
	groups := make(map[groupKey]*CategoryTotal)
	for _, e := range entries {
		key := groupKey{category: e.Category, kind: e.Kind}
		g, ok := groups[key]
		if !ok {
			g = &CategoryTotal{Category: e.Category, Kind: e.Kind, Total: decimal.Zero}
			groups[key] = g
		}
		g.Total = g.Total.Add(e.Amount)
		g.Count++
	}

	out := make([]CategoryTotal, 0, len(groups))
	for _, g := range groups {
		g.Total = entry.Round2(g.Total)
		out = append(out, *g)
	}
	slices.SortFunc(out, func(x, y CategoryTotal) int {
		if c := y.Total.Cmp(x.Total); c != 0 {
			return c
		}
		if c := cmp.Compare(x.Category, y.Category); c != 0 {
			return c
		}
		return cmp.Compare(x.Kind, y.Kind)
	})
	return out, nil
}
