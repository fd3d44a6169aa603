package insights

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/calyptra/centsible/internal/model"
)

// CategorySpend is one category's expense total for a month.
type CategorySpend struct {
	CategoryName string
	Amount       decimal.Decimal
	Planned      *decimal.Decimal // nil when the category isn't budgeted
}

// MonthlySummary is the dashboard view of one calendar month.
type MonthlySummary struct {
	Year          int
	Month         time.Month
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Net           decimal.Decimal
	ByCategory    []CategorySpend
}

// Summarize aggregates a month of ledger activity into a dashboard summary.
// Like Generate, this is a pure function over the snapshot.
func Summarize(snap Snapshot) MonthlySummary {
	year, month := snap.Today.Year(), snap.Today.Month()

	names := make(map[int]string, len(snap.Categories))
	for _, cat := range snap.Categories {
		names[cat.ID] = cat.Name
	}
	planned := make(map[int]decimal.Decimal, len(snap.Budget))
	for _, entry := range snap.Budget {
		planned[entry.Category.ID] = entry.Planned
		if _, ok := names[entry.Category.ID]; !ok {
			names[entry.Category.ID] = entry.Category.Name
		}
	}

	summary := MonthlySummary{Year: year, Month: month}
	spend := make(map[int]decimal.Decimal)

	for i := range snap.Transactions {
		txn := &snap.Transactions[i]
		if !inMonth(txn.Date, year, month) {
			continue
		}
		switch txn.Type {
		case model.TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(txn.Amount)
		case model.TypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(txn.Amount)
			if txn.CategoryID != nil {
				spend[*txn.CategoryID] = spend[*txn.CategoryID].Add(txn.Amount)
			}
		case model.TypeTransfer:
			// Not income or spending.
		}
	}
	summary.Net = summary.TotalIncome.Sub(summary.TotalExpenses)

	for id, amount := range spend {
		row := CategorySpend{CategoryName: names[id], Amount: amount}
		if plan, ok := planned[id]; ok {
			row.Planned = &plan
		}
		summary.ByCategory = append(summary.ByCategory, row)
	}
	// Budgeted categories with no spending this month still show up.
	for id, plan := range planned {
		if _, ok := spend[id]; ok {
			continue
		}
		p := plan
		summary.ByCategory = append(summary.ByCategory, CategorySpend{
			CategoryName: names[id],
			Planned:      &p,
		})
	}

	sort.Slice(summary.ByCategory, func(i, j int) bool {
		a, b := summary.ByCategory[i], summary.ByCategory[j]
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.GreaterThan(b.Amount)
		}
		return a.CategoryName < b.CategoryName
	})

	return summary
}
