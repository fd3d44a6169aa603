package model

import "github.com/shopspring/decimal"

// Budget is a monthly spending plan. Its per-category amounts live in
// BudgetCategory rows; at most one row exists per (budget, category) pair.
type Budget struct {
	ID    int
	Month int // 1..12
	Year  int
}

// BudgetCategory is one category's planned amount within a budget.
type BudgetCategory struct {
	BudgetID        int
	CategoryID      int
	Planned         decimal.Decimal
	ReminderEnabled bool
}

// BudgetEntry joins a BudgetCategory with its category for display and for
// the insight engine, which needs category names and types alongside plans.
type BudgetEntry struct {
	Category Category
	Planned  decimal.Decimal
}
