package model

import (
	"fmt"
	"time"
)

// CategoryType indicates whether a category classifies income or expenses.
type CategoryType string

const (
	// CategoryTypeIncome marks categories for money coming in.
	CategoryTypeIncome CategoryType = "INCOME"
	// CategoryTypeExpense marks categories for money going out.
	CategoryTypeExpense CategoryType = "EXPENSE"
)

// ParseCategoryType converts a stored string into a CategoryType.
func ParseCategoryType(s string) (CategoryType, error) {
	switch CategoryType(s) {
	case CategoryTypeIncome, CategoryTypeExpense:
		return CategoryType(s), nil
	default:
		return "", fmt.Errorf("unknown category type %q", s)
	}
}

// Category represents a spending or income category.
type Category struct {
	CreatedAt   time.Time
	Name        string
	Description string
	Color       string
	Icon        string
	Type        CategoryType
	ID          int
	IsActive    bool
}
