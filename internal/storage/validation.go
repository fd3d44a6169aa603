// Package storage provides the data persistence layer for the centsible
// application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calyptra/centsible/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidBudget      = errors.New("invalid budget")
	ErrInvalidRecurring   = errors.New("invalid recurring transaction")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateAccount validates an account.
func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if strings.TrimSpace(account.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.Type) == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidAccount)
	}
	return nil
}

// validateTransaction validates a single ledger transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Description == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTransaction)
	}
	if txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if txn.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidTransaction)
	}
	if _, err := model.ParseTransactionType(string(txn.Type)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	if txn.IsTransfer() {
		if txn.ToAccountID == nil || *txn.ToAccountID == "" {
			return fmt.Errorf("%w: transfer requires a destination account", ErrInvalidTransaction)
		}
		if txn.CategoryID != nil {
			return fmt.Errorf("%w: transfer must not carry a category", ErrInvalidTransaction)
		}
	} else {
		if txn.CategoryID == nil {
			return fmt.Errorf("%w: missing category", ErrInvalidTransaction)
		}
		if txn.ToAccountID != nil {
			return fmt.Errorf("%w: only transfers carry a destination account", ErrInvalidTransaction)
		}
	}

	return nil
}

// validateRecurring validates a recurring obligation.
func validateRecurring(obligation *model.RecurringTransaction) error {
	if obligation == nil {
		return fmt.Errorf("%w: recurring transaction", ErrNilParameter)
	}
	if strings.TrimSpace(obligation.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidRecurring)
	}
	if obligation.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidRecurring)
	}
	if obligation.CategoryID == 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidRecurring)
	}
	if obligation.NextDueDate.IsZero() {
		return fmt.Errorf("%w: missing next due date", ErrInvalidRecurring)
	}
	if obligation.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidRecurring)
	}
	if obligation.Type != model.TypeIncome && obligation.Type != model.TypeExpense {
		return fmt.Errorf("%w: type must be INCOME or EXPENSE", ErrInvalidRecurring)
	}
	if _, err := model.ParseFrequency(string(obligation.Frequency)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecurring, err)
	}
	return nil
}

// validateBudgetCategory validates a per-category budget entry.
func validateBudgetCategory(entry *model.BudgetCategory) error {
	if entry == nil {
		return fmt.Errorf("%w: budget category", ErrNilParameter)
	}
	if entry.BudgetID == 0 {
		return fmt.Errorf("%w: missing budget ID", ErrInvalidBudget)
	}
	if entry.CategoryID == 0 {
		return fmt.Errorf("%w: missing category ID", ErrInvalidBudget)
	}
	if entry.Planned.IsNegative() {
		return fmt.Errorf("%w: planned amount must not be negative", ErrInvalidBudget)
	}
	return nil
}
