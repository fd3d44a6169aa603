package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/calyptra/centsible/internal/config"
	"github.com/calyptra/centsible/internal/model"
	"github.com/calyptra/centsible/internal/service"
	"github.com/calyptra/centsible/internal/storage"
)

// serviceFilterAll matches the entire ledger.
func serviceFilterAll() service.TransactionFilter {
	return service.TransactionFilter{}
}

// initStorage opens the configured database and applies pending migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// parseAmount parses a user-supplied money amount.
func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount must not be negative")
	}
	return amount, nil
}

// parseAmountSigned parses a money amount that may be negative, such as the
// opening balance of a credit card.
func parseAmountSigned(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}

// resolveCategory finds an active category by name.
func resolveCategory(ctx context.Context, store *storage.SQLiteStorage, name string) (*model.Category, error) {
	cat, err := store.GetCategoryByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}
	if cat == nil {
		return nil, fmt.Errorf("category %q does not exist; create it with 'centsible categories add'", name)
	}
	return cat, nil
}

// formatAmount renders a money amount for tables.
func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
