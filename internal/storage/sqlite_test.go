package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/calyptra/centsible/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// Helper to seed an account with a known balance.
func seedAccount(t *testing.T, store *SQLiteStorage, id, name string, balance string) *model.Account {
	t.Helper()
	account := &model.Account{
		ID:      id,
		Name:    name,
		Type:    "checking",
		Balance: decimal.RequireFromString(balance),
	}
	if err := store.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("Failed to seed account %s: %v", id, err)
	}
	return account
}

// Helper to seed an expense category and return its ID.
func seedCategory(t *testing.T, store *SQLiteStorage, name string) int {
	t.Helper()
	cat, err := store.CreateCategory(context.Background(), name, "", model.CategoryTypeExpense)
	if err != nil {
		t.Fatalf("Failed to seed category %s: %v", name, err)
	}
	return cat.ID
}

// Helper to build a valid expense transaction.
func makeExpense(id, accountID string, categoryID int, amount string, date time.Time) *model.Transaction {
	return &model.Transaction{
		ID:          id,
		Description: fmt.Sprintf("Expense %s", id),
		Amount:      decimal.RequireFromString(amount),
		Type:        model.TypeExpense,
		Date:        date,
		AccountID:   accountID,
		CategoryID:  &categoryID,
	}
}
