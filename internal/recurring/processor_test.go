package recurring

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyptra/centsible/internal/common"
	"github.com/calyptra/centsible/internal/model"
	"github.com/calyptra/centsible/internal/service"
	"github.com/calyptra/centsible/internal/storage"
)

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name      string
		current   time.Time
		frequency model.Frequency
		want      time.Time
	}{
		{
			name:      "weekly is a plain seven day add",
			current:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			frequency: model.FrequencyWeekly,
			want:      time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly mid-month",
			current:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			frequency: model.FrequencyMonthly,
			want:      time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "monthly from Jan 31 normalizes into March",
			current:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
			frequency: model.FrequencyMonthly,
			want:      time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "quarterly",
			current:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			frequency: model.FrequencyQuarterly,
			want:      time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "yearly over a leap day",
			current:   time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
			frequency: model.FrequencyYearly,
			want:      time.Date(2029, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(tt.current, tt.frequency)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)

			// Pure function: same inputs, same output.
			assert.True(t, NextDueDate(tt.current, tt.frequency).Equal(got))
		})
	}
}

func TestDueChecks(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	obligation := func(due time.Time) *model.RecurringTransaction {
		return &model.RecurringTransaction{NextDueDate: due}
	}

	assert.True(t, IsOverdue(obligation(now.AddDate(0, 0, -1)), now))
	assert.False(t, IsOverdue(obligation(now.AddDate(0, 0, 1)), now))

	assert.True(t, IsDueWithin(obligation(now.AddDate(0, 0, 5)), now, 7))
	assert.True(t, IsDueWithin(obligation(now.AddDate(0, 0, 7)), now, 7))
	assert.False(t, IsDueWithin(obligation(now.AddDate(0, 0, 8)), now, 7))
	assert.True(t, IsDueWithin(obligation(now.AddDate(0, 0, -3)), now, 7), "overdue counts as due")
}

func setupProcessor(t *testing.T) (*storage.SQLiteStorage, *Processor, *model.RecurringTransaction) {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	require.NoError(t, store.CreateAccount(ctx, &model.Account{
		ID:      "acc1",
		Name:    "Checking",
		Type:    "checking",
		Balance: decimal.RequireFromString("100"),
	}))

	cat, err := store.CreateCategory(ctx, "Subscriptions", "", model.CategoryTypeExpense)
	require.NoError(t, err)

	obligation := &model.RecurringTransaction{
		ID:          "rec1",
		Name:        "Netflix",
		Amount:      decimal.RequireFromString("15.99"),
		Type:        model.TypeExpense,
		AccountID:   "acc1",
		CategoryID:  cat.ID,
		NextDueDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Frequency:   model.FrequencyMonthly,
		Active:      true,
	}
	require.NoError(t, store.CreateRecurring(ctx, obligation))

	return store, NewProcessor(store), obligation
}

func TestMarkAsProcessed(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts an entry dated at the due date and advances the schedule", func(t *testing.T) {
		store, processor, obligation := setupProcessor(t)

		txn, err := processor.MarkAsProcessed(ctx, obligation)
		require.NoError(t, err)

		assert.Equal(t, "Netflix", txn.Description)
		assert.True(t, txn.Date.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
			"entry is dated when the bill was due, not when it was marked")

		account, err := store.GetAccount(ctx, "acc1")
		require.NoError(t, err)
		assert.Equal(t, "84.01", account.Balance.String())

		stored, err := store.GetRecurring(ctx, obligation.ID)
		require.NoError(t, err)
		want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		assert.True(t, stored.NextDueDate.Equal(want))
		assert.True(t, obligation.NextDueDate.Equal(want), "in-memory copy advances too")
	})

	t.Run("processing twice records two payments", func(t *testing.T) {
		store, processor, obligation := setupProcessor(t)

		first, err := processor.MarkAsProcessed(ctx, obligation)
		require.NoError(t, err)
		second, err := processor.MarkAsProcessed(ctx, obligation)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.True(t, second.Date.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)))

		txns, err := store.ListTransactions(ctx, service.TransactionFilter{})
		require.NoError(t, err)
		assert.Len(t, txns, 2)

		account, err := store.GetAccount(ctx, "acc1")
		require.NoError(t, err)
		assert.Equal(t, "68.02", account.Balance.String())

		stored, err := store.GetRecurring(ctx, obligation.ID)
		require.NoError(t, err)
		assert.True(t, stored.NextDueDate.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("recurring income credits the account", func(t *testing.T) {
		store, processor, obligation := setupProcessor(t)

		obligation.Type = model.TypeIncome
		require.NoError(t, store.UpdateRecurring(ctx, obligation))

		_, err := processor.MarkAsProcessed(ctx, obligation)
		require.NoError(t, err)

		account, err := store.GetAccount(ctx, "acc1")
		require.NoError(t, err)
		assert.Equal(t, "115.99", account.Balance.String())
	})

	t.Run("inactive obligation is rejected", func(t *testing.T) {
		store, processor, obligation := setupProcessor(t)

		obligation.Active = false
		_, err := processor.MarkAsProcessed(ctx, obligation)
		assert.ErrorIs(t, err, common.ErrInactiveRecurring)

		txns, err := store.ListTransactions(ctx, service.TransactionFilter{})
		require.NoError(t, err)
		assert.Empty(t, txns)
	})

	t.Run("nil obligation is rejected", func(t *testing.T) {
		_, processor, _ := setupProcessor(t)

		_, err := processor.MarkAsProcessed(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("missing account rolls back the insert and the schedule", func(t *testing.T) {
		store, processor, obligation := setupProcessor(t)

		require.NoError(t, store.DeleteAccount(ctx, "acc1"))

		_, err := processor.MarkAsProcessed(ctx, obligation)
		require.ErrorIs(t, err, common.ErrAccountNotFound)

		txns, err := store.ListTransactions(ctx, service.TransactionFilter{})
		require.NoError(t, err)
		assert.Empty(t, txns)

		stored, err := store.GetRecurring(ctx, obligation.ID)
		require.NoError(t, err)
		assert.True(t, stored.NextDueDate.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
			"failed processing must not advance the schedule")
	})
}
