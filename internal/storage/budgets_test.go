package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyptra/centsible/internal/model"
)

func TestBudgets(t *testing.T) {
	ctx := context.Background()

	t.Run("get or create is stable per month", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		first, err := store.GetOrCreateBudget(ctx, 3, 2026)
		require.NoError(t, err)
		assert.NotZero(t, first.ID)

		second, err := store.GetOrCreateBudget(ctx, 3, 2026)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		other, err := store.GetOrCreateBudget(ctx, 4, 2026)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, other.ID)
	})

	t.Run("month out of range", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, err := store.GetOrCreateBudget(ctx, 13, 2026)
		assert.ErrorIs(t, err, ErrInvalidBudget)

		_, err = store.GetOrCreateBudget(ctx, 0, 2026)
		assert.ErrorIs(t, err, ErrInvalidBudget)
	})

	t.Run("set budget category overwrites previous plan", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		catID := seedCategory(t, store, "Groceries")
		budget, err := store.GetOrCreateBudget(ctx, 3, 2026)
		require.NoError(t, err)

		require.NoError(t, store.SetBudgetCategory(ctx, &model.BudgetCategory{
			BudgetID:   budget.ID,
			CategoryID: catID,
			Planned:    decimal.RequireFromString("400"),
		}))
		require.NoError(t, store.SetBudgetCategory(ctx, &model.BudgetCategory{
			BudgetID:   budget.ID,
			CategoryID: catID,
			Planned:    decimal.RequireFromString("450"),
		}))

		entries, err := store.GetBudgetEntries(ctx, 3, 2026)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Groceries", entries[0].Category.Name)
		assert.Equal(t, "450", entries[0].Planned.String())
	})

	t.Run("entries join categories and sort by name", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		utilities := seedCategory(t, store, "Utilities")
		dining := seedCategory(t, store, "Dining")
		budget, err := store.GetOrCreateBudget(ctx, 3, 2026)
		require.NoError(t, err)

		for id, plan := range map[int]string{utilities: "120", dining: "200"} {
			require.NoError(t, store.SetBudgetCategory(ctx, &model.BudgetCategory{
				BudgetID:   budget.ID,
				CategoryID: id,
				Planned:    decimal.RequireFromString(plan),
			}))
		}

		entries, err := store.GetBudgetEntries(ctx, 3, 2026)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Dining", entries[0].Category.Name)
		assert.Equal(t, "Utilities", entries[1].Category.Name)
	})

	t.Run("absent budget yields empty entries", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		entries, err := store.GetBudgetEntries(ctx, 12, 2030)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("negative plan is rejected", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		catID := seedCategory(t, store, "Groceries")
		budget, err := store.GetOrCreateBudget(ctx, 3, 2026)
		require.NoError(t, err)

		err = store.SetBudgetCategory(ctx, &model.BudgetCategory{
			BudgetID:   budget.ID,
			CategoryID: catID,
			Planned:    decimal.RequireFromString("-1"),
		})
		assert.ErrorIs(t, err, ErrInvalidBudget)
	})
}
