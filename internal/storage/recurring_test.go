package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyptra/centsible/internal/common"
	"github.com/calyptra/centsible/internal/model"
)

func seedRecurring(t *testing.T, store *SQLiteStorage, id, name string, due time.Time) *model.RecurringTransaction {
	t.Helper()
	catID := seedCategory(t, store, name+" category")
	obligation := &model.RecurringTransaction{
		ID:          id,
		Name:        name,
		Amount:      decimal.RequireFromString("9.99"),
		Type:        model.TypeExpense,
		AccountID:   "acc1",
		CategoryID:  catID,
		NextDueDate: due,
		Frequency:   model.FrequencyMonthly,
		Active:      true,
	}
	if err := store.CreateRecurring(context.Background(), obligation); err != nil {
		t.Fatalf("Failed to seed recurring %s: %v", id, err)
	}
	return obligation
}

func TestRecurringCRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		seedRecurring(t, store, "rec1", "Netflix", due)

		got, err := store.GetRecurring(ctx, "rec1")
		require.NoError(t, err)
		assert.Equal(t, "Netflix", got.Name)
		assert.Equal(t, model.FrequencyMonthly, got.Frequency)
		assert.True(t, got.Active)
		assert.True(t, got.NextDueDate.Equal(due))
	})

	t.Run("get missing", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		_, err := store.GetRecurring(ctx, "nope")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("list orders by due date and honors active filter", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		later := seedRecurring(t, store, "rec1", "Rent", time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))
		seedRecurring(t, store, "rec2", "Netflix", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, store.SetRecurringActive(ctx, later.ID, false))

		all, err := store.ListRecurring(ctx, false)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "rec2", all[0].ID)
		assert.Equal(t, "rec1", all[1].ID)

		active, err := store.ListRecurring(ctx, true)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "rec2", active[0].ID)
	})

	t.Run("set next due date", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		seedRecurring(t, store, "rec1", "Netflix", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
		next := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.SetRecurringNextDue(ctx, "rec1", next))

		got, err := store.GetRecurring(ctx, "rec1")
		require.NoError(t, err)
		assert.True(t, got.NextDueDate.Equal(next))
	})

	t.Run("update does not touch the schedule", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
		obligation := seedRecurring(t, store, "rec1", "Netflix", due)

		obligation.Name = "Netflix Premium"
		obligation.Amount = decimal.RequireFromString("15.99")
		obligation.NextDueDate = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, store.UpdateRecurring(ctx, obligation))

		got, err := store.GetRecurring(ctx, "rec1")
		require.NoError(t, err)
		assert.Equal(t, "Netflix Premium", got.Name)
		assert.Equal(t, "15.99", got.Amount.String())
		assert.True(t, got.NextDueDate.Equal(due), "schedule position only moves through SetRecurringNextDue")
	})

	t.Run("delete", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		seedRecurring(t, store, "rec1", "Netflix", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, store.DeleteRecurring(ctx, "rec1"))

		_, err := store.GetRecurring(ctx, "rec1")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		err := store.CreateRecurring(ctx, nil)
		assert.ErrorIs(t, err, ErrNilParameter)

		err = store.CreateRecurring(ctx, &model.RecurringTransaction{
			Name:        "Bad",
			Amount:      decimal.RequireFromString("10"),
			Type:        model.TypeTransfer, // obligations move money in or out, never between accounts
			AccountID:   "acc1",
			CategoryID:  1,
			NextDueDate: time.Now(),
			Frequency:   model.FrequencyMonthly,
		})
		assert.ErrorIs(t, err, ErrInvalidRecurring)
	})
}
