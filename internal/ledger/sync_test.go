package ledger

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

func setup(t *testing.T) (*storage.SQLiteStorage, *Syncer, int) {
	t.Helper()
	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	for _, acc := range []struct{ id, name, balance string }{
		{"acc1", "Checking", "100"},
		{"acc2", "Savings", "20"},
	} {
		require.NoError(t, store.CreateAccount(ctx, &model.Account{
			ID:      acc.id,
			Name:    acc.name,
			Type:    "checking",
			Balance: decimal.RequireFromString(acc.balance),
		}))
	}

	cat, err := store.CreateCategory(ctx, "Groceries", "", model.CategoryTypeExpense)
	require.NoError(t, err)

	return store, NewSyncer(store), cat.ID
}

func balance(t *testing.T, store *storage.SQLiteStorage, id string) string {
	t.Helper()
	account, err := store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return account.Balance.String()
}

func expense(catID int, amount string) *model.Transaction {
	return &model.Transaction{
		Description: "Groceries run",
		Amount:      decimal.RequireFromString(amount),
		Type:        model.TypeExpense,
		Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		AccountID:   "acc1",
		CategoryID:  &catID,
	}
}

func TestEffects(t *testing.T) {
	catID := 1
	dest := "acc2"

	t.Run("income credits the source", func(t *testing.T) {
		effects := Effects(&model.Transaction{
			Type: model.TypeIncome, AccountID: "acc1",
			Amount: decimal.RequireFromString("10"), CategoryID: &catID,
		})
		require.Len(t, effects, 1)
		assert.Equal(t, "acc1", effects[0].AccountID)
		assert.Equal(t, "10", effects[0].Delta.String())
	})

	t.Run("expense debits the source", func(t *testing.T) {
		effects := Effects(&model.Transaction{
			Type: model.TypeExpense, AccountID: "acc1",
			Amount: decimal.RequireFromString("10"), CategoryID: &catID,
		})
		require.Len(t, effects, 1)
		assert.Equal(t, "-10", effects[0].Delta.String())
	})

	t.Run("transfer debits source and credits destination", func(t *testing.T) {
		effects := Effects(&model.Transaction{
			Type: model.TypeTransfer, AccountID: "acc1", ToAccountID: &dest,
			Amount: decimal.RequireFromString("10"),
		})
		require.Len(t, effects, 2)
		assert.Equal(t, "acc1", effects[0].AccountID)
		assert.Equal(t, "-10", effects[0].Delta.String())
		assert.Equal(t, "acc2", effects[1].AccountID)
		assert.Equal(t, "10", effects[1].Delta.String())
	})

	t.Run("inverse negates every delta", func(t *testing.T) {
		effects := Inverse([]Effect{
			{AccountID: "acc1", Delta: decimal.RequireFromString("-10")},
			{AccountID: "acc2", Delta: decimal.RequireFromString("10")},
		})
		assert.Equal(t, "10", effects[0].Delta.String())
		assert.Equal(t, "-10", effects[1].Delta.String())
	})
}

func TestSyncerRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("expense reduces the balance", func(t *testing.T) {
		store, syncer, catID := setup(t)

		require.NoError(t, syncer.Record(ctx, expense(catID, "30")))
		assert.Equal(t, "70", balance(t, store, "acc1"))
	})

	t.Run("income raises the balance", func(t *testing.T) {
		store, syncer, catID := setup(t)

		require.NoError(t, syncer.Record(ctx, &model.Transaction{
			Description: "Paycheck",
			Amount:      decimal.RequireFromString("1000"),
			Type:        model.TypeIncome,
			Date:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			AccountID:   "acc1",
			CategoryID:  &catID,
		}))
		assert.Equal(t, "1100", balance(t, store, "acc1"))
	})

	t.Run("transfer moves money between accounts", func(t *testing.T) {
		store, syncer, _ := setup(t)

		dest := "acc2"
		require.NoError(t, syncer.Record(ctx, &model.Transaction{
			Description: "To savings",
			Amount:      decimal.RequireFromString("50"),
			Type:        model.TypeTransfer,
			Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			AccountID:   "acc1",
			ToAccountID: &dest,
		}))

		assert.Equal(t, "50", balance(t, store, "acc1"))
		assert.Equal(t, "70", balance(t, store, "acc2"))
	})

	t.Run("missing account rolls everything back", func(t *testing.T) {
		store, syncer, catID := setup(t)

		txn := expense(catID, "30")
		txn.AccountID = "ghost"
		err := syncer.Record(ctx, txn)
		require.ErrorIs(t, err, common.ErrAccountNotFound)

		// Neither the row nor any balance change survives.
		txns, err := store.ListTransactions(ctx, service.TransactionFilter{})
		require.NoError(t, err)
		assert.Empty(t, txns)
		assert.Equal(t, "100", balance(t, store, "acc1"))
	})

	t.Run("transfer to missing destination rolls back the source debit", func(t *testing.T) {
		store, syncer, _ := setup(t)

		dest := "ghost"
		err := syncer.Record(ctx, &model.Transaction{
			Description: "Bad transfer",
			Amount:      decimal.RequireFromString("50"),
			Type:        model.TypeTransfer,
			Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			AccountID:   "acc1",
			ToAccountID: &dest,
		})
		require.ErrorIs(t, err, common.ErrAccountNotFound)
		assert.Equal(t, "100", balance(t, store, "acc1"))
	})
}

func TestSyncerRemove(t *testing.T) {
	ctx := context.Background()
	store, syncer, catID := setup(t)

	txn := expense(catID, "30")
	require.NoError(t, syncer.Record(ctx, txn))
	require.Equal(t, "70", balance(t, store, "acc1"))

	require.NoError(t, syncer.Remove(ctx, txn.ID))
	assert.Equal(t, "100", balance(t, store, "acc1"), "removing a transaction undoes its effect")

	err := syncer.Remove(ctx, txn.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSyncerUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("amount change adjusts by the difference", func(t *testing.T) {
		store, syncer, catID := setup(t)

		txn := expense(catID, "30")
		require.NoError(t, syncer.Record(ctx, txn))

		txn.Amount = decimal.RequireFromString("45")
		require.NoError(t, syncer.Update(ctx, txn))
		assert.Equal(t, "55", balance(t, store, "acc1"))
	})

	t.Run("account change moves the effect", func(t *testing.T) {
		store, syncer, catID := setup(t)

		txn := expense(catID, "30")
		require.NoError(t, syncer.Record(ctx, txn))

		txn.AccountID = "acc2"
		require.NoError(t, syncer.Update(ctx, txn))
		assert.Equal(t, "100", balance(t, store, "acc1"))
		assert.Equal(t, "-10", balance(t, store, "acc2"))
	})

	t.Run("type change flips the sign", func(t *testing.T) {
		store, syncer, catID := setup(t)

		txn := expense(catID, "30")
		require.NoError(t, syncer.Record(ctx, txn))

		txn.Type = model.TypeIncome
		require.NoError(t, syncer.Update(ctx, txn))
		assert.Equal(t, "130", balance(t, store, "acc1"))
	})
}

func TestSyncerRecalculate(t *testing.T) {
	ctx := context.Background()
	store, syncer, catID := setup(t)

	dest := "acc2"
	require.NoError(t, syncer.Record(ctx, expense(catID, "30")))
	require.NoError(t, syncer.Record(ctx, &model.Transaction{
		Description: "To savings",
		Amount:      decimal.RequireFromString("25"),
		Type:        model.TypeTransfer,
		Date:        time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		AccountID:   "acc1",
		ToAccountID: &dest,
	}))

	// Corrupt the stored balance, then rebuild it from the ledger. The seed
	// balance of 100 was never backed by transactions, so the recomputed
	// value is the pure sum of effects.
	require.NoError(t, store.SetAccountBalance(ctx, "acc1", decimal.RequireFromString("123456")))

	got, err := syncer.Recalculate(ctx, "acc1")
	require.NoError(t, err)
	assert.Equal(t, "-55", got.String())
	assert.Equal(t, "-55", balance(t, store, "acc1"))

	got, err = syncer.Recalculate(ctx, "acc2")
	require.NoError(t, err)
	assert.Equal(t, "25", got.String(), "incoming transfer counts toward the destination")
}
