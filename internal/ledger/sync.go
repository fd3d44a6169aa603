// Package ledger keeps account balances consistent with the transaction
// ledger. Every transaction mutation flows through a Syncer so the row change
// and its balance effect commit in the same database transaction; a failed
// mutation rolls back with no balance drift.
package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/calyptra/centsible/internal/model"
	"github.com/calyptra/centsible/internal/service"
)

// Effect is one signed balance change against one account.
type Effect struct {
	AccountID string
	Delta     decimal.Decimal
}

// Effects returns the signed balance changes a transaction causes:
// income credits the source account, an expense debits it, and a transfer
// debits the source and credits the destination.
func Effects(txn *model.Transaction) []Effect {
	switch txn.Type {
	case model.TypeIncome:
		return []Effect{{AccountID: txn.AccountID, Delta: txn.Amount}}
	case model.TypeExpense:
		return []Effect{{AccountID: txn.AccountID, Delta: txn.Amount.Neg()}}
	case model.TypeTransfer:
		effects := []Effect{{AccountID: txn.AccountID, Delta: txn.Amount.Neg()}}
		if txn.ToAccountID != nil {
			effects = append(effects, Effect{AccountID: *txn.ToAccountID, Delta: txn.Amount})
		}
		return effects
	default:
		// Transaction types are validated at every boundary; anything else
		// is a programming error.
		panic(fmt.Sprintf("unknown transaction type %q", txn.Type))
	}
}

// Inverse negates a set of effects, undoing a previously applied transaction.
func Inverse(effects []Effect) []Effect {
	inverted := make([]Effect, len(effects))
	for i, e := range effects {
		inverted[i] = Effect{AccountID: e.AccountID, Delta: e.Delta.Neg()}
	}
	return inverted
}

// Apply inserts a transaction and applies its balance effects within the
// given store scope. Callers pass a service.Transaction to make the insert
// and the balance update atomic.
func Apply(ctx context.Context, store service.TxStore, txn *model.Transaction) error {
	if err := store.CreateTransaction(ctx, txn); err != nil {
		return err
	}
	return applyEffects(ctx, store, Effects(txn))
}

func applyEffects(ctx context.Context, store service.TxStore, effects []Effect) error {
	for _, effect := range effects {
		if err := store.AdjustAccountBalance(ctx, effect.AccountID, effect.Delta); err != nil {
			return err
		}
	}
	return nil
}

// Syncer applies ledger mutations while keeping account balances in sync.
type Syncer struct {
	store service.Storage
}

// NewSyncer creates a Syncer over the given storage.
func NewSyncer(store service.Storage) *Syncer {
	return &Syncer{store: store}
}

// Record inserts a new transaction and applies its balance effects.
func (s *Syncer) Record(ctx context.Context, txn *model.Transaction) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := Apply(ctx, tx, txn); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Remove deletes a transaction and applies the inverse of its effects.
func (s *Syncer) Remove(ctx context.Context, id string) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	txn, err := tx.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if err := tx.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	if err := applyEffects(ctx, tx, Inverse(Effects(txn))); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Update overwrites a transaction, undoing the old version's effects and
// applying the new version's. Accounts, amounts, and type may all change;
// at the balance level this is a delete followed by an insert.
func (s *Syncer) Update(ctx context.Context, txn *model.Transaction) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	old, err := tx.GetTransaction(ctx, txn.ID)
	if err != nil {
		return err
	}

	if err := tx.UpdateTransaction(ctx, txn); err != nil {
		return err
	}
	if err := applyEffects(ctx, tx, Inverse(Effects(old))); err != nil {
		return err
	}
	if err := applyEffects(ctx, tx, Effects(txn)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Recalculate rebuilds one account's balance as the sum of every effect in
// the current ledger that references it. This is the repair path after a
// restore or an external import; day-to-day mutations maintain the balance
// incrementally.
func (s *Syncer) Recalculate(ctx context.Context, accountID string) (decimal.Decimal, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer func() { _ = tx.Rollback() }()

	txns, err := tx.ListTransactions(ctx, service.TransactionFilter{InvolvingAccount: accountID})
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for i := range txns {
		for _, effect := range Effects(&txns[i]) {
			if effect.AccountID == accountID {
				balance = balance.Add(effect.Delta)
			}
		}
	}

	if err := tx.SetAccountBalance(ctx, accountID, balance); err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return balance, nil
}
