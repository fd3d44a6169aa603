// Package recurring converts due bills and subscriptions into ledger
// transactions and advances their schedules.
package recurring

import (
	"context"
	"fmt"
	"time"

	"github.com/calyptra/centsible/internal/common"
	"github.com/calyptra/centsible/internal/ledger"
	"github.com/calyptra/centsible/internal/model"
	"github.com/calyptra/centsible/internal/service"
)

// NextDueDate advances a due date by exactly one period. Month and year
// arithmetic follows time.AddDate normalization: Jan 31 + 1 month lands in
// early March rather than clamping to Feb 28/29. Weekly periods are a plain
// 7-day add.
func NextDueDate(current time.Time, frequency model.Frequency) time.Time {
	switch frequency {
	case model.FrequencyWeekly:
		return current.AddDate(0, 0, 7)
	case model.FrequencyMonthly:
		return current.AddDate(0, 1, 0)
	case model.FrequencyQuarterly:
		return current.AddDate(0, 3, 0)
	case model.FrequencyYearly:
		return current.AddDate(1, 0, 0)
	default:
		// Frequencies are validated at every parse boundary; anything else
		// is a programming error.
		panic(fmt.Sprintf("unknown frequency %q", frequency))
	}
}

// IsOverdue reports whether an obligation's due date has passed.
func IsOverdue(obligation *model.RecurringTransaction, now time.Time) bool {
	return obligation.NextDueDate.Before(now)
}

// IsDueWithin reports whether an obligation comes due within the next N days
// (or is already overdue).
func IsDueWithin(obligation *model.RecurringTransaction, now time.Time, days int) bool {
	return !obligation.NextDueDate.After(now.AddDate(0, 0, days))
}

// Processor turns due obligations into ledger entries.
type Processor struct {
	store service.Storage
}

// NewProcessor creates a Processor over the given storage.
func NewProcessor(store service.Storage) *Processor {
	return &Processor{store: store}
}

// MarkAsProcessed records an obligation as paid (or received, for income):
// it inserts a ledger transaction dated at the obligation's current due date,
// applies the balance effect, and advances the schedule by one period, all
// in a single database transaction. Deliberately not idempotent: processing
// twice produces two ledger entries and advances the schedule twice.
func (p *Processor) MarkAsProcessed(ctx context.Context, obligation *model.RecurringTransaction) (*model.Transaction, error) {
	if obligation == nil {
		return nil, fmt.Errorf("recurring transaction cannot be nil")
	}
	if !obligation.Active {
		return nil, fmt.Errorf("%w: %s", common.ErrInactiveRecurring, obligation.Name)
	}

	categoryID := obligation.CategoryID
	txn := &model.Transaction{
		ID:          model.NewID(),
		Description: obligation.Name,
		Amount:      obligation.Amount,
		Type:        obligation.Type,
		// The entry is dated when the obligation was due, not when the user
		// got around to marking it.
		Date:       obligation.NextDueDate,
		AccountID:  obligation.AccountID,
		CategoryID: &categoryID,
	}

	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := ledger.Apply(ctx, tx, txn); err != nil {
		return nil, err
	}

	next := NextDueDate(obligation.NextDueDate, obligation.Frequency)
	if err := tx.SetRecurringNextDue(ctx, obligation.ID, next); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	obligation.NextDueDate = next
	return txn, nil
}
