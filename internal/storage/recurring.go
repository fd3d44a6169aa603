package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/calyptra/centsible/internal/common"
	"github.com/calyptra/centsible/internal/model"
)

const recurringColumns = `id, name, amount, type, account_id, category_id, next_due_date, frequency, active, is_subscription, created_at`

// CreateRecurring inserts a new recurring obligation. An ID is generated
// when absent.
func (s *SQLiteStorage) CreateRecurring(ctx context.Context, obligation *model.RecurringTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecurring(obligation); err != nil {
		return err
	}

	if obligation.ID == "" {
		obligation.ID = model.NewID()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_transactions (id, name, amount, type, account_id, category_id, next_due_date, frequency, active, is_subscription)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		obligation.ID,
		obligation.Name,
		obligation.Amount.String(),
		string(obligation.Type),
		obligation.AccountID,
		obligation.CategoryID,
		obligation.NextDueDate,
		string(obligation.Frequency),
		obligation.Active,
		obligation.IsSubscription,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recurring transaction: %w", err)
	}

	slog.Debug("created recurring transaction", "id", obligation.ID, "name", obligation.Name)
	return nil
}

// GetRecurring returns a single recurring obligation by ID.
func (s *SQLiteStorage) GetRecurring(ctx context.Context, id string) (*model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getRecurring(ctx, s.db, id)
}

func (t *sqliteTransaction) GetRecurring(ctx context.Context, id string) (*model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getRecurring(ctx, t.tx, id)
}

func getRecurring(ctx context.Context, q querier, id string) (*model.RecurringTransaction, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+recurringColumns+` FROM recurring_transactions WHERE id = ?`, id)

	obligation, err := scanRecurring(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: recurring transaction %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring transaction: %w", err)
	}
	return obligation, nil
}

// ListRecurring returns recurring obligations ordered by next due date.
func (s *SQLiteStorage) ListRecurring(ctx context.Context, onlyActive bool) ([]model.RecurringTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + recurringColumns + ` FROM recurring_transactions`
	if onlyActive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY next_due_date, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var obligations []model.RecurringTransaction
	for rows.Next() {
		obligation, err := scanRecurring(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring transaction: %w", err)
		}
		obligations = append(obligations, *obligation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring transactions: %w", err)
	}

	return obligations, nil
}

// UpdateRecurring overwrites an obligation's user-editable fields. The
// schedule position is advanced only through SetRecurringNextDue.
func (s *SQLiteStorage) UpdateRecurring(ctx context.Context, obligation *model.RecurringTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecurring(obligation); err != nil {
		return err
	}
	if err := validateString(obligation.ID, "obligation.ID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE recurring_transactions
		SET name = ?, amount = ?, type = ?, account_id = ?, category_id = ?, frequency = ?, is_subscription = ?
		WHERE id = ?`,
		obligation.Name,
		obligation.Amount.String(),
		string(obligation.Type),
		obligation.AccountID,
		obligation.CategoryID,
		string(obligation.Frequency),
		obligation.IsSubscription,
		obligation.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update recurring transaction: %w", err)
	}

	return requireRow(result, common.ErrNotFound, obligation.ID)
}

// SetRecurringActive pauses or resumes an obligation.
func (s *SQLiteStorage) SetRecurringActive(ctx context.Context, id string, active bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE recurring_transactions SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("failed to set recurring active flag: %w", err)
	}

	return requireRow(result, common.ErrNotFound, id)
}

// SetRecurringNextDue advances an obligation's schedule position.
func (s *SQLiteStorage) SetRecurringNextDue(ctx context.Context, id string, due time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return setRecurringNextDue(ctx, s.db, id, due)
}

func (t *sqliteTransaction) SetRecurringNextDue(ctx context.Context, id string, due time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return setRecurringNextDue(ctx, t.tx, id, due)
}

func setRecurringNextDue(ctx context.Context, q querier, id string, due time.Time) error {
	result, err := q.ExecContext(ctx,
		`UPDATE recurring_transactions SET next_due_date = ? WHERE id = ?`, due, id)
	if err != nil {
		return fmt.Errorf("failed to set next due date: %w", err)
	}
	return requireRow(result, common.ErrNotFound, id)
}

// DeleteRecurring removes a recurring obligation. Ledger transactions it
// already produced are kept.
func (s *SQLiteStorage) DeleteRecurring(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recurring transaction: %w", err)
	}

	return requireRow(result, common.ErrNotFound, id)
}

func scanRecurring(scan func(dest ...any) error) (*model.RecurringTransaction, error) {
	var obligation model.RecurringTransaction
	var amount, txnType, frequency string

	if err := scan(
		&obligation.ID,
		&obligation.Name,
		&amount,
		&txnType,
		&obligation.AccountID,
		&obligation.CategoryID,
		&obligation.NextDueDate,
		&frequency,
		&obligation.Active,
		&obligation.IsSubscription,
		&obligation.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if obligation.Amount, err = scanDecimal(amount); err != nil {
		return nil, err
	}
	if obligation.Type, err = model.ParseTransactionType(txnType); err != nil {
		return nil, err
	}
	if obligation.Frequency, err = model.ParseFrequency(frequency); err != nil {
		return nil, err
	}

	return &obligation, nil
}
