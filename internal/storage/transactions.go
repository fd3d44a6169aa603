package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/calyptra/centsible/internal/common"
	"github.com/calyptra/centsible/internal/model"
	"github.com/calyptra/centsible/internal/service"
)

const transactionColumns = `id, description, amount, type, date, account_id, category_id, to_account_id, created_at`

// CreateTransaction inserts a new ledger transaction. An ID is generated
// when absent. Balance effects are applied by the ledger package, not here.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return createTransaction(ctx, s.db, txn)
}

func (t *sqliteTransaction) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return createTransaction(ctx, t.tx, txn)
}

func createTransaction(ctx context.Context, q querier, txn *model.Transaction) error {
	if txn.ID == "" {
		txn.ID = model.NewID()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO transactions (id, description, amount, type, date, account_id, category_id, to_account_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.Description,
		txn.Amount.String(),
		string(txn.Type),
		txn.Date,
		txn.AccountID,
		nullableInt(txn.CategoryID),
		nullableString(txn.ToAccountID),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	slog.Debug("created transaction", "id", txn.ID, "type", txn.Type, "amount", txn.Amount)
	return nil
}

// GetTransaction returns a single ledger transaction by ID.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getTransaction(ctx, s.db, id)
}

func (t *sqliteTransaction) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getTransaction(ctx, t.tx, id)
}

func getTransaction(ctx context.Context, q querier, id string) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)

	txn, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// UpdateTransaction overwrites an existing ledger transaction.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if err := validateString(txn.ID, "txn.ID"); err != nil {
		return err
	}
	return updateTransaction(ctx, s.db, txn)
}

func (t *sqliteTransaction) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if err := validateString(txn.ID, "txn.ID"); err != nil {
		return err
	}
	return updateTransaction(ctx, t.tx, txn)
}

func updateTransaction(ctx context.Context, q querier, txn *model.Transaction) error {
	result, err := q.ExecContext(ctx, `
		UPDATE transactions
		SET description = ?, amount = ?, type = ?, date = ?, account_id = ?, category_id = ?, to_account_id = ?
		WHERE id = ?`,
		txn.Description,
		txn.Amount.String(),
		string(txn.Type),
		txn.Date,
		txn.AccountID,
		nullableInt(txn.CategoryID),
		nullableString(txn.ToAccountID),
		txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	return requireRow(result, common.ErrNotFound, txn.ID)
}

// DeleteTransaction removes a ledger transaction.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteTransaction(ctx, s.db, id)
}

func (t *sqliteTransaction) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteTransaction(ctx, t.tx, id)
}

func deleteTransaction(ctx context.Context, q querier, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireRow(result, common.ErrNotFound, id)
}

// ListTransactions returns ledger transactions matching the filter, newest
// first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listTransactions(ctx, s.db, filter)
}

func (t *sqliteTransaction) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listTransactions(ctx, t.tx, filter)
}

func listTransactions(ctx context.Context, q querier, filter service.TransactionFilter) ([]model.Transaction, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`)
	var args []any

	if filter.StartDate != nil {
		sb.WriteString(` AND date >= ?`)
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		sb.WriteString(` AND date < ?`)
		args = append(args, *filter.EndDate)
	}
	if filter.InvolvingAccount != "" {
		sb.WriteString(` AND (account_id = ? OR to_account_id = ?)`)
		args = append(args, filter.InvolvingAccount, filter.InvolvingAccount)
	}
	if filter.CategoryID != nil {
		sb.WriteString(` AND category_id = ?`)
		args = append(args, *filter.CategoryID)
	}
	if filter.Type != nil {
		sb.WriteString(` AND type = ?`)
		args = append(args, string(*filter.Type))
	}

	sb.WriteString(` ORDER BY date DESC, id`)
	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			sb.WriteString(` OFFSET ?`)
			args = append(args, filter.Offset)
		}
	}

	rows, err := q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

func scanTransaction(scan func(dest ...any) error) (*model.Transaction, error) {
	var txn model.Transaction
	var amount, txnType string
	var categoryID sql.NullInt64
	var toAccountID sql.NullString

	if err := scan(
		&txn.ID,
		&txn.Description,
		&amount,
		&txnType,
		&txn.Date,
		&txn.AccountID,
		&categoryID,
		&toAccountID,
		&txn.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if txn.Amount, err = scanDecimal(amount); err != nil {
		return nil, err
	}
	if txn.Type, err = model.ParseTransactionType(txnType); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		id := int(categoryID.Int64)
		txn.CategoryID = &id
	}
	if toAccountID.Valid {
		id := toAccountID.String
		txn.ToAccountID = &id
	}

	return &txn, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
