package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/calyptra/centsible/internal/common"
	"github.com/calyptra/centsible/internal/model"
)

// CreateAccount inserts a new account. An ID is generated when absent.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	if account.ID == "" {
		account.ID = model.NewID()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, type, balance, credit_limit, icon)
		VALUES (?, ?, ?, ?, ?, ?)`,
		account.ID,
		account.Name,
		account.Type,
		account.Balance.String(),
		nullableDecimal(account.CreditLimit),
		account.Icon,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	slog.Debug("created account", "id", account.ID, "name", account.Name)
	return nil
}

// GetAccount returns a single account by ID.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getAccount(ctx, s.db, id)
}

func (t *sqliteTransaction) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getAccount(ctx, t.tx, id)
}

func getAccount(ctx context.Context, q querier, id string) (*model.Account, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, type, balance, credit_limit, icon, created_at
		FROM accounts
		WHERE id = ?`, id)

	account, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %s", common.ErrAccountNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// ListAccounts returns all accounts ordered by name.
func (s *SQLiteStorage) ListAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, balance, credit_limit, icon, created_at
		FROM accounts
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		account, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// UpdateAccount updates an account's descriptive fields. The balance is
// owned by the ledger rules and is changed only through SetAccountBalance
// and AdjustAccountBalance.
func (s *SQLiteStorage) UpdateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}
	if err := validateString(account.ID, "account.ID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, type = ?, credit_limit = ?, icon = ?
		WHERE id = ?`,
		account.Name,
		account.Type,
		nullableDecimal(account.CreditLimit),
		account.Icon,
		account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	return requireRow(result, common.ErrAccountNotFound, account.ID)
}

// DeleteAccount removes an account.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	return requireRow(result, common.ErrAccountNotFound, id)
}

// SetAccountBalance overwrites an account's stored balance. Used by the
// full-recomputation repair path.
func (s *SQLiteStorage) SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return setAccountBalance(ctx, s.db, id, balance)
}

func (t *sqliteTransaction) SetAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return setAccountBalance(ctx, t.tx, id, balance)
}

func setAccountBalance(ctx context.Context, q querier, id string, balance decimal.Decimal) error {
	result, err := q.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`,
		balance.String(), id)
	if err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}
	return requireRow(result, common.ErrAccountNotFound, id)
}

// AdjustAccountBalance applies a signed delta to an account's stored balance.
// Balances are stored as decimal text, so the adjustment is a read-modify-
// write; callers that need atomicity with other mutations run it inside a
// database transaction.
func (s *SQLiteStorage) AdjustAccountBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return adjustAccountBalance(ctx, s.db, id, delta)
}

func (t *sqliteTransaction) AdjustAccountBalance(ctx context.Context, id string, delta decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return adjustAccountBalance(ctx, t.tx, id, delta)
}

func adjustAccountBalance(ctx context.Context, q querier, id string, delta decimal.Decimal) error {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: account %s", common.ErrAccountNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to read balance: %w", err)
	}

	balance, err := scanDecimal(raw)
	if err != nil {
		return err
	}

	if _, err := q.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`,
		balance.Add(delta).String(), id); err != nil {
		return fmt.Errorf("failed to write balance: %w", err)
	}

	return nil
}

// scanAccount reads one account row through the given scan function.
func scanAccount(scan func(dest ...any) error) (*model.Account, error) {
	var account model.Account
	var balance string
	var creditLimit sql.NullString

	if err := scan(
		&account.ID,
		&account.Name,
		&account.Type,
		&balance,
		&creditLimit,
		&account.Icon,
		&account.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if account.Balance, err = scanDecimal(balance); err != nil {
		return nil, err
	}
	if creditLimit.Valid {
		limit, err := scanDecimal(creditLimit.String)
		if err != nil {
			return nil, err
		}
		account.CreditLimit = &limit
	}

	return &account, nil
}

// requireRow converts a zero-row update into a not-found error.
func requireRow(result sql.Result, notFound error, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}
