package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/calyptra/centsible/internal/model"
)

// GetOrCreateBudget returns the budget row for a month, creating it on first
// use. The schema enforces one budget per (month, year).
func (s *SQLiteStorage) GetOrCreateBudget(ctx context.Context, month, year int) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %d out of range", ErrInvalidBudget, month)
	}
	if year < 1 {
		return nil, fmt.Errorf("%w: year %d out of range", ErrInvalidBudget, year)
	}

	budget := &model.Budget{Month: month, Year: year}
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM budgets WHERE month = ? AND year = ?`, month, year).Scan(&budget.ID)
	if err == nil {
		return budget, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (month, year) VALUES (?, ?)`, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to insert budget: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get budget ID: %w", err)
	}
	budget.ID = int(id)

	return budget, nil
}

// SetBudgetCategory sets one category's planned amount within a budget,
// overwriting any previous plan for the same (budget, category) pair.
func (s *SQLiteStorage) SetBudgetCategory(ctx context.Context, entry *model.BudgetCategory) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBudgetCategory(entry); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budget_categories (budget_id, category_id, planned, reminder_enabled)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(budget_id, category_id)
		DO UPDATE SET planned = excluded.planned, reminder_enabled = excluded.reminder_enabled`,
		entry.BudgetID,
		entry.CategoryID,
		entry.Planned.String(),
		entry.ReminderEnabled,
	)
	if err != nil {
		return fmt.Errorf("failed to set budget category: %w", err)
	}

	return nil
}

// GetBudgetEntries returns a month's planned amounts joined with their
// categories. An absent budget yields an empty slice, not an error.
func (s *SQLiteStorage) GetBudgetEntries(ctx context.Context, month, year int) ([]model.BudgetEntry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.description, c.type, c.color, c.icon, c.is_active, c.created_at,
		       bc.planned
		FROM budgets b
		JOIN budget_categories bc ON bc.budget_id = b.id
		JOIN categories c ON c.id = bc.category_id
		WHERE b.month = ? AND b.year = ?
		ORDER BY c.name`, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.BudgetEntry
	for rows.Next() {
		var entry model.BudgetEntry
		var catType, planned string

		if err := rows.Scan(
			&entry.Category.ID,
			&entry.Category.Name,
			&entry.Category.Description,
			&catType,
			&entry.Category.Color,
			&entry.Category.Icon,
			&entry.Category.IsActive,
			&entry.Category.CreatedAt,
			&planned,
		); err != nil {
			return nil, fmt.Errorf("failed to scan budget entry: %w", err)
		}

		if entry.Category.Type, err = model.ParseCategoryType(catType); err != nil {
			return nil, err
		}
		if entry.Planned, err = scanDecimal(planned); err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget entries: %w", err)
	}

	return entries, nil
}
