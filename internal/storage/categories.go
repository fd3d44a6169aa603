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
)

const categoryColumns = `id, name, description, type, color, icon, is_active, created_at`

// GetCategories returns all active categories ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE is_active = 1
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByName returns an active category by name, or nil when absent.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE name = ? AND is_active = 1`, name)

	cat, err := scanCategory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// GetCategoryByID returns a category by ID, active or not. Historical
// transactions may reference deactivated categories.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = ?`, id)

	cat, err := scanCategory(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %d", common.ErrCategoryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// CreateCategory creates a new category, reactivating a previously deleted
// category of the same name when one exists.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name, description string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if _, err := model.ParseCategoryType(string(categoryType)); err != nil {
		return nil, err
	}

	// Look for an existing row, including deactivated ones.
	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE name = ?`, name)

	existing, err := scanCategory(row.Scan)
	switch {
	case err == nil && existing.IsActive:
		return nil, fmt.Errorf("%w: category %q", common.ErrDuplicateEntry, name)
	case err == nil:
		// Reactivate with the newly requested type and description.
		if _, err := s.db.ExecContext(ctx, `
			UPDATE categories SET is_active = 1, description = ?, type = ? WHERE id = ?`,
			description, string(categoryType), existing.ID); err != nil {
			return nil, fmt.Errorf("failed to reactivate category: %w", err)
		}
		existing.IsActive = true
		existing.Description = description
		existing.Type = categoryType
		slog.Debug("reactivated category", "id", existing.ID, "name", name)
		return existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to check existing category: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, description, type)
		VALUES (?, ?, ?)`,
		name, description, string(categoryType))
	if err != nil {
		return nil, fmt.Errorf("failed to insert category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	return s.GetCategoryByID(ctx, int(id))
}

// UpdateCategory changes a category's name and description.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id int, name, description string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, description = ? WHERE id = ? AND is_active = 1`,
		name, description, id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("%w: category %q", common.ErrDuplicateEntry, name)
		}
		return fmt.Errorf("failed to update category: %w", err)
	}

	return requireRow(result, common.ErrCategoryNotFound, fmt.Sprintf("%d", id))
}

// DeleteCategory deactivates a category. Rows are kept because historical
// transactions reference them.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET is_active = 0 WHERE id = ? AND is_active = 1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return requireRow(result, common.ErrCategoryNotFound, fmt.Sprintf("%d", id))
}

func scanCategory(scan func(dest ...any) error) (*model.Category, error) {
	var cat model.Category
	var catType string

	if err := scan(
		&cat.ID,
		&cat.Name,
		&cat.Description,
		&catType,
		&cat.Color,
		&cat.Icon,
		&cat.IsActive,
		&cat.CreatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if cat.Type, err = model.ParseCategoryType(catType); err != nil {
		return nil, err
	}
	return &cat, nil
}
