package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkovalch/hroshi/internal/common"
	"github.com/mkovalch/hroshi/internal/model"
)

const categoryColumns = "id, name, type, created_at"

func scanCategory(row interface{ Scan(...any) error }) (*model.Category, error) {
	var cat model.Category
	if err := row.Scan(&cat.ID, &cat.Name, &cat.Type, &cat.CreatedAt); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *SQLiteStorage) getCategories(ctx context.Context, q dbtx) ([]model.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		ORDER BY name`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (s *SQLiteStorage) getCategoriesByType(ctx context.Context, q dbtx, categoryType model.CategoryType) ([]model.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE type = ?
		ORDER BY name`

	rows, err := q.QueryContext(ctx, query, categoryType)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories by type: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (s *SQLiteStorage) getCategoryByID(ctx context.Context, q dbtx, id int64) (*model.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = ?`

	cat, err := scanCategory(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return cat, nil
}

func (s *SQLiteStorage) getCategoryByNameAndType(ctx context.Context, q dbtx, name string, categoryType model.CategoryType) (*model.Category, error) {
	// COLLATE NOCASE on the name column keeps the comparison
	// case-insensitive without an explicit LOWER().
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE name = ? AND type = ?
		LIMIT 1`

	cat, err := scanCategory(q.QueryRowContext(ctx, query, name, categoryType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return cat, nil
}

func (s *SQLiteStorage) createCategory(ctx context.Context, q dbtx, name string, categoryType model.CategoryType) (*model.Category, error) {
	existing, err := s.getCategoryByNameAndType(ctx, q, name, categoryType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: category %q (%s)", common.ErrDuplicateEntry, name, categoryType)
	}

	now := time.Now()
	result, err := q.ExecContext(ctx,
		`INSERT INTO categories (name, type, created_at) VALUES (?, ?, ?)`,
		name, categoryType, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category ID: %w", err)
	}

	slog.Info("created category", "name", name, "type", categoryType, "id", id)
	return &model.Category{
		ID:        id,
		Name:      name,
		Type:      categoryType,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStorage) renameCategory(ctx context.Context, q dbtx, id int64, name string) error {
	result, err := q.ExecContext(ctx, `UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rename result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStorage) deleteCategory(ctx context.Context, q dbtx, id int64) error {
	// Cascade removes any transactions still referencing the row; callers
	// that need usage-guarded deletion check the count first.
	result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStorage) countTransactionsByCategory(ctx context.Context, q dbtx, categoryID int64) (int, error) {
	var count int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ?`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions for category: %w", err)
	}
	return count, nil
}

// GetCategories returns all categories ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategories(ctx, s.db)
}

// GetCategoriesByType returns all categories with the given type tag.
func (s *SQLiteStorage) GetCategoriesByType(ctx context.Context, categoryType model.CategoryType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoriesByType(ctx, s.db, categoryType)
}

// GetCategoryByID returns the category with the given id, or nil if absent.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return s.getCategoryByID(ctx, s.db, id)
}

// GetCategoryByNameAndType returns the category matching (name, type)
// case-insensitively, or nil if absent.
func (s *SQLiteStorage) GetCategoryByNameAndType(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getCategoryByNameAndType(ctx, s.db, name, categoryType)
}

// CreateCategory inserts a new category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if !categoryType.Valid() {
		return nil, fmt.Errorf("%w: category type %q", ErrInvalidType, categoryType)
	}
	cat, err := s.createCategory(ctx, s.db, name, categoryType)
	if err != nil {
		return nil, err
	}
	s.notify(TableCategories)
	return cat, nil
}

// RenameCategory updates a category's display name.
func (s *SQLiteStorage) RenameCategory(ctx context.Context, id int64, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}
	if err := s.renameCategory(ctx, s.db, id, name); err != nil {
		return err
	}
	s.notify(TableCategories)
	return nil
}

// DeleteCategory removes a category; referencing transactions cascade.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := s.deleteCategory(ctx, s.db, id); err != nil {
		return err
	}
	s.notify(TableCategories, TableTransactions)
	return nil
}

// CountTransactionsByCategory returns the number of transactions
// referencing a category.
func (s *SQLiteStorage) CountTransactionsByCategory(ctx context.Context, categoryID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return 0, err
	}
	return s.countTransactionsByCategory(ctx, s.db, categoryID)
}

// Transaction-scoped implementations.

func (t *sqliteTransaction) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategories(ctx, t.tx)
}

func (t *sqliteTransaction) GetCategoriesByType(ctx context.Context, categoryType model.CategoryType) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategoriesByType(ctx, t.tx, categoryType)
}

func (t *sqliteTransaction) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getCategoryByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetCategoryByNameAndType(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return t.storage.getCategoryByNameAndType(ctx, t.tx, name, categoryType)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if !categoryType.Valid() {
		return nil, fmt.Errorf("%w: category type %q", ErrInvalidType, categoryType)
	}
	cat, err := t.storage.createCategory(ctx, t.tx, name, categoryType)
	if err != nil {
		return nil, err
	}
	t.mark(TableCategories)
	return cat, nil
}

func (t *sqliteTransaction) RenameCategory(ctx context.Context, id int64, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}
	if err := t.storage.renameCategory(ctx, t.tx, id, name); err != nil {
		return err
	}
	t.mark(TableCategories)
	return nil
}

func (t *sqliteTransaction) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if err := t.storage.deleteCategory(ctx, t.tx, id); err != nil {
		return err
	}
	t.mark(TableCategories, TableTransactions)
	return nil
}

func (t *sqliteTransaction) CountTransactionsByCategory(ctx context.Context, categoryID int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(categoryID, "categoryID"); err != nil {
		return 0, err
	}
	return t.storage.countTransactionsByCategory(ctx, t.tx, categoryID)
}
