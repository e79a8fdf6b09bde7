package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/financestream/expenseflow/internal/domain/entity"
)

// CategoryRepository handles expense category persistence
type CategoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sql.DB, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{db: db, logger: logger}
}

// List retrieves every category in insertion order
func (r *CategoryRepository) List() ([]entity.ExpenseCategory, error) {
	rows, err := r.db.Query("SELECT id, name, gl_code FROM expense_categories ORDER BY rowid")
	if err != nil {
		r.logger.Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]entity.ExpenseCategory, 0)
	for rows.Next() {
		var c entity.ExpenseCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.GLCode); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Upsert inserts or replaces a category by id
func (r *CategoryRepository) Upsert(category *entity.ExpenseCategory) error {
	_, err := r.db.Exec(`
		INSERT INTO expense_categories (id, name, gl_code)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			gl_code = excluded.gl_code`,
		category.ID, category.Name, category.GLCode)
	if err != nil {
		r.logger.Error("Failed to upsert category", zap.String("id", category.ID), zap.Error(err))
		return fmt.Errorf("upsert category: %w", err)
	}
	return nil
}

// Delete removes a category
func (r *CategoryRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM expense_categories WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete category", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
