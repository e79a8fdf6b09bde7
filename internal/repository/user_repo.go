package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/financestream/expenseflow/internal/domain/entity"
)

// UserRepository handles user directory persistence
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// List retrieves every directory user in insertion order
func (r *UserRepository) List() ([]entity.User, error) {
	rows, err := r.db.Query(`
		SELECT id, name, email, role, accessible_modules, is_active
		FROM users ORDER BY rowid`)
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// GetByID retrieves a user by id; returns (nil, nil) when absent
func (r *UserRepository) GetByID(id string) (*entity.User, error) {
	row := r.db.QueryRow(`
		SELECT id, name, email, role, accessible_modules, is_active
		FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Upsert inserts or replaces a user by id
func (r *UserRepository) Upsert(user *entity.User) error {
	modules, err := json.Marshal(user.AccessibleModules)
	if err != nil {
		return fmt.Errorf("marshal accessible_modules: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO users (id, name, email, role, accessible_modules, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			accessible_modules = excluded.accessible_modules,
			is_active = excluded.is_active`,
		user.ID, user.Name, user.Email, user.Role.String(), string(modules), user.IsActive)
	if err != nil {
		r.logger.Error("Failed to upsert user", zap.String("id", user.ID), zap.Error(err))
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// Delete removes a user from the directory
func (r *UserRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete user", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("delete user: %w", err)
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

func scanUser(row rowScanner) (*entity.User, error) {
	var (
		user    entity.User
		role    string
		modules string
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &role, &modules, &user.IsActive); err != nil {
		return nil, err
	}
	user.Role = entity.Role(role)
	if !user.Role.IsValid() {
		return nil, fmt.Errorf("unknown user role %q", role)
	}
	if err := json.Unmarshal([]byte(modules), &user.AccessibleModules); err != nil {
		return nil, fmt.Errorf("unmarshal accessible_modules: %w", err)
	}
	return &user, nil
}
