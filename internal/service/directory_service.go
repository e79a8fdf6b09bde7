package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/financestream/expenseflow/internal/domain/entity"
)

// ErrCategoryNotFound is returned when a category id is unknown
var ErrCategoryNotFound = errors.New("category not found")

// UserAdminStore extends directory lookups with write access
type UserAdminStore interface {
	UserStore
	Upsert(user *entity.User) error
	Delete(id string) error
}

// CategoryStore persists expense categories
type CategoryStore interface {
	List() ([]entity.ExpenseCategory, error)
	Upsert(category *entity.ExpenseCategory) error
	Delete(id string) error
}

// DirectoryService administers users and expense categories — the
// settings surface of the application
type DirectoryService struct {
	users      UserAdminStore
	categories CategoryStore
	logger     *zap.Logger
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(users UserAdminStore, categories CategoryStore, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{users: users, categories: categories, logger: logger}
}

// ListUsers retrieves the full user directory
func (s *DirectoryService) ListUsers() ([]entity.User, error) {
	return s.users.List()
}

// GetUser retrieves a user by id
func (s *DirectoryService) GetUser(id string) (entity.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return entity.User{}, err
	}
	if user == nil {
		return entity.User{}, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return *user, nil
}

// SaveUser creates or updates a directory entry. New users get a
// generated id.
func (s *DirectoryService) SaveUser(user entity.User) (entity.User, error) {
	if !user.Role.IsValid() {
		return entity.User{}, fmt.Errorf("invalid role: %s", user.Role)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if err := s.users.Upsert(&user); err != nil {
		return entity.User{}, err
	}
	s.logger.Info("User saved", zap.String("id", user.ID), zap.String("role", user.Role.String()))
	return user, nil
}

// DeleteUser removes a user from the directory. Reports keep the
// signer names captured at signing time, so history survives the
// deletion.
func (s *DirectoryService) DeleteUser(id string) error {
	if err := s.users.Delete(id); err != nil {
		return fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	s.logger.Info("User deleted", zap.String("id", id))
	return nil
}

// ListCategories retrieves every expense category
func (s *DirectoryService) ListCategories() ([]entity.ExpenseCategory, error) {
	return s.categories.List()
}

// SaveCategory creates or updates a category. New categories get a
// generated id.
func (s *DirectoryService) SaveCategory(category entity.ExpenseCategory) (entity.ExpenseCategory, error) {
	if category.Name == "" {
		return entity.ExpenseCategory{}, errors.New("category name is required")
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if err := s.categories.Upsert(&category); err != nil {
		return entity.ExpenseCategory{}, err
	}
	s.logger.Info("Category saved", zap.String("id", category.ID), zap.String("gl_code", category.GLCode))
	return category, nil
}

// DeleteCategory removes a category. Existing report lines that
// reference it will export with an ERROR GL segment.
func (s *DirectoryService) DeleteCategory(id string) error {
	if err := s.categories.Delete(id); err != nil {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}
	s.logger.Info("Category deleted", zap.String("id", id))
	return nil
}
