package service

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/financestream/expenseflow/internal/domain/claim"
	"github.com/financestream/expenseflow/internal/domain/entity"
)

// MatrixAdminStore extends matrix reads with ordered replacement
type MatrixAdminStore interface {
	MatrixStore
	ReplaceAll(tx *sql.Tx, tiers []entity.MatrixTier) error
}

// MatrixService administers the approver matrix and offers the
// advisory evaluation the claim form runs before submission. Editing
// the matrix never touches reports already pending — coverage is gating
// at submission time only.
type MatrixService struct {
	tx     TxRunner
	matrix MatrixAdminStore
	users  UserStore
	logger *zap.Logger
}

// NewMatrixService creates a new matrix service
func NewMatrixService(tx TxRunner, matrix MatrixAdminStore, users UserStore, logger *zap.Logger) *MatrixService {
	return &MatrixService{tx: tx, matrix: matrix, users: users, logger: logger}
}

// List retrieves the tiers in evaluation order
func (s *MatrixService) List() ([]entity.MatrixTier, error) {
	return s.matrix.List()
}

// Replace swaps the whole matrix for the given tier list. List order
// becomes evaluation order. New tiers get generated ids.
func (s *MatrixService) Replace(tiers []entity.MatrixTier) ([]entity.MatrixTier, error) {
	for i := range tiers {
		if tiers[i].Currency == "" {
			return nil, fmt.Errorf("tier %d: currency is required", i)
		}
		if tiers[i].MinAmount.IsNegative() {
			return nil, fmt.Errorf("tier %d: min amount must not be negative", i)
		}
		if tiers[i].MaxAmount.Valid && tiers[i].MaxAmount.Decimal.LessThan(tiers[i].MinAmount) {
			return nil, fmt.Errorf("tier %d: max amount below min amount", i)
		}
		for _, role := range tiers[i].RequiredApproverRoles {
			if !role.IsValid() {
				return nil, fmt.Errorf("tier %d: invalid role %s", i, role)
			}
			if role == entity.RoleAdmin {
				return nil, errors.New("Admin cannot be a required approver role")
			}
		}
		if tiers[i].ID == "" {
			tiers[i].ID = uuid.NewString()
		}
	}

	err := s.tx.WithTransaction(func(tx *sql.Tx) error {
		return s.matrix.ReplaceAll(tx, tiers)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Approver matrix replaced", zap.Int("tiers", len(tiers)))
	return tiers, nil
}

// Evaluation is the advisory result the claim form renders while the
// user picks approvers
type Evaluation struct {
	RequiredRoles []entity.Role `json:"required_roles"`
	MissingRoles  []entity.Role `json:"missing_roles"`
	Satisfied     bool          `json:"satisfied"`
}

// Evaluate reports which roles the matrix requires for the amount and
// whether the selected approvers cover them
func (s *MatrixService) Evaluate(total decimal.Decimal, currency string, approverIDs []string) (Evaluation, error) {
	tiers, err := s.matrix.List()
	if err != nil {
		return Evaluation{}, err
	}
	directory, err := s.users.List()
	if err != nil {
		return Evaluation{}, err
	}

	required := claim.RequiredRoles(total, currency, tiers)
	missing := claim.MissingRoles(required, approverIDs, directory)
	return Evaluation{
		RequiredRoles: required,
		MissingRoles:  missing,
		Satisfied:     len(missing) == 0,
	}, nil
}
