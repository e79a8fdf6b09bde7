package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/financestream/expenseflow/internal/domain/entity"
)

// MatrixRepository persists the approver matrix. Tier order is
// significant to the evaluator, so tiers carry an explicit position and
// the whole list is replaced atomically on edit.
type MatrixRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMatrixRepository creates a new matrix repository
func NewMatrixRepository(db *sql.DB, logger *zap.Logger) *MatrixRepository {
	return &MatrixRepository{db: db, logger: logger}
}

// List retrieves the tiers in evaluation order
func (r *MatrixRepository) List() ([]entity.MatrixTier, error) {
	rows, err := r.db.Query(`
		SELECT id, min_amount, max_amount, currency, required_roles
		FROM approver_matrix ORDER BY position`)
	if err != nil {
		r.logger.Error("Failed to list matrix tiers", zap.Error(err))
		return nil, fmt.Errorf("list matrix tiers: %w", err)
	}
	defer rows.Close()

	tiers := make([]entity.MatrixTier, 0)
	for rows.Next() {
		var (
			tier      entity.MatrixTier
			minAmount string
			maxAmount sql.NullString
			roles     string
		)
		if err := rows.Scan(&tier.ID, &minAmount, &maxAmount, &tier.Currency, &roles); err != nil {
			return nil, err
		}

		tier.MinAmount, err = decimal.NewFromString(minAmount)
		if err != nil {
			return nil, fmt.Errorf("parse min_amount: %w", err)
		}
		if maxAmount.Valid {
			max, err := decimal.NewFromString(maxAmount.String)
			if err != nil {
				return nil, fmt.Errorf("parse max_amount: %w", err)
			}
			tier.MaxAmount = decimal.NullDecimal{Decimal: max, Valid: true}
		}
		if err := json.Unmarshal([]byte(roles), &tier.RequiredApproverRoles); err != nil {
			return nil, fmt.Errorf("unmarshal required_roles: %w", err)
		}
		tiers = append(tiers, tier)
	}
	return tiers, rows.Err()
}

// ReplaceAll swaps the stored matrix for the given tier list, keeping
// list order as evaluation order
func (r *MatrixRepository) ReplaceAll(tx *sql.Tx, tiers []entity.MatrixTier) error {
	if _, err := tx.Exec("DELETE FROM approver_matrix"); err != nil {
		return fmt.Errorf("clear approver_matrix: %w", err)
	}

	for position, tier := range tiers {
		roles, err := json.Marshal(tier.RequiredApproverRoles)
		if err != nil {
			return fmt.Errorf("marshal required_roles: %w", err)
		}

		var maxAmount interface{}
		if tier.MaxAmount.Valid {
			maxAmount = tier.MaxAmount.Decimal.String()
		}

		_, err = tx.Exec(`
			INSERT INTO approver_matrix (id, position, min_amount, max_amount, currency, required_roles)
			VALUES (?, ?, ?, ?, ?, ?)`,
			tier.ID, position, tier.MinAmount.String(), maxAmount, tier.Currency, string(roles))
		if err != nil {
			r.logger.Error("Failed to insert matrix tier", zap.String("id", tier.ID), zap.Error(err))
			return fmt.Errorf("insert matrix tier: %w", err)
		}
	}
	return nil
}
