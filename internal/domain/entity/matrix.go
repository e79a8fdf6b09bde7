package entity

import "github.com/shopspring/decimal"

// MatrixTier is one rule of the approver matrix: reports in the given
// currency and amount range require sign-off from the listed roles.
// Tier order is significant; the evaluator takes the first match.
type MatrixTier struct {
	ID        string          `json:"id"`
	MinAmount decimal.Decimal `json:"min_amount"`
	// MaxAmount is inclusive; an invalid NullDecimal means the tier is
	// unbounded above.
	MaxAmount             decimal.NullDecimal `json:"max_amount"`
	Currency              string              `json:"currency"`
	RequiredApproverRoles []Role              `json:"required_approver_roles"`
}

// Contains reports whether the amount falls inside the tier's range,
// both bounds inclusive.
func (t MatrixTier) Contains(amount decimal.Decimal) bool {
	if amount.LessThan(t.MinAmount) {
		return false
	}
	if t.MaxAmount.Valid && amount.GreaterThan(t.MaxAmount.Decimal) {
		return false
	}
	return true
}
