package claim

import "github.com/financestream/expenseflow/internal/domain/entity"

// ValidateSubmission checks the preconditions for submitting a report:
// at least one line item, and an approver selection covering every role
// the matrix requires for the report's total and currency. It is called
// before any mutating operation; matrix coverage is gating at
// submission time only and never re-validated afterwards.
func ValidateSubmission(report entity.ExpenseReport, tiers []entity.MatrixTier, directory []entity.User) error {
	if len(report.Items) == 0 {
		return ErrEmptyClaim
	}
	required := RequiredRoles(report.TotalClaimAmount, report.ClaimCurrency, tiers)
	if missing := MissingRoles(required, report.Approvers, directory); len(missing) > 0 {
		return &PolicyViolationError{Missing: missing}
	}
	return nil
}
