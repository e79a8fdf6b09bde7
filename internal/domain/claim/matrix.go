// Package claim holds the approval-workflow core: matrix evaluation,
// the report lifecycle transitions, the resubmission policy, and the
// report-id sequence. Every function is pure — it takes a state
// snapshot and returns a new one; persistence is the caller's concern.
package claim

import (
	"github.com/shopspring/decimal"

	"github.com/financestream/expenseflow/internal/domain/entity"
)

// RequiredRoles determines which roles must sign off a report of the
// given total amount and currency. Selection is first-match in tier
// order: currency plus amount range first, then amount range alone,
// then the first tier outright. An empty matrix imposes no requirement.
func RequiredRoles(total decimal.Decimal, currency string, tiers []entity.MatrixTier) []entity.Role {
	if len(tiers) == 0 {
		return nil
	}
	for _, t := range tiers {
		if t.Currency == currency && t.Contains(total) {
			return t.RequiredApproverRoles
		}
	}
	for _, t := range tiers {
		if t.Contains(total) {
			return t.RequiredApproverRoles
		}
	}
	return tiers[0].RequiredApproverRoles
}

// MissingRoles returns the required roles not covered by the selected
// approvers, in required-list order. This is a coverage check, not a
// cardinality check: one approver holding a role covers it no matter
// how many were selected.
func MissingRoles(required []entity.Role, approverIDs []string, directory []entity.User) []entity.Role {
	selected := make(map[string]bool, len(approverIDs))
	for _, id := range approverIDs {
		selected[id] = true
	}

	covered := make(map[entity.Role]bool)
	for _, u := range directory {
		if selected[u.ID] {
			covered[u.Role] = true
		}
	}

	var missing []entity.Role
	seen := make(map[entity.Role]bool)
	for _, role := range required {
		if !covered[role] && !seen[role] {
			missing = append(missing, role)
			seen[role] = true
		}
	}
	return missing
}

// SatisfiesMatrix reports whether the selected approvers cover every
// required role. An empty requirement is always satisfied.
func SatisfiesMatrix(required []entity.Role, approverIDs []string, directory []entity.User) bool {
	return len(MissingRoles(required, approverIDs, directory)) == 0
}
