package claim

import "github.com/financestream/expenseflow/internal/domain/entity"

// ActionableBy returns the reports awaiting the user's sign-off: the
// user is a designated approver, the report is pending, and the user
// has not already signed. Admins never sign, so nothing is actionable
// for them.
func ActionableBy(reports []entity.ExpenseReport, user entity.User) []entity.ExpenseReport {
	actionable := make([]entity.ExpenseReport, 0)
	if user.Role == entity.RoleAdmin {
		return actionable
	}
	for _, r := range reports {
		if r.Status == entity.StatusPending && r.IsApprover(user.ID) && !r.HasApproved(user.ID) {
			actionable = append(actionable, r)
		}
	}
	return actionable
}

// SignatureRecord is one signature log entry paired with its report
type SignatureRecord struct {
	ReportID    string           `json:"report_id"`
	ReportTitle string           `json:"report_title"`
	Signature   entity.Signature `json:"signature"`
}

// SignatureHistoryFor flattens the signature logs into the entries the
// user may see: their own signatures, or every signature for Admins.
func SignatureHistoryFor(reports []entity.ExpenseReport, user entity.User) []SignatureRecord {
	history := make([]SignatureRecord, 0)
	for _, r := range reports {
		for _, sig := range r.SignatureLog {
			if user.Role == entity.RoleAdmin || sig.SignerID == user.ID {
				history = append(history, SignatureRecord{
					ReportID:    r.ID,
					ReportTitle: r.Title,
					Signature:   sig,
				})
			}
		}
	}
	return history
}
