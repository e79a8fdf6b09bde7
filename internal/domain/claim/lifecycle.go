package claim

import (
	"fmt"
	"time"

	"github.com/financestream/expenseflow/internal/domain/entity"
	"github.com/financestream/expenseflow/internal/domain/workflow"
)

// Signer identifies the acting user for an approval action. The role is
// passed explicitly so the core needs no directory lookup, and the name
// is captured into the signature at signing time.
type Signer struct {
	ID   string
	Name string
	Role entity.Role
}

const (
	defaultApproveRemark = "Approved"
	defaultRejectRemark  = "Rejected"
	rejectedProgress     = "Rejected"
)

// ApplyAction applies an APPROVE or REJECT by the signer to the report
// and returns the updated report. The input report is not mutated.
//
// Admins are categorically barred from signing: the report comes back
// unchanged with no error and no signature appended. A signer outside
// the report's approver list is refused with ErrNotDesignatedApprover,
// unless the report has no designated approvers at all — a report with
// an empty approver list is completed by the first APPROVE from any
// non-Admin user.
//
// Approving twice is idempotent on the approved-by set: the signature
// log records the repeat but progress does not advance.
func ApplyAction(report entity.ExpenseReport, action workflow.Action, signer Signer, remark string, now time.Time) (entity.ExpenseReport, error) {
	if signer.Role == entity.RoleAdmin {
		return report, nil
	}
	if len(report.Approvers) > 0 && !report.IsApprover(signer.ID) {
		return report, fmt.Errorf("%w: %s on %s", ErrNotDesignatedApprover, signer.ID, report.ID)
	}

	updated := report.Clone()

	switch action {
	case workflow.ActionApprove:
		if !updated.HasApproved(signer.ID) {
			updated.ApprovedBy = append(updated.ApprovedBy, signer.ID)
		}
		currentStep := len(updated.ApprovedBy)
		totalSteps := len(updated.Approvers)

		machine, err := workflow.NewApprovalMachine(updated.Status, func() bool {
			return currentStep >= totalSteps
		})
		if err != nil {
			return report, err
		}
		if err := machine.Fire(workflow.ActionApprove); err != nil {
			return report, err
		}

		if remark == "" {
			remark = defaultApproveRemark
		}
		updated.Status = machine.Status()
		updated.RejectionComment = ""
		updated.SignatureLog = append(updated.SignatureLog, entity.Signature{
			SignerID:   signer.ID,
			SignerName: signer.Name,
			Timestamp:  now,
			Action:     entity.SignatureApproved,
			Remark:     remark,
			Progress:   fmt.Sprintf("%d of %d", currentStep, totalSteps),
		})
		return updated, nil

	case workflow.ActionReject:
		machine, err := workflow.NewApprovalMachine(updated.Status, nil)
		if err != nil {
			return report, err
		}
		if err := machine.Fire(workflow.ActionReject); err != nil {
			return report, err
		}

		if remark == "" {
			remark = defaultRejectRemark
		}
		updated.Status = machine.Status()
		updated.RejectionComment = remark
		updated.ApprovedBy = []string{}
		updated.SignatureLog = append(updated.SignatureLog, entity.Signature{
			SignerID:   signer.ID,
			SignerName: signer.Name,
			Timestamp:  now,
			Action:     entity.SignatureRejected,
			Remark:     remark,
			Progress:   rejectedProgress,
		})
		return updated, nil

	default:
		return report, fmt.Errorf("%w: %s", workflow.ErrInvalidTransition, action)
	}
}
