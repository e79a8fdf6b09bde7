package claim

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financestream/expenseflow/internal/domain/entity"
	"github.com/financestream/expenseflow/internal/domain/workflow"
)

var (
	managerSigner = Signer{ID: "u2", Name: "Sarah Chen", Role: entity.RoleManager}
	financeSigner = Signer{ID: "u3", Name: "Marcus Thorne", Role: entity.RoleFinance}
	adminSigner   = Signer{ID: "u4", Name: "System Admin", Role: entity.RoleAdmin}
)

func pendingReport(approvers ...string) entity.ExpenseReport {
	return entity.ExpenseReport{
		ID:               "REQ-0001",
		UserID:           "u1",
		UserName:         "Alex Rivera",
		Title:            "Conference travel",
		Items:            []entity.ClaimItem{{ID: "i1", ClaimAmount: decimal.NewFromInt(300)}},
		TotalClaimAmount: decimal.NewFromInt(300),
		ClaimCurrency:    "USD",
		Approvers:        approvers,
		ApprovedBy:       []string{},
		Status:           entity.StatusPending,
		CreatedAt:        time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		SignatureLog:     []entity.Signature{},
	}
}

func assertApprovedSubsetOfApprovers(t *testing.T, r entity.ExpenseReport) {
	t.Helper()
	for _, id := range r.ApprovedBy {
		assert.True(t, r.IsApprover(id), "approvedBy %s not in approvers", id)
	}
}

func TestApplyAction_ApproveProgress(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	report := pendingReport("u2", "u3")

	first, err := ApplyAction(report, workflow.ActionApprove, managerSigner, "", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, first.ApprovedBy)
	assert.Equal(t, entity.StatusPending, first.Status)
	require.Len(t, first.SignatureLog, 1)
	assert.Equal(t, "1 of 2", first.SignatureLog[0].Progress)
	assert.Equal(t, entity.SignatureApproved, first.SignatureLog[0].Action)
	assert.Equal(t, "Approved", first.SignatureLog[0].Remark)
	assert.Equal(t, "Sarah Chen", first.SignatureLog[0].SignerName)
	assertApprovedSubsetOfApprovers(t, first)

	second, err := ApplyAction(first, workflow.ActionApprove, financeSigner, "Looks good", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3"}, second.ApprovedBy)
	assert.Equal(t, entity.StatusApproved, second.Status)
	require.Len(t, second.SignatureLog, 2)
	assert.Equal(t, "2 of 2", second.SignatureLog[1].Progress)
	assert.Equal(t, "Looks good", second.SignatureLog[1].Remark)
	assertApprovedSubsetOfApprovers(t, second)
}

func TestApplyAction_ApproveIdempotent(t *testing.T) {
	now := time.Now()
	report := pendingReport("u2", "u3")

	first, err := ApplyAction(report, workflow.ActionApprove, managerSigner, "", now)
	require.NoError(t, err)

	again, err := ApplyAction(first, workflow.ActionApprove, managerSigner, "", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, again.ApprovedBy)
	assert.Equal(t, entity.StatusPending, again.Status)
	require.Len(t, again.SignatureLog, 2)
	assert.Equal(t, "1 of 2", again.SignatureLog[1].Progress)
}

func TestApplyAction_Reject(t *testing.T) {
	now := time.Now()
	report := pendingReport("u2", "u3")

	approved, err := ApplyAction(report, workflow.ActionApprove, managerSigner, "", now)
	require.NoError(t, err)

	rejected, err := ApplyAction(approved, workflow.ActionReject, financeSigner, "Missing receipts", now)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, rejected.Status)
	assert.Empty(t, rejected.ApprovedBy)
	assert.Equal(t, "Missing receipts", rejected.RejectionComment)
	// The log is retained, not cleared
	require.Len(t, rejected.SignatureLog, 2)
	assert.Equal(t, "Rejected", rejected.SignatureLog[1].Progress)
	assert.Equal(t, entity.SignatureRejected, rejected.SignatureLog[1].Action)
}

func TestApplyAction_RejectDefaultRemark(t *testing.T) {
	report := pendingReport("u2")
	rejected, err := ApplyAction(report, workflow.ActionReject, managerSigner, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Rejected", rejected.RejectionComment)
	assert.Equal(t, "Rejected", rejected.SignatureLog[0].Remark)
}

func TestApplyAction_AdminIsNoOp(t *testing.T) {
	report := pendingReport("u2", "u3")

	unchanged, err := ApplyAction(report, workflow.ActionApprove, adminSigner, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, report, unchanged)
	assert.Empty(t, unchanged.SignatureLog)

	unchanged, err = ApplyAction(report, workflow.ActionReject, adminSigner, "no", time.Now())
	require.NoError(t, err)
	assert.Equal(t, report, unchanged)
}

func TestApplyAction_OutOfListSigner(t *testing.T) {
	report := pendingReport("u2")

	_, err := ApplyAction(report, workflow.ActionApprove, financeSigner, "", time.Now())
	assert.ErrorIs(t, err, ErrNotDesignatedApprover)

	_, err = ApplyAction(report, workflow.ActionReject, financeSigner, "", time.Now())
	assert.ErrorIs(t, err, ErrNotDesignatedApprover)
}

func TestApplyAction_ZeroApproversCompletesOnFirstApprove(t *testing.T) {
	report := pendingReport()

	approved, err := ApplyAction(report, workflow.ActionApprove, managerSigner, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, approved.Status)
	require.Len(t, approved.SignatureLog, 1)
	assert.Equal(t, "1 of 0", approved.SignatureLog[0].Progress)
}

func TestApplyAction_TerminalStatusesRefuseActions(t *testing.T) {
	tests := []struct {
		name   string
		status entity.Status
		action workflow.Action
	}{
		{"approve after approved", entity.StatusApproved, workflow.ActionApprove},
		{"reject after approved", entity.StatusApproved, workflow.ActionReject},
		{"approve after rejected", entity.StatusRejected, workflow.ActionApprove},
		{"reject after rejected", entity.StatusRejected, workflow.ActionReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := pendingReport("u2")
			report.Status = tt.status
			_, err := ApplyAction(report, tt.action, managerSigner, "", time.Now())
			assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
		})
	}
}

func TestApplyAction_DoesNotMutateInput(t *testing.T) {
	report := pendingReport("u2", "u3")
	_, err := ApplyAction(report, workflow.ActionApprove, managerSigner, "", time.Now())
	require.NoError(t, err)
	assert.Empty(t, report.ApprovedBy)
	assert.Empty(t, report.SignatureLog)
	assert.Equal(t, entity.StatusPending, report.Status)
}
