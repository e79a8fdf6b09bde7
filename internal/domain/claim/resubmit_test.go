package claim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financestream/expenseflow/internal/domain/entity"
	"github.com/financestream/expenseflow/internal/domain/workflow"
)

func TestSave_BrandNewReport(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	incoming := pendingReport("u2")
	incoming.ID = ""

	result := Save(nil, incoming, NewSequence(1), now)

	assert.Equal(t, SaveCreated, result.Kind)
	assert.Equal(t, "REQ-0001", result.ID)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, "REQ-0001", result.Reports[0].ID)
	assert.Equal(t, entity.StatusPending, result.Reports[0].Status)
	assert.Equal(t, int64(2), result.Sequence.Counter())
}

func TestSave_NewReportsPrepended(t *testing.T) {
	now := time.Now()
	first := Save(nil, pendingReport("u2"), NewSequence(1), now)

	second := pendingReport("u3")
	second.ID = ""
	result := Save(first.Reports, second, first.Sequence, now)

	require.Len(t, result.Reports, 2)
	assert.Equal(t, "REQ-0002", result.Reports[0].ID)
	assert.Equal(t, "REQ-0001", result.Reports[1].ID)
}

func TestSave_InPlaceUpdateResetsProgress(t *testing.T) {
	now := time.Now()
	existing := pendingReport("u2", "u3")
	existing.ID = "REQ-0001"
	existing.ApprovedBy = []string{"u2"}

	edited := existing.Clone()
	edited.Title = "Conference travel (amended)"
	edited.ApprovedBy = []string{"u2"} // caller-supplied progress is discarded
	edited.RejectionComment = "stale"

	result := Save([]entity.ExpenseReport{existing}, edited, NewSequence(5), now)

	assert.Equal(t, SaveUpdated, result.Kind)
	assert.Equal(t, "REQ-0001", result.ID)
	require.Len(t, result.Reports, 1)
	assert.Equal(t, "Conference travel (amended)", result.Reports[0].Title)
	assert.Empty(t, result.Reports[0].ApprovedBy)
	assert.Empty(t, result.Reports[0].RejectionComment)
	assert.Equal(t, entity.StatusPending, result.Reports[0].Status)
	// No allocation on update
	assert.Equal(t, int64(5), result.Sequence.Counter())
}

func TestSave_EditedApprovedReportReturnsToPending(t *testing.T) {
	existing := pendingReport("u2")
	existing.Status = entity.StatusApproved
	existing.ApprovedBy = []string{"u2"}

	result := Save([]entity.ExpenseReport{existing}, existing.Clone(), NewSequence(2), time.Now())

	require.Len(t, result.Reports, 1)
	assert.Equal(t, entity.StatusPending, result.Reports[0].Status)
	assert.Empty(t, result.Reports[0].ApprovedBy)
}

func TestSave_ResubmissionAllocatesNewIdentity(t *testing.T) {
	now := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	rejected := pendingReport("u2")
	rejected.ID = "REQ-0001"
	rejected.Status = entity.StatusRejected
	rejected.RejectionComment = "Missing receipts"
	rejected.SignatureLog = []entity.Signature{
		{SignerID: "u2", Action: entity.SignatureRejected, Progress: "Rejected"},
	}

	resubmission := rejected.Clone()
	resubmission.Title = "Conference travel (fixed)"

	result := Save([]entity.ExpenseReport{rejected}, resubmission, NewSequence(2), now)

	assert.Equal(t, SaveResubmitted, result.Kind)
	assert.Equal(t, "REQ-0002", result.ID)
	require.Len(t, result.Reports, 2)

	fresh := result.Reports[0]
	assert.Equal(t, "REQ-0002", fresh.ID)
	assert.Equal(t, entity.StatusPending, fresh.Status)
	assert.Empty(t, fresh.ApprovedBy)
	assert.Empty(t, fresh.SignatureLog)
	assert.Empty(t, fresh.RejectionComment)
	assert.Equal(t, now, fresh.CreatedAt)

	// The rejected original is preserved untouched
	original := result.Reports[1]
	assert.Equal(t, "REQ-0001", original.ID)
	assert.Equal(t, entity.StatusRejected, original.Status)
	assert.Equal(t, "Missing receipts", original.RejectionComment)
	assert.Len(t, original.SignatureLog, 1)
}

func TestSave_ResubmissionNeverReusesID(t *testing.T) {
	now := time.Now()
	rejected := pendingReport("u2")
	rejected.ID = "REQ-0001"
	rejected.Status = entity.StatusRejected

	reports := []entity.ExpenseReport{rejected}
	seq := NewSequence(2)
	seen := map[string]bool{"REQ-0001": true}

	// Resubmit, reject, resubmit again: every identity is fresh
	for i := 0; i < 3; i++ {
		result := Save(reports, reports[len(reports)-1].Clone(), seq, now)
		assert.False(t, seen[result.ID], "id %s reused", result.ID)
		seen[result.ID] = true

		rejectedAgain, err := ApplyAction(result.Reports[0], workflow.ActionReject, managerSigner, "no", now)
		require.NoError(t, err)
		result.Reports[0] = rejectedAgain
		reports, seq = result.Reports, result.Sequence
	}
	assert.Len(t, reports, 4)
}

func TestSave_DoesNotMutateInputSlice(t *testing.T) {
	existing := pendingReport("u2")
	existing.ID = "REQ-0001"
	reports := []entity.ExpenseReport{existing}

	edited := existing.Clone()
	edited.Title = "changed"
	Save(reports, edited, NewSequence(2), time.Now())

	assert.Equal(t, "Conference travel", reports[0].Title)
}

func TestValidateSubmission(t *testing.T) {
	directory := []entity.User{
		{ID: "u2", Role: entity.RoleManager},
		{ID: "u3", Role: entity.RoleFinance},
	}
	matrix := []entity.MatrixTier{
		tier("m1", 0, 500, "USD", entity.RoleManager),
		tier("m2", 501, -1, "USD", entity.RoleManager, entity.RoleFinance),
	}

	t.Run("valid submission", func(t *testing.T) {
		report := pendingReport("u2")
		assert.NoError(t, ValidateSubmission(report, matrix, directory))
	})

	t.Run("empty claim rejected before matrix evaluation", func(t *testing.T) {
		report := pendingReport() // no approvers either, but EmptyClaim wins
		report.Items = nil
		assert.ErrorIs(t, ValidateSubmission(report, matrix, directory), ErrEmptyClaim)
	})

	t.Run("policy violation lists unmet roles", func(t *testing.T) {
		report := pendingReport("u2")
		report.TotalClaimAmount = report.TotalClaimAmount.Add(report.TotalClaimAmount) // 600, needs Finance too
		err := ValidateSubmission(report, matrix, directory)

		var pv *PolicyViolationError
		require.ErrorAs(t, err, &pv)
		assert.Equal(t, []entity.Role{entity.RoleFinance}, pv.Missing)
		assert.Contains(t, pv.Error(), "Finance")
	})
}

func TestActionableBy(t *testing.T) {
	manager := entity.User{ID: "u2", Role: entity.RoleManager}
	admin := entity.User{ID: "u4", Role: entity.RoleAdmin}

	awaiting := pendingReport("u2", "u3")
	awaiting.ID = "REQ-0001"

	signed := pendingReport("u2", "u3")
	signed.ID = "REQ-0002"
	signed.ApprovedBy = []string{"u2"}

	done := pendingReport("u2")
	done.ID = "REQ-0003"
	done.Status = entity.StatusApproved

	notMine := pendingReport("u3")
	notMine.ID = "REQ-0004"

	reports := []entity.ExpenseReport{awaiting, signed, done, notMine}

	actionable := ActionableBy(reports, manager)
	require.Len(t, actionable, 1)
	assert.Equal(t, "REQ-0001", actionable[0].ID)

	assert.Empty(t, ActionableBy(reports, admin))
}

func TestSignatureHistoryFor(t *testing.T) {
	r1 := pendingReport("u2")
	r1.ID = "REQ-0001"
	r1.SignatureLog = []entity.Signature{
		{SignerID: "u2", Progress: "1 of 1", Action: entity.SignatureApproved},
		{SignerID: "u3", Progress: "Rejected", Action: entity.SignatureRejected},
	}

	manager := entity.User{ID: "u2", Role: entity.RoleManager}
	history := SignatureHistoryFor([]entity.ExpenseReport{r1}, manager)
	require.Len(t, history, 1)
	assert.Equal(t, "u2", history[0].Signature.SignerID)
	assert.Equal(t, "REQ-0001", history[0].ReportID)

	admin := entity.User{ID: "u4", Role: entity.RoleAdmin}
	assert.Len(t, SignatureHistoryFor([]entity.ExpenseReport{r1}, admin), 2)
}
