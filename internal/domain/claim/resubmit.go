package claim

import (
	"time"

	"github.com/financestream/expenseflow/internal/domain/entity"
)

// SaveKind classifies what a Save call did with the incoming report
type SaveKind string

const (
	SaveCreated     SaveKind = "CREATED"
	SaveUpdated     SaveKind = "UPDATED"
	SaveResubmitted SaveKind = "RESUBMITTED"
)

// SaveResult is the new state snapshot produced by Save
type SaveResult struct {
	Reports  []entity.ExpenseReport
	Sequence Sequence
	ID       string
	Kind     SaveKind
}

// Save applies the resubmission policy to an incoming report against
// the current collection. Evaluated in order:
//
//  1. The incoming id matches a REJECTED report: resubmission. A fresh
//     id is allocated, approval state and signature log start empty,
//     the creation timestamp is stamped anew, and the report is
//     prepended. The rejected original stays in the collection
//     unchanged — rejection history is never rewritten.
//  2. The incoming id matches any other report: in-place update. The
//     entry is replaced with the incoming data, but approval progress
//     restarts: approved-by is cleared, the rejection comment dropped,
//     and status returns to PENDING regardless of what the caller sent.
//  3. No id match: brand-new report, fresh id, prepended, PENDING.
//
// The input slice is not mutated.
func Save(reports []entity.ExpenseReport, incoming entity.ExpenseReport, seq Sequence, now time.Time) SaveResult {
	existingIdx := -1
	if incoming.ID != "" {
		for i := range reports {
			if reports[i].ID == incoming.ID {
				existingIdx = i
				break
			}
		}
	}

	if existingIdx >= 0 && reports[existingIdx].Status == entity.StatusRejected {
		id, next := seq.Next()
		resubmitted := incoming.Clone()
		resubmitted.ID = id
		resubmitted.Status = entity.StatusPending
		resubmitted.ApprovedBy = []string{}
		resubmitted.SignatureLog = []entity.Signature{}
		resubmitted.RejectionComment = ""
		resubmitted.CreatedAt = now

		updated := make([]entity.ExpenseReport, 0, len(reports)+1)
		updated = append(updated, resubmitted)
		updated = append(updated, reports...)
		return SaveResult{Reports: updated, Sequence: next, ID: id, Kind: SaveResubmitted}
	}

	if existingIdx >= 0 {
		replacement := incoming.Clone()
		replacement.ApprovedBy = []string{}
		replacement.RejectionComment = ""
		replacement.Status = entity.StatusPending

		updated := append([]entity.ExpenseReport(nil), reports...)
		updated[existingIdx] = replacement
		return SaveResult{Reports: updated, Sequence: seq, ID: replacement.ID, Kind: SaveUpdated}
	}

	id, next := seq.Next()
	created := incoming.Clone()
	created.ID = id
	created.Status = entity.StatusPending
	if created.ApprovedBy == nil {
		created.ApprovedBy = []string{}
	}
	if created.SignatureLog == nil {
		created.SignatureLog = []entity.Signature{}
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}

	updated := make([]entity.ExpenseReport, 0, len(reports)+1)
	updated = append(updated, created)
	updated = append(updated, reports...)
	return SaveResult{Reports: updated, Sequence: next, ID: id, Kind: SaveCreated}
}
