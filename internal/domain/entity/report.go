package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseReport is the aggregate root of the claim workflow. The ID is
// assigned by the sequence allocator on first submission and is
// immutable afterwards; a resubmitted rejected report receives a new ID
// and the rejected original stays in the collection untouched.
type ExpenseReport struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	UserName         string          `json:"user_name"`
	Title            string          `json:"title"`
	Items            []ClaimItem     `json:"items"`
	TotalClaimAmount decimal.Decimal `json:"total_claim_amount"`
	ClaimCurrency    string          `json:"claim_currency"`
	Attachments      []Attachment    `json:"attachments,omitempty"`
	Approvers        []string        `json:"approvers"`
	ApprovedBy       []string        `json:"approved_by"`
	Status           Status          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	RejectionComment string          `json:"rejection_comment,omitempty"`
	SignatureLog     []Signature     `json:"signature_log"`
}

// HasApproved returns true if the user has already signed off
func (r *ExpenseReport) HasApproved(userID string) bool {
	for _, id := range r.ApprovedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// IsApprover returns true if the user is a designated approver
func (r *ExpenseReport) IsApprover(userID string) bool {
	for _, id := range r.Approvers {
		if id == userID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the report. The workflow core operates
// on value snapshots and never mutates a stored report in place.
func (r ExpenseReport) Clone() ExpenseReport {
	c := r
	c.Items = append([]ClaimItem(nil), r.Items...)
	c.Attachments = append([]Attachment(nil), r.Attachments...)
	c.Approvers = append([]string(nil), r.Approvers...)
	c.ApprovedBy = append([]string(nil), r.ApprovedBy...)
	c.SignatureLog = append([]Signature(nil), r.SignatureLog...)
	return c
}

// ClaimItem is one expense line within a report
type ClaimItem struct {
	ID              string          `json:"id"`
	Date            string          `json:"date"` // YYYY-MM-DD
	CategoryID      string          `json:"category_id"`
	Description     string          `json:"description"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	ExpenseCurrency string          `json:"expense_currency"`
	ExchangeRate    decimal.Decimal `json:"exchange_rate"`
	ClaimAmount     decimal.Decimal `json:"claim_amount"`
}

// ComputeClaimAmount returns (base + tax) * rate, the amount the item
// contributes to the report total in the claim currency.
func (i ClaimItem) ComputeClaimAmount() decimal.Decimal {
	return i.BaseAmount.Add(i.TaxAmount).Mul(i.ExchangeRate)
}

// TotalClaimAmount sums the claim amounts of a set of items
func TotalClaimAmount(items []ClaimItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.ClaimAmount)
	}
	return total
}

// Signature is an immutable audit record of one approve/reject action.
// The signer name is captured at signing time, not resolved later.
type Signature struct {
	SignerID   string          `json:"signer_id"`
	SignerName string          `json:"signer_name"`
	Timestamp  time.Time       `json:"timestamp"`
	Action     SignatureAction `json:"action"`
	Remark     string          `json:"remark"`
	Progress   string          `json:"progress"` // "1 of 2", or "Rejected"
}

// Attachment is an uploaded receipt or supporting document. The
// workflow core treats it as opaque data.
type Attachment struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Size    int64  `json:"size"`
	DataURL string `json:"data_url,omitempty"`
}
