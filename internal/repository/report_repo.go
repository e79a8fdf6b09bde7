package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/financestream/expenseflow/internal/domain/entity"
)

// ReportRepository handles expense report persistence. Nested
// collections (items, attachments, approver sets, signature log) are
// stored as JSON columns; the workflow core never sees the encoding.
type ReportRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{db: db, logger: logger}
}

const reportColumns = `
	id, user_id, user_name, title, total_claim_amount, claim_currency,
	status, created_at, rejection_comment, items, attachments,
	approvers, approved_by, signature_log`

// Upsert inserts or replaces a report by id
func (r *ReportRepository) Upsert(tx *sql.Tx, report *entity.ExpenseReport) error {
	items, err := json.Marshal(report.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	attachments, err := json.Marshal(report.Attachments)
	if err != nil {
		return fmt.Errorf("marshal attachments: %w", err)
	}
	approvers, err := json.Marshal(report.Approvers)
	if err != nil {
		return fmt.Errorf("marshal approvers: %w", err)
	}
	approvedBy, err := json.Marshal(report.ApprovedBy)
	if err != nil {
		return fmt.Errorf("marshal approved_by: %w", err)
	}
	signatureLog, err := json.Marshal(report.SignatureLog)
	if err != nil {
		return fmt.Errorf("marshal signature_log: %w", err)
	}

	query := `
		INSERT INTO expense_reports (` + reportColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			user_name = excluded.user_name,
			title = excluded.title,
			total_claim_amount = excluded.total_claim_amount,
			claim_currency = excluded.claim_currency,
			status = excluded.status,
			created_at = excluded.created_at,
			rejection_comment = excluded.rejection_comment,
			items = excluded.items,
			attachments = excluded.attachments,
			approvers = excluded.approvers,
			approved_by = excluded.approved_by,
			signature_log = excluded.signature_log
	`
	args := []interface{}{
		report.ID,
		report.UserID,
		report.UserName,
		report.Title,
		report.TotalClaimAmount.String(),
		report.ClaimCurrency,
		report.Status.String(),
		report.CreatedAt,
		report.RejectionComment,
		string(items),
		string(attachments),
		string(approvers),
		string(approvedBy),
		string(signatureLog),
	}

	if tx != nil {
		_, err = tx.Exec(query, args...)
	} else {
		_, err = r.db.Exec(query, args...)
	}
	if err != nil {
		r.logger.Error("Failed to upsert report", zap.String("id", report.ID), zap.Error(err))
		return fmt.Errorf("upsert report: %w", err)
	}
	return nil
}

// GetByID retrieves a report by id; returns (nil, nil) when absent
func (r *ReportRepository) GetByID(id string) (*entity.ExpenseReport, error) {
	row := r.db.QueryRow(`SELECT `+reportColumns+` FROM expense_reports WHERE id = ?`, id)

	report, err := scanReport(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get report", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

// List retrieves every report, newest first (resubmissions and new
// reports are prepended to the collection)
func (r *ReportRepository) List() ([]entity.ExpenseReport, error) {
	return r.list(`SELECT ` + reportColumns + ` FROM expense_reports ORDER BY created_at DESC, rowid DESC`)
}

// ListByUser retrieves the reports owned by a user, newest first
func (r *ReportRepository) ListByUser(userID string) ([]entity.ExpenseReport, error) {
	return r.list(`SELECT `+reportColumns+` FROM expense_reports WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
}

func (r *ReportRepository) list(query string, args ...interface{}) ([]entity.ExpenseReport, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list reports", zap.Error(err))
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]entity.ExpenseReport, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*entity.ExpenseReport, error) {
	var (
		report       entity.ExpenseReport
		total        string
		status       string
		items        string
		attachments  string
		approvers    string
		approvedBy   string
		signatureLog string
	)

	err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.UserName,
		&report.Title,
		&total,
		&report.ClaimCurrency,
		&status,
		&report.CreatedAt,
		&report.RejectionComment,
		&items,
		&attachments,
		&approvers,
		&approvedBy,
		&signatureLog,
	)
	if err != nil {
		return nil, err
	}

	report.TotalClaimAmount, err = decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("parse total_claim_amount: %w", err)
	}
	report.Status = entity.Status(status)
	if !report.Status.IsValid() {
		return nil, fmt.Errorf("unknown report status %q", status)
	}

	if err := json.Unmarshal([]byte(items), &report.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal([]byte(attachments), &report.Attachments); err != nil {
		return nil, fmt.Errorf("unmarshal attachments: %w", err)
	}
	if err := json.Unmarshal([]byte(approvers), &report.Approvers); err != nil {
		return nil, fmt.Errorf("unmarshal approvers: %w", err)
	}
	if err := json.Unmarshal([]byte(approvedBy), &report.ApprovedBy); err != nil {
		return nil, fmt.Errorf("unmarshal approved_by: %w", err)
	}
	if err := json.Unmarshal([]byte(signatureLog), &report.SignatureLog); err != nil {
		return nil, fmt.Errorf("unmarshal signature_log: %w", err)
	}
	return &report, nil
}
