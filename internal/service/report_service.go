package service

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/financestream/expenseflow/internal/domain/claim"
	"github.com/financestream/expenseflow/internal/domain/entity"
	"github.com/financestream/expenseflow/internal/domain/workflow"
)

// ErrUserNotFound is returned when an operation references a user id
// absent from the directory
var ErrUserNotFound = errors.New("user not found")

// ReportStore is the persistence surface the report service needs
type ReportStore interface {
	Upsert(tx *sql.Tx, report *entity.ExpenseReport) error
	GetByID(id string) (*entity.ExpenseReport, error)
	List() ([]entity.ExpenseReport, error)
	ListByUser(userID string) ([]entity.ExpenseReport, error)
}

// UserStore is the directory lookup surface
type UserStore interface {
	List() ([]entity.User, error)
	GetByID(id string) (*entity.User, error)
}

// MatrixStore reads the ordered approver matrix
type MatrixStore interface {
	List() ([]entity.MatrixTier, error)
}

// SequenceStore persists the report-id counter
type SequenceStore interface {
	Get() (int64, error)
	Save(tx *sql.Tx, counter int64) error
}

// TxRunner executes a function inside a storage transaction
type TxRunner interface {
	WithTransaction(fn func(*sql.Tx) error) error
}

// ReportService wraps the pure workflow core with the persistence
// boundary: load a snapshot, run the core, store the result atomically.
type ReportService struct {
	tx       TxRunner
	reports  ReportStore
	users    UserStore
	matrix   MatrixStore
	sequence SequenceStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService creates a new report service
func NewReportService(
	tx TxRunner,
	reports ReportStore,
	users UserStore,
	matrix MatrixStore,
	sequence SequenceStore,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		tx:       tx,
		reports:  reports,
		users:    users,
		matrix:   matrix,
		sequence: sequence,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit validates and saves an incoming report: a brand-new claim, an
// edit to an existing one, or a resubmission of a rejected one. The
// assigned report id is returned on the saved report.
func (s *ReportService) Submit(incoming entity.ExpenseReport) (entity.ExpenseReport, error) {
	normalizeItems(&incoming)

	tiers, err := s.matrix.List()
	if err != nil {
		return entity.ExpenseReport{}, err
	}
	directory, err := s.users.List()
	if err != nil {
		return entity.ExpenseReport{}, err
	}
	if err := claim.ValidateSubmission(incoming, tiers, directory); err != nil {
		return entity.ExpenseReport{}, err
	}

	reports, err := s.reports.List()
	if err != nil {
		return entity.ExpenseReport{}, err
	}
	counter, err := s.sequence.Get()
	if err != nil {
		return entity.ExpenseReport{}, err
	}

	result := claim.Save(reports, incoming, claim.NewSequence(counter), s.now())

	saved := result.Reports[0]
	if result.Kind == claim.SaveUpdated {
		for i := range result.Reports {
			if result.Reports[i].ID == result.ID {
				saved = result.Reports[i]
				break
			}
		}
	}

	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		if err := s.reports.Upsert(tx, &saved); err != nil {
			return err
		}
		return s.sequence.Save(tx, result.Sequence.Counter())
	})
	if err != nil {
		return entity.ExpenseReport{}, err
	}

	s.logger.Info("Report saved",
		zap.String("id", result.ID),
		zap.String("kind", string(result.Kind)),
		zap.String("user_id", saved.UserID),
		zap.String("total", saved.TotalClaimAmount.String()))
	return saved, nil
}

// ApplyAction applies an approve/reject by the acting user to the
// report and persists the outcome. The acting user's role and display
// name are resolved from the directory at signing time.
func (s *ReportService) ApplyAction(reportID string, action workflow.Action, actorID, remark string) (entity.ExpenseReport, error) {
	report, err := s.reports.GetByID(reportID)
	if err != nil {
		return entity.ExpenseReport{}, err
	}
	if report == nil {
		return entity.ExpenseReport{}, fmt.Errorf("%w: %s", claim.ErrReportNotFound, reportID)
	}

	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return entity.ExpenseReport{}, err
	}
	if actor == nil {
		return entity.ExpenseReport{}, fmt.Errorf("%w: %s", ErrUserNotFound, actorID)
	}

	signer := claim.Signer{ID: actor.ID, Name: actor.Name, Role: actor.Role}
	updated, err := claim.ApplyAction(*report, action, signer, remark, s.now())
	if err != nil {
		return entity.ExpenseReport{}, err
	}

	// Admin attempts are a silent no-op; nothing to persist
	if len(updated.SignatureLog) == len(report.SignatureLog) {
		return updated, nil
	}

	err = s.tx.WithTransaction(func(tx *sql.Tx) error {
		return s.reports.Upsert(tx, &updated)
	})
	if err != nil {
		return entity.ExpenseReport{}, err
	}

	s.logger.Info("Approval action applied",
		zap.String("report_id", reportID),
		zap.String("action", action.String()),
		zap.String("actor_id", actorID),
		zap.String("status", updated.Status.String()))
	return updated, nil
}

// Get retrieves a report by id
func (s *ReportService) Get(id string) (entity.ExpenseReport, error) {
	report, err := s.reports.GetByID(id)
	if err != nil {
		return entity.ExpenseReport{}, err
	}
	if report == nil {
		return entity.ExpenseReport{}, fmt.Errorf("%w: %s", claim.ErrReportNotFound, id)
	}
	return *report, nil
}

// List retrieves every report, newest first
func (s *ReportService) List() ([]entity.ExpenseReport, error) {
	return s.reports.List()
}

// ListByOwner retrieves the reports submitted by a user
func (s *ReportService) ListByOwner(userID string) ([]entity.ExpenseReport, error) {
	return s.reports.ListByUser(userID)
}

// ListActionable retrieves the pending reports awaiting the user's sign-off
func (s *ReportService) ListActionable(userID string) ([]entity.ExpenseReport, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	reports, err := s.reports.List()
	if err != nil {
		return nil, err
	}
	return claim.ActionableBy(reports, *user), nil
}

// SignatureHistory retrieves the signature log entries visible to the
// user: their own signatures, or all of them for Admins
func (s *ReportService) SignatureHistory(userID string) ([]claim.SignatureRecord, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	reports, err := s.reports.List()
	if err != nil {
		return nil, err
	}
	return claim.SignatureHistoryFor(reports, *user), nil
}

// normalizeItems recomputes per-item claim amounts and the report
// total, and assigns ids to new items. Client-supplied arithmetic is
// never trusted.
func normalizeItems(report *entity.ExpenseReport) {
	for i := range report.Items {
		if report.Items[i].ID == "" {
			report.Items[i].ID = uuid.NewString()
		}
		report.Items[i].ClaimAmount = report.Items[i].ComputeClaimAmount()
	}
	report.TotalClaimAmount = entity.TotalClaimAmount(report.Items)
}
