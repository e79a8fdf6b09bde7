package claim

import (
	"errors"
	"fmt"
	"strings"

	"github.com/financestream/expenseflow/internal/domain/entity"
)

var (
	// ErrReportNotFound is returned when an action references a report
	// id absent from the collection
	ErrReportNotFound = errors.New("report not found")

	// ErrNotDesignatedApprover is returned when a user who is not in the
	// report's approver list attempts to sign
	ErrNotDesignatedApprover = errors.New("user is not a designated approver")

	// ErrEmptyClaim is returned when a report is submitted with no line items
	ErrEmptyClaim = errors.New("report has no claim items")
)

// PolicyViolationError reports an approver selection that does not
// cover the roles the matrix requires for the report amount
type PolicyViolationError struct {
	Missing []entity.Role
}

func (e *PolicyViolationError) Error() string {
	roles := make([]string, len(e.Missing))
	for i, r := range e.Missing {
		roles[i] = r.String()
	}
	return fmt.Sprintf("approver selection does not satisfy matrix: missing %s sign-off", strings.Join(roles, " & "))
}
