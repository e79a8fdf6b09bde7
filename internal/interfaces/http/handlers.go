package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/financestream/expenseflow/internal/domain/claim"
	"github.com/financestream/expenseflow/internal/domain/entity"
	"github.com/financestream/expenseflow/internal/domain/workflow"
	"github.com/financestream/expenseflow/internal/service"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	reports   *service.ReportService
	directory *service.DirectoryService
	matrix    *service.MatrixService
	export    *service.ExportService
	logger    *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	reports *service.ReportService,
	directory *service.DirectoryService,
	matrix *service.MatrixService,
	export *service.ExportService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		reports:   reports,
		directory: directory,
		matrix:    matrix,
		export:    export,
		logger:    logger,
	}
}

// Response is the standard JSON envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var pv *claim.PolicyViolationError
	switch {
	case errors.Is(err, claim.ErrEmptyClaim):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.As(err, &pv):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
	case errors.Is(err, claim.ErrReportNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
	case errors.Is(err, claim.ErrNotDesignatedApprover):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, workflow.ErrInvalidTransition):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	respondOK(c, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ListReports handles GET /api/reports. Optional filters: ?owner=<user>
// returns a user's own reports, ?actionable_for=<user> returns the
// pending reports awaiting that user's sign-off.
func (h *Handlers) ListReports(c *gin.Context) {
	if owner := c.Query("owner"); owner != "" {
		reports, err := h.reports.ListByOwner(owner)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, reports)
		return
	}
	if approver := c.Query("actionable_for"); approver != "" {
		reports, err := h.reports.ListActionable(approver)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, reports)
		return
	}

	reports, err := h.reports.List()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, reports)
}

// SubmitReport handles POST /api/reports: new claim, edit, or
// resubmission of a rejected claim
func (h *Handlers) SubmitReport(c *gin.Context) {
	var report entity.ExpenseReport
	if err := c.ShouldBindJSON(&report); err != nil {
		respondBadRequest(c, fmt.Sprintf("invalid report payload: %v", err))
		return
	}

	saved, err := h.reports.Submit(report)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, saved)
}

// GetReport handles GET /api/reports/:id
func (h *Handlers) GetReport(c *gin.Context) {
	report, err := h.reports.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, report)
}

// ActionRequest is the payload for an approval action
type ActionRequest struct {
	Action  string `json:"action" binding:"required"`
	ActorID string `json:"actor_id" binding:"required"`
	Remark  string `json:"remark"`
}

// ApplyAction handles POST /api/reports/:id/action
func (h *Handlers) ApplyAction(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, fmt.Sprintf("invalid action payload: %v", err))
		return
	}

	action := workflow.Action(req.Action)
	if action != workflow.ActionApprove && action != workflow.ActionReject {
		respondBadRequest(c, fmt.Sprintf("unsupported action: %s", req.Action))
		return
	}

	updated, err := h.reports.ApplyAction(c.Param("id"), action, req.ActorID, req.Remark)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, updated)
}

// SignatureHistory handles GET /api/signatures?user_id=
func (h *Handlers) SignatureHistory(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respondBadRequest(c, "user_id is required")
		return
	}
	history, err := h.reports.SignatureHistory(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, history)
}

// ListUsers handles GET /api/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.directory.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, users)
}

// SaveUser handles POST /api/users
func (h *Handlers) SaveUser(c *gin.Context) {
	var user entity.User
	if err := c.ShouldBindJSON(&user); err != nil {
		respondBadRequest(c, fmt.Sprintf("invalid user payload: %v", err))
		return
	}
	saved, err := h.directory.SaveUser(user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, saved)
}

// UpdateUser handles PUT /api/users/:id
func (h *Handlers) UpdateUser(c *gin.Context) {
	var user entity.User
	if err := c.ShouldBindJSON(&user); err != nil {
		respondBadRequest(c, fmt.Sprintf("invalid user payload: %v", err))
		return
	}
	user.ID = c.Param("id")
	saved, err := h.directory.SaveUser(user)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, saved)
}

// DeleteUser handles DELETE /api/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	if err := h.directory.DeleteUser(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// ListCategories handles GET /api/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	categories, err := h.directory.ListCategories()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, categories)
}

// SaveCategory handles POST /api/categories
func (h *Handlers) SaveCategory(c *gin.Context) {
	var category entity.ExpenseCategory
	if err := c.ShouldBindJSON(&category); err != nil {
		respondBadRequest(c, fmt.Sprintf("invalid category payload: %v", err))
		return
	}
	saved, err := h.directory.SaveCategory(category)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, saved)
}

// UpdateCategory handles PUT /api/categories/:id
func (h *Handlers) UpdateCategory(c *gin.Context) {
	var category entity.ExpenseCategory
	if err := c.ShouldBindJSON(&category); err != nil {
		respondBadRequest(c, fmt.Sprintf("invalid category payload: %v", err))
		return
	}
	category.ID = c.Param("id")
	saved, err := h.directory.SaveCategory(category)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, saved)
}

// DeleteCategory handles DELETE /api/categories/:id
func (h *Handlers) DeleteCategory(c *gin.Context) {
	if err := h.directory.DeleteCategory(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil)
}

// GetMatrix handles GET /api/matrix
func (h *Handlers) GetMatrix(c *gin.Context) {
	tiers, err := h.matrix.List()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, tiers)
}

// ReplaceMatrix handles PUT /api/matrix; the body is the full ordered
// tier list
func (h *Handlers) ReplaceMatrix(c *gin.Context) {
	var tiers []entity.MatrixTier
	if err := c.ShouldBindJSON(&tiers); err != nil {
		respondBadRequest(c, fmt.Sprintf("invalid matrix payload: %v", err))
		return
	}
	saved, err := h.matrix.Replace(tiers)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	respondOK(c, saved)
}

// EvaluateRequest is the payload for an advisory matrix evaluation
type EvaluateRequest struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency" binding:"required"`
	ApproverIDs []string        `json:"approver_ids"`
}

// EvaluateMatrix handles POST /api/matrix/evaluate
func (h *Handlers) EvaluateMatrix(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, fmt.Sprintf("invalid evaluate payload: %v", err))
		return
	}
	eval, err := h.matrix.Evaluate(req.TotalAmount, req.Currency, req.ApproverIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, eval)
}

// ListCurrencies handles GET /api/currencies
func (h *Handlers) ListCurrencies(c *gin.Context) {
	respondOK(c, entity.Currencies)
}

func exportFilterFromQuery(c *gin.Context) service.ExportFilter {
	return service.ExportFilter{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Status: c.Query("status"),
	}
}

// ExportCSV handles GET /api/export/csv?from=&to=&status=
func (h *Handlers) ExportCSV(c *gin.Context) {
	lines, err := h.export.Lines(exportFilterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("Finance_Export_%d.csv", time.Now().UnixMilli())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	if err := h.export.WriteCSV(c.Writer, lines); err != nil {
		h.logger.Error("CSV export failed", zap.Error(err))
	}
}

// ExportXLSX handles GET /api/export/xlsx?from=&to=&status=
func (h *Handlers) ExportXLSX(c *gin.Context) {
	lines, err := h.export.Lines(exportFilterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("Finance_Export_%d.xlsx", time.Now().UnixMilli())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := h.export.WriteXLSX(c.Writer, lines); err != nil {
		h.logger.Error("XLSX export failed", zap.Error(err))
	}
}
