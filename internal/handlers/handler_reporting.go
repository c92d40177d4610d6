package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dairybooks/dairy_books_app/internal/apperrors"
	portssvc "github.com/dairybooks/dairy_books_app/internal/core/ports/services"
	"github.com/dairybooks/dairy_books_app/internal/dto"
	"github.com/dairybooks/dairy_books_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles statement and outstanding report requests.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(reportingService portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: reportingService}
}

// registerReportingRoutes registers reporting routes nested under a company.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	ledgers := rg.Group("/ledgers/:ledger_id")
	{
		ledgers.GET("/statement", h.getStatement)
		ledgers.GET("/statement/export", h.exportStatement)
		ledgers.GET("/outstanding", h.getOutstanding)
	}
}

// getStatement godoc
// @Summary Get a ledger statement
// @Description Returns the ledger's entries for the date range in chronological order with running balances.
// @Tags reporting
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   ledger_id path string true "Ledger ID"
// @Param   fromDate query string true "Inclusive start date (YYYY-MM-DD)"
// @Param   toDate query string true "Inclusive end date (YYYY-MM-DD)"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Pagination token from a previous page"
// @Success 200 {object} dto.StatementResponse
// @Failure 400 {object} map[string]string "Invalid date range"
// @Failure 404 {object} map[string]string "Ledger not found"
// @Security BearerAuth
// @Router /companies/{company_id}/ledgers/{ledger_id}/statement [get]
func (h *reportingHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	ledgerID := c.Param("ledger_id")

	var params dto.StatementParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for GetStatement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	statement, err := h.reportingService.GetStatement(c.Request.Context(), companyID, ledgerID, params, userID)
	if err != nil {
		h.respondReportingError(c, logger, err, "Failed to build statement")
		return
	}

	c.JSON(http.StatusOK, statement)
}

// exportStatement godoc
// @Summary Export a ledger statement as an Excel workbook
// @Description Renders the full statement for the date range as an xlsx download.
// @Tags reporting
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param   company_id path string true "Company ID"
// @Param   ledger_id path string true "Ledger ID"
// @Param   fromDate query string true "Inclusive start date (YYYY-MM-DD)"
// @Param   toDate query string true "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {file} binary "Statement workbook"
// @Failure 400 {object} map[string]string "Invalid date range"
// @Failure 404 {object} map[string]string "Ledger not found"
// @Security BearerAuth
// @Router /companies/{company_id}/ledgers/{ledger_id}/statement/export [get]
func (h *reportingHandler) exportStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	ledgerID := c.Param("ledger_id")

	var params dto.StatementParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ExportStatement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	content, filename, err := h.reportingService.ExportStatementExcel(c.Request.Context(), companyID, ledgerID, params, userID)
	if err != nil {
		h.respondReportingError(c, logger, err, "Failed to export statement")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

// getOutstanding godoc
// @Summary Get outstanding amounts by classification
// @Description Aggregates non-cancelled entry amounts for the ledger grouped by classification tag.
// @Tags reporting
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   ledger_id path string true "Ledger ID"
// @Success 200 {object} dto.OutstandingResponse
// @Failure 404 {object} map[string]string "Ledger not found"
// @Security BearerAuth
// @Router /companies/{company_id}/ledgers/{ledger_id}/outstanding [get]
func (h *reportingHandler) getOutstanding(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	ledgerID := c.Param("ledger_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	summaries, err := h.reportingService.GetOutstandingByClassification(c.Request.Context(), companyID, ledgerID, userID)
	if err != nil {
		h.respondReportingError(c, logger, err, "Failed to compute outstanding amounts")
		return
	}

	c.JSON(http.StatusOK, dto.ToOutstandingResponse(ledgerID, summaries))
}

func (h *reportingHandler) respondReportingError(c *gin.Context, logger *slog.Logger, err error, logMsg string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
	default:
		logger.Error(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": logMsg})
	}
}
