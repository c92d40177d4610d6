package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dairybooks/dairy_books_app/internal/apperrors"
	portssvc "github.com/dairybooks/dairy_books_app/internal/core/ports/services"
	"github.com/dairybooks/dairy_books_app/internal/dto"
	"github.com/dairybooks/dairy_books_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests related to ledgers.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

// registerLedgerRoutes registers ledger routes nested under a company.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledgers := rg.Group("/ledgers")
	{
		ledgers.POST("", h.createLedger)
		ledgers.GET("", h.listLedgers)
		ledgers.GET("/:ledger_id", h.getLedger)
		ledgers.PUT("/:ledger_id", h.updateLedger)
		ledgers.DELETE("/:ledger_id", h.deactivateLedger)
	}
}

// createLedger godoc
// @Summary Create a new ledger
// @Description Creates a ledger in the company's chart. The group determines the type unless one is given.
// @Tags ledgers
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   ledger body dto.CreateLedgerRequest true "Ledger details"
// @Success 201 {object} dto.LedgerResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Duplicate name or code"
// @Security BearerAuth
// @Router /companies/{company_id}/ledgers [post]
func (h *ledgerHandler) createLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateLedger", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ledger, err := h.ledgerService.CreateLedger(c.Request.Context(), companyID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "Ledger with that name or code already exists"})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
		default:
			logger.Error("Failed to create ledger", slog.String("error", err.Error()), slog.String("company_id", companyID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ledger"})
		}
		return
	}

	logger.Info("Ledger created successfully", slog.String("ledger_id", ledger.LedgerID))
	c.JSON(http.StatusCreated, dto.ToLedgerResponse(ledger))
}

// getLedger godoc
// @Summary Get a ledger by ID
// @Tags ledgers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   ledger_id path string true "Ledger ID"
// @Success 200 {object} dto.LedgerResponse
// @Failure 404 {object} map[string]string "Ledger not found"
// @Security BearerAuth
// @Router /companies/{company_id}/ledgers/{ledger_id} [get]
func (h *ledgerHandler) getLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	ledgerID := c.Param("ledger_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ledger, err := h.ledgerService.GetLedgerByID(c.Request.Context(), companyID, ledgerID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
			return
		}
		if errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}
		logger.Error("Failed to get ledger", slog.String("error", err.Error()), slog.String("ledger_id", ledgerID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve ledger"})
		return
	}

	c.JSON(http.StatusOK, dto.ToLedgerResponse(ledger))
}

// listLedgers godoc
// @Summary List ledgers for a company
// @Tags ledgers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   limit query int false "Page size"
// @Param   offset query int false "Offset"
// @Param   includeInactive query bool false "Include deactivated ledgers"
// @Success 200 {array} dto.LedgerResponse
// @Security BearerAuth
// @Router /companies/{company_id}/ledgers [get]
func (h *ledgerHandler) listLedgers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("includeInactive", "false"))

	ledgers, err := h.ledgerService.ListLedgers(c.Request.Context(), companyID, userID, limit, offset, includeInactive)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
			return
		}
		logger.Error("Failed to list ledgers", slog.String("error", err.Error()), slog.String("company_id", companyID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list ledgers"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListLedgerResponse(ledgers))
}

// updateLedger godoc
// @Summary Update a ledger's details
// @Description Updates name, code, description or active flag. Group, type and opening balance are immutable.
// @Tags ledgers
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   ledger_id path string true "Ledger ID"
// @Param   ledger body dto.UpdateLedgerRequest true "Fields to update"
// @Success 200 {object} dto.LedgerResponse
// @Failure 404 {object} map[string]string "Ledger not found"
// @Security BearerAuth
// @Router /companies/{company_id}/ledgers/{ledger_id} [put]
func (h *ledgerHandler) updateLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	ledgerID := c.Param("ledger_id")

	var req dto.UpdateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateLedger", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ledger, err := h.ledgerService.UpdateLedger(c.Request.Context(), companyID, ledgerID, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "Ledger name or code already in use"})
		default:
			logger.Error("Failed to update ledger", slog.String("error", err.Error()), slog.String("ledger_id", ledgerID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ledger"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToLedgerResponse(ledger))
}

// deactivateLedger godoc
// @Summary Deactivate a ledger
// @Description Marks a ledger inactive. Ledgers are never hard-deleted; history and balance are kept.
// @Tags ledgers
// @Param   company_id path string true "Company ID"
// @Param   ledger_id path string true "Ledger ID"
// @Success 204 "Ledger deactivated"
// @Failure 404 {object} map[string]string "Ledger not found"
// @Security BearerAuth
// @Router /companies/{company_id}/ledgers/{ledger_id} [delete]
func (h *ledgerHandler) deactivateLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	ledgerID := c.Param("ledger_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.ledgerService.DeactivateLedger(c.Request.Context(), companyID, ledgerID, userID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Ledger not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
		default:
			logger.Error("Failed to deactivate ledger", slog.String("error", err.Error()), slog.String("ledger_id", ledgerID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate ledger"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
