package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dairybooks/dairy_books_app/internal/apperrors"
	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	portssvc "github.com/dairybooks/dairy_books_app/internal/core/ports/services"
	"github.com/dairybooks/dairy_books_app/internal/dto"
	"github.com/dairybooks/dairy_books_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// companyHandler handles HTTP requests related to companies and memberships.
type companyHandler struct {
	companyService portssvc.CompanySvcFacade
}

func newCompanyHandler(companyService portssvc.CompanySvcFacade) *companyHandler {
	return &companyHandler{companyService: companyService}
}

// registerCompanyRoutes registers routes related to companies and their members.
// Ledger, voucher and reporting routes are nested under a specific company.
func registerCompanyRoutes(rg *gin.RouterGroup, companyService portssvc.CompanySvcFacade, ledgerService portssvc.LedgerSvcFacade, voucherService portssvc.VoucherSvcFacade, reportingService portssvc.ReportingSvcFacade) {
	h := newCompanyHandler(companyService)

	companiesTopLevel := rg.Group("/companies")
	{
		companiesTopLevel.POST("", h.createCompany)
		companiesTopLevel.GET("", h.listUserCompanies)
	}

	companySpecific := rg.Group("/companies/:company_id")
	{
		companySpecific.GET("", h.getCompany)

		companyUsers := companySpecific.Group("/users")
		{
			companyUsers.POST("", h.addUserToCompany)
		}

		registerLedgerRoutes(companySpecific, ledgerService)
		registerVoucherRoutes(companySpecific, voucherService)
		registerReportingRoutes(companySpecific, reportingService)
	}
}

// createCompany godoc
// @Summary Create a new company
// @Description Creates a new company and assigns the creator as admin.
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company body dto.CreateCompanyRequest true "Company details"
// @Success 201 {object} dto.CompanyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /companies [post]
func (h *companyHandler) createCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCompany", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), req, creatorUserID)
	if err != nil {
		logger.Error("Failed to create company", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company"})
		return
	}

	logger.Info("Company created successfully", slog.String("company_id", company.CompanyID))
	c.JSON(http.StatusCreated, dto.ToCompanyResponse(company))
}

// getCompany godoc
// @Summary Get a company by ID
// @Tags companies
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Success 200 {object} dto.CompanyResponse
// @Failure 404 {object} map[string]string "Company not found"
// @Security BearerAuth
// @Router /companies/{company_id} [get]
func (h *companyHandler) getCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Membership check: non-members get a 404
	if err := h.companyService.AuthorizeUserAction(c.Request.Context(), userID, companyID, domain.RoleReadOnly); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrForbidden) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
			return
		}
		logger.Error("Failed to authorize company access", slog.String("error", err.Error()), slog.String("company_id", companyID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve company"})
		return
	}

	company, err := h.companyService.GetCompanyByID(c.Request.Context(), companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
			return
		}
		logger.Error("Failed to get company", slog.String("error", err.Error()), slog.String("company_id", companyID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve company"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCompanyResponse(company))
}

// listUserCompanies godoc
// @Summary List companies for current user
// @Description Retrieves the companies the authenticated user belongs to.
// @Tags companies
// @Produce  json
// @Success 200 {array} dto.CompanyResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /companies [get]
func (h *companyHandler) listUserCompanies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	companies, err := h.companyService.ListCompaniesByUser(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to list companies", slog.String("error", err.Error()), slog.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list companies"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListCompanyResponse(companies))
}

// addUserToCompanyRequest is the payload for adding a member.
type addUserToCompanyRequest struct {
	UserID string          `json:"userID" binding:"required"`
	Role   domain.UserRole `json:"role" binding:"required,oneof=ADMIN MEMBER READ_ONLY"`
}

// addUserToCompany godoc
// @Summary Add a user to a company
// @Description Adds an existing user to the company with a role. Admin only.
// @Tags companies
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   membership body addUserToCompanyRequest true "User and role"
// @Success 204 "User added"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 409 {object} map[string]string "Already a member"
// @Security BearerAuth
// @Router /companies/{company_id}/users [post]
func (h *companyHandler) addUserToCompany(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req addUserToCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddUserToCompany", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actingUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.companyService.AddUserToCompany(c.Request.Context(), companyID, req.UserID, req.Role, actingUserID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		case errors.Is(err, apperrors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "User is already a member"})
		default:
			logger.Error("Failed to add user to company", slog.String("error", err.Error()), slog.String("company_id", companyID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add user to company"})
		}
		return
	}

	c.Status(http.StatusNoContent)
}
