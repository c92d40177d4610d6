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

// voucherHandler handles HTTP requests related to vouchers.
type voucherHandler struct {
	voucherService portssvc.VoucherSvcFacade
}

func newVoucherHandler(voucherService portssvc.VoucherSvcFacade) *voucherHandler {
	return &voucherHandler{voucherService: voucherService}
}

// registerVoucherRoutes registers voucher routes nested under a company.
func registerVoucherRoutes(rg *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade) {
	h := newVoucherHandler(voucherService)

	vouchers := rg.Group("/vouchers")
	{
		vouchers.POST("", h.postVoucher)
		vouchers.GET("", h.listVouchers)
		vouchers.GET("/:voucher_id", h.getVoucher)
		vouchers.PUT("/:voucher_id", h.editVoucher)
		vouchers.DELETE("/:voucher_id", h.reverseVoucher)
	}
}

// postVoucher godoc
// @Summary Post a new voucher
// @Description Validates the entries balance, assigns the next voucher number and atomically updates ledger balances.
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   voucher body dto.CreateVoucherRequest true "Voucher with entries"
// @Success 201 {object} dto.VoucherResponse
// @Failure 400 {object} map[string]string "Validation failed"
// @Failure 404 {object} map[string]string "Ledger not found"
// @Security BearerAuth
// @Router /companies/{company_id}/vouchers [post]
func (h *voucherHandler) postVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostVoucher", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.PostVoucher(c.Request.Context(), companyID, req, userID)
	if err != nil {
		h.respondVoucherError(c, logger, err, "Failed to post voucher")
		return
	}

	logger.Info("Voucher posted successfully",
		slog.String("voucher_id", voucher.VoucherID),
		slog.Int64("voucher_number", voucher.VoucherNumber))
	c.JSON(http.StatusCreated, dto.ToVoucherResponse(voucher))
}

// getVoucher godoc
// @Summary Get a voucher with its entries
// @Tags vouchers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   voucher_id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 404 {object} map[string]string "Voucher not found"
// @Security BearerAuth
// @Router /companies/{company_id}/vouchers/{voucher_id} [get]
func (h *voucherHandler) getVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	voucherID := c.Param("voucher_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.GetVoucherByID(c.Request.Context(), companyID, voucherID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Voucher not found"})
			return
		}
		logger.Error("Failed to get voucher", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve voucher"})
		return
	}

	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// listVouchers godoc
// @Summary List vouchers for a company
// @Description Returns vouchers newest-first with token-based pagination. Optional filters by type, status and date range.
// @Tags vouchers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Pagination token from a previous page"
// @Param   voucherType query string false "Filter by voucher type"
// @Param   status query string false "Filter by status"
// @Param   fromDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param   toDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Param   includeEntries query bool false "Embed entries in each voucher"
// @Success 200 {object} dto.ListVouchersResponse
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Security BearerAuth
// @Router /companies/{company_id}/vouchers [get]
func (h *voucherHandler) listVouchers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")

	var params dto.ListVouchersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListVouchers", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.voucherService.ListVouchers(c.Request.Context(), companyID, userID, params)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		default:
			logger.Error("Failed to list vouchers", slog.String("error", err.Error()), slog.String("company_id", companyID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list vouchers"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// editVoucher godoc
// @Summary Edit a posted voucher
// @Description Atomically reverses the existing entries and posts the replacement set under the same voucher number.
// @Tags vouchers
// @Accept  json
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   voucher_id path string true "Voucher ID"
// @Param   voucher body dto.CreateVoucherRequest true "Replacement voucher"
// @Success 200 {object} dto.VoucherResponse
// @Failure 400 {object} map[string]string "Validation failed"
// @Failure 409 {object} map[string]string "Voucher is not in POSTED status"
// @Security BearerAuth
// @Router /companies/{company_id}/vouchers/{voucher_id} [put]
func (h *voucherHandler) editVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	voucherID := c.Param("voucher_id")

	var req dto.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for EditVoucher", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.EditVoucher(c.Request.Context(), companyID, voucherID, req, userID)
	if err != nil {
		h.respondVoucherError(c, logger, err, "Failed to edit voucher")
		return
	}

	logger.Info("Voucher edited successfully", slog.String("voucher_id", voucher.VoucherID))
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// reverseVoucher godoc
// @Summary Reverse a posted voucher
// @Description Marks the voucher CANCELLED and applies the inverse balance deltas. The voucher and its entries are kept for audit.
// @Tags vouchers
// @Produce  json
// @Param   company_id path string true "Company ID"
// @Param   voucher_id path string true "Voucher ID"
// @Success 200 {object} dto.VoucherResponse
// @Failure 404 {object} map[string]string "Voucher not found"
// @Failure 409 {object} map[string]string "Voucher is not in POSTED status"
// @Security BearerAuth
// @Router /companies/{company_id}/vouchers/{voucher_id} [delete]
func (h *voucherHandler) reverseVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	companyID := c.Param("company_id")
	voucherID := c.Param("voucher_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	voucher, err := h.voucherService.ReverseVoucher(c.Request.Context(), companyID, voucherID, userID)
	if err != nil {
		h.respondVoucherError(c, logger, err, "Failed to reverse voucher")
		return
	}

	logger.Info("Voucher reversed successfully", slog.String("voucher_id", voucher.VoucherID))
	c.JSON(http.StatusOK, dto.ToVoucherResponse(voucher))
}

// respondVoucherError maps service errors from posting operations to HTTP responses.
func (h *voucherHandler) respondVoucherError(c *gin.Context, logger *slog.Logger, err error, logMsg string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrIntegrity):
		logger.Error(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Voucher data is inconsistent, contact support"})
	default:
		logger.Error(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": logMsg})
	}
}
