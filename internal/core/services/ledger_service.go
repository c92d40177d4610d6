package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dairybooks/dairy_books_app/internal/apperrors"
	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	portsrepo "github.com/dairybooks/dairy_books_app/internal/core/ports/repositories"
	portssvc "github.com/dairybooks/dairy_books_app/internal/core/ports/services"
	"github.com/dairybooks/dairy_books_app/internal/dto"
	"github.com/dairybooks/dairy_books_app/internal/middleware"
)

// ledgerService provides operations on the chart of ledgers.
type ledgerService struct {
	ledgerRepo portsrepo.LedgerRepositoryFacade
	companySvc portssvc.CompanySvcFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryFacade, companySvc portssvc.CompanySvcFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo: ledgerRepo,
		companySvc: companySvc,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// CreateLedger creates a new ledger under the company's chart.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) CreateLedger(ctx context.Context, companyID string, req dto.CreateLedgerRequest, creatorUserID string) (*domain.Ledger, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for CreateLedger", slog.String("user_id", creatorUserID), slog.String("company_id", companyID), slog.String("error", err.Error()))
		return nil, err
	}

	if !req.Group.IsValid() {
		return nil, fmt.Errorf("%w: unknown ledger group %s", apperrors.ErrValidation, req.Group)
	}

	// The ledger group determines the type unless one was given explicitly.
	ledgerType := req.Type
	if ledgerType == "" {
		defaultType, ok := req.Group.DefaultLedgerType()
		if !ok {
			return nil, fmt.Errorf("%w: no default type for ledger group %s", apperrors.ErrValidation, req.Group)
		}
		ledgerType = defaultType
	}

	if req.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance must not be negative; use openingBalanceType to set the side", apperrors.ErrValidation)
	}

	// Opening balance side defaults to the ledger's normal side.
	openingType := req.OpeningBalanceType
	if openingType == "" {
		openingType = domain.NormalSide(ledgerType)
	}

	now := time.Now().UTC()
	ledger := domain.Ledger{
		LedgerID:           uuid.NewString(),
		CompanyID:          companyID,
		Name:               req.Name,
		Code:               req.Code,
		Group:              req.Group,
		Type:               ledgerType,
		OpeningBalance:     req.OpeningBalance,
		OpeningBalanceType: openingType,
		Description:        req.Description,
		IsActive:           true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	// The running balance starts at the signed opening balance.
	ledger.Balance = ledger.SignedOpeningBalance()

	if err := s.ledgerRepo.SaveLedger(ctx, ledger); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Warn("Duplicate ledger", slog.String("name", req.Name), slog.String("company_id", companyID))
			return nil, fmt.Errorf("ledger with that name or code already exists: %w", err)
		}
		logger.Error("Failed to save ledger", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to save ledger: %w", err)
	}

	logger.Info("Ledger created successfully", slog.String("ledger_id", ledger.LedgerID), slog.String("company_id", companyID))
	return &ledger, nil
}

// GetLedgerByID retrieves a specific ledger.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) GetLedgerByID(ctx context.Context, companyID string, ledgerID string, requestingUserID string) (*domain.Ledger, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for GetLedgerByID", slog.String("user_id", requestingUserID), slog.String("company_id", companyID), slog.String("ledger_id", ledgerID), slog.String("error", err.Error()))
		return nil, err
	}

	ledger, err := s.ledgerRepo.FindLedgerByID(ctx, ledgerID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find ledger by ID", slog.String("error", err.Error()), slog.String("ledger_id", ledgerID))
		}
		return nil, fmt.Errorf("failed to find ledger by ID %s: %w", ledgerID, err)
	}
	if ledger.CompanyID != companyID {
		logger.Warn("Ledger found but belongs to different company", slog.String("ledger_id", ledgerID), slog.String("ledger_company", ledger.CompanyID), slog.String("requested_company", companyID))
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	return ledger, nil
}

// GetLedgersByIDs retrieves multiple ledgers, keyed by ID. Ledgers belonging
// to other companies are omitted from the result.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) GetLedgersByIDs(ctx context.Context, companyID string, ledgerIDs []string, requestingUserID string) (map[string]domain.Ledger, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for GetLedgersByIDs", slog.String("user_id", requestingUserID), slog.String("company_id", companyID), slog.String("error", err.Error()))
		return nil, err
	}

	ledgersMap, err := s.ledgerRepo.FindLedgersByIDs(ctx, ledgerIDs)
	if err != nil {
		logger.Error("Failed to find ledgers by IDs", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to find ledgers: %w", err)
	}

	for id, ledger := range ledgersMap {
		if ledger.CompanyID != companyID {
			delete(ledgersMap, id)
		}
	}
	return ledgersMap, nil
}

// ListLedgers retrieves a paginated list of ledgers for a company.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) ListLedgers(ctx context.Context, companyID string, requestingUserID string, limit int, offset int, includeInactive bool) ([]domain.Ledger, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for ListLedgers", "error", err)
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	} else if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	ledgers, err := s.ledgerRepo.ListLedgers(ctx, companyID, limit, offset, includeInactive)
	if err != nil {
		logger.Error("Failed to list ledgers", "error", err)
		return nil, fmt.Errorf("failed to retrieve ledgers: %w", err)
	}
	return ledgers, nil
}

// UpdateLedger updates a ledger's editable details. Group, type and opening
// balance are immutable; the running balance is owned by the posting engine.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) UpdateLedger(ctx context.Context, companyID string, ledgerID string, req dto.UpdateLedgerRequest, updaterUserID string) (*domain.Ledger, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, updaterUserID, companyID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for UpdateLedger", slog.String("user_id", updaterUserID), slog.String("company_id", companyID), slog.String("ledger_id", ledgerID), slog.String("error", err.Error()))
		return nil, err
	}

	ledger, err := s.ledgerRepo.FindLedgerByID(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger by ID %s: %w", ledgerID, err)
	}
	if ledger.CompanyID != companyID {
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	if req.Name != nil {
		ledger.Name = *req.Name
	}
	if req.Code != nil {
		ledger.Code = *req.Code
	}
	if req.Description != nil {
		ledger.Description = *req.Description
	}
	if req.IsActive != nil {
		ledger.IsActive = *req.IsActive
	}
	ledger.LastUpdatedAt = time.Now().UTC()
	ledger.LastUpdatedBy = updaterUserID

	if err := s.ledgerRepo.UpdateLedger(ctx, *ledger); err != nil {
		logger.Error("Failed to update ledger", slog.String("error", err.Error()), slog.String("ledger_id", ledgerID))
		return nil, fmt.Errorf("failed to update ledger %s: %w", ledgerID, err)
	}

	logger.Info("Ledger updated successfully", slog.String("ledger_id", ledgerID), slog.String("company_id", companyID))
	return ledger, nil
}

// DeactivateLedger marks a ledger inactive. Ledgers with history are never
// hard-deleted; a deactivated ledger keeps its balance and statement.
// Implements portssvc.LedgerSvcFacade
func (s *ledgerService) DeactivateLedger(ctx context.Context, companyID string, ledgerID string, deactivatorUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, deactivatorUserID, companyID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for DeactivateLedger", slog.String("user_id", deactivatorUserID), slog.String("company_id", companyID), slog.String("ledger_id", ledgerID), slog.String("error", err.Error()))
		return err
	}

	ledger, err := s.ledgerRepo.FindLedgerByID(ctx, ledgerID)
	if err != nil {
		return fmt.Errorf("failed to find ledger by ID %s: %w", ledgerID, err)
	}
	if ledger.CompanyID != companyID {
		return apperrors.ErrNotFound // Obscure existence
	}

	if err := s.ledgerRepo.DeactivateLedger(ctx, ledgerID, deactivatorUserID, time.Now().UTC()); err != nil {
		logger.Error("Failed to deactivate ledger", slog.String("error", err.Error()), slog.String("ledger_id", ledgerID))
		return fmt.Errorf("failed to deactivate ledger %s: %w", ledgerID, err)
	}

	logger.Info("Ledger deactivated successfully", slog.String("ledger_id", ledgerID), slog.String("company_id", companyID))
	return nil
}
