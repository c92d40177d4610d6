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

// companyService provides operations on companies and memberships.
type companyService struct {
	companyRepo portsrepo.CompanyRepositoryFacade
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(companyRepo portsrepo.CompanyRepositoryFacade) portssvc.CompanySvcFacade {
	return &companyService{companyRepo: companyRepo}
}

var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// CreateCompany creates a company and makes the creator its admin.
// Implements portssvc.CompanySvcFacade
func (s *companyService) CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, creatorUserID string) (*domain.Company, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	company := domain.Company{
		CompanyID:   uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
		logger.Error("Failed to save company", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save company: %w", err)
	}

	membership := domain.CompanyUser{
		CompanyID: company.CompanyID,
		UserID:    creatorUserID,
		Role:      domain.RoleAdmin,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.companyRepo.AddUserToCompany(ctx, membership); err != nil {
		logger.Error("Failed to add creator to company", slog.String("error", err.Error()), slog.String("company_id", company.CompanyID))
		return nil, fmt.Errorf("failed to add creator to company: %w", err)
	}

	logger.Info("Company created successfully", slog.String("company_id", company.CompanyID), slog.String("user_id", creatorUserID))
	return &company, nil
}

// GetCompanyByID retrieves a company by ID.
// Implements portssvc.CompanySvcFacade
func (s *companyService) GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to find company by ID %s: %w", companyID, err)
	}
	return company, nil
}

// ListCompaniesByUser retrieves the companies a user belongs to.
// Implements portssvc.CompanySvcFacade
func (s *companyService) ListCompaniesByUser(ctx context.Context, userID string) ([]domain.Company, error) {
	companies, err := s.companyRepo.ListCompaniesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies for user %s: %w", userID, err)
	}
	return companies, nil
}

// AddUserToCompany links a user to a company. Only admins may add members.
// Implements portssvc.CompanySvcFacade
func (s *companyService) AddUserToCompany(ctx context.Context, companyID string, userID string, role domain.UserRole, actingUserID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, actingUserID, companyID, domain.RoleAdmin); err != nil {
		logger.Warn("Authorization failed for AddUserToCompany", slog.String("user_id", actingUserID), slog.String("company_id", companyID), slog.String("error", err.Error()))
		return err
	}

	now := time.Now().UTC()
	membership := domain.CompanyUser{
		CompanyID: companyID,
		UserID:    userID,
		Role:      role,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actingUserID,
		},
	}
	if err := s.companyRepo.AddUserToCompany(ctx, membership); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return fmt.Errorf("user %s is already a member of company %s: %w", userID, companyID, err)
		}
		logger.Error("Failed to add user to company", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return fmt.Errorf("failed to add user to company: %w", err)
	}

	logger.Info("User added to company", slog.String("company_id", companyID), slog.String("user_id", userID), slog.String("role", string(role)))
	return nil
}

// AuthorizeUserAction verifies the user belongs to the company with at least
// the required role.
// Implements portssvc.CompanySvcFacade
func (s *companyService) AuthorizeUserAction(ctx context.Context, userID string, companyID string, requiredRole domain.UserRole) error {
	role, err := s.companyRepo.FindCompanyUserRole(ctx, companyID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Non-members are told the company does not exist.
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to check company membership: %w", err)
	}

	if !role.AtLeast(requiredRole) {
		return fmt.Errorf("user %s lacks role %s in company %s: %w", userID, requiredRole, companyID, apperrors.ErrForbidden)
	}
	return nil
}
