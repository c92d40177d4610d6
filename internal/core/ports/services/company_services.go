package services

import (
	"context"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/dairybooks/dairy_books_app/internal/dto"
)

// CompanySvcFacade defines the service operations on companies and membership.
type CompanySvcFacade interface {
	CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, userID string) (*domain.Company, error)
	GetCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)
	ListCompaniesByUser(ctx context.Context, userID string) ([]domain.Company, error)
	AddUserToCompany(ctx context.Context, companyID string, userID string, role domain.UserRole, actingUserID string) error

	// AuthorizeUserAction verifies the user belongs to the company with at
	// least the required role. Returns apperrors.ErrForbidden otherwise.
	AuthorizeUserAction(ctx context.Context, userID string, companyID string, requiredRole domain.UserRole) error
}
