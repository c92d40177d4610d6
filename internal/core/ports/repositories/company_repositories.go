package repositories

import (
	"context"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
)

// CompanyRepositoryFacade defines persistence operations for companies and memberships.
type CompanyRepositoryFacade interface {
	// SaveCompany persists a new company.
	SaveCompany(ctx context.Context, company domain.Company) error

	// FindCompanyByID retrieves a company by ID.
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// ListCompaniesByUser retrieves the companies a user belongs to.
	ListCompaniesByUser(ctx context.Context, userID string) ([]domain.Company, error)

	// AddUserToCompany links a user to a company with a role.
	AddUserToCompany(ctx context.Context, companyUser domain.CompanyUser) error

	// FindCompanyUserRole returns the role of a user within a company, or
	// ErrNotFound if the user is not a member.
	FindCompanyUserRole(ctx context.Context, companyID string, userID string) (domain.UserRole, error)
}
