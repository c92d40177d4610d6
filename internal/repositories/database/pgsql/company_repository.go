package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dairybooks/dairy_books_app/internal/apperrors"
	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	portsrepo "github.com/dairybooks/dairy_books_app/internal/core/ports/repositories"
	"github.com/dairybooks/dairy_books_app/internal/models"
	"github.com/dairybooks/dairy_books_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const companyColumns = `company_id, name, description, created_at, created_by, last_updated_at, last_updated_by`

type PgxCompanyRepository struct {
	BaseRepository
}

// newPgxCompanyRepository creates a new repository for company data.
func newPgxCompanyRepository(pool *pgxpool.Pool) portsrepo.CompanyRepositoryFacade {
	return &PgxCompanyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

func scanCompany(row pgx.Row) (*models.Company, error) {
	var m models.Company
	var description sql.NullString
	err := row.Scan(
		&m.CompanyID,
		&m.Name,
		&description,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.Description = description.String
	return &m, nil
}

// SaveCompany persists a new company.
func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	m := mapping.ToModelCompany(company)

	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CompanyID,
		m.Name,
		m.Description,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: company %s already exists", apperrors.ErrDuplicate, m.CompanyID)
		}
		return fmt.Errorf("failed to save company %s: %w", m.CompanyID, err)
	}
	return nil
}

// FindCompanyByID retrieves a company by ID.
func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE company_id = $1;`

	m, err := scanCompany(r.Pool.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find company by ID "+companyID, err)
	}

	company := mapping.ToDomainCompany(*m)
	return &company, nil
}

// ListCompaniesByUser retrieves the companies a user belongs to.
func (r *PgxCompanyRepository) ListCompaniesByUser(ctx context.Context, userID string) ([]domain.Company, error) {
	query := `
		SELECT c.company_id, c.name, c.description, c.created_at, c.created_by, c.last_updated_at, c.last_updated_by
		FROM companies c
		JOIN company_users cu ON c.company_id = cu.company_id
		WHERE cu.user_id = $1
		ORDER BY c.name ASC;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query companies for user "+userID, err)
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		m, err := scanCompany(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan company row", err)
		}
		companies = append(companies, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating company rows", err)
	}

	return mapping.ToDomainCompanySlice(companies), nil
}

// AddUserToCompany links a user to a company with a role.
func (r *PgxCompanyRepository) AddUserToCompany(ctx context.Context, companyUser domain.CompanyUser) error {
	m := mapping.ToModelCompanyUser(companyUser)

	query := `
		INSERT INTO company_users (company_id, user_id, role, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CompanyID,
		m.UserID,
		m.Role,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: user %s is already a member of company %s", apperrors.ErrDuplicate, m.UserID, m.CompanyID)
		}
		return fmt.Errorf("failed to add user %s to company %s: %w", m.UserID, m.CompanyID, err)
	}
	return nil
}

// FindCompanyUserRole returns the role of a user within a company, or
// ErrNotFound if the user is not a member.
func (r *PgxCompanyRepository) FindCompanyUserRole(ctx context.Context, companyID string, userID string) (domain.UserRole, error) {
	query := `SELECT role FROM company_users WHERE company_id = $1 AND user_id = $2;`

	var role string
	if err := r.Pool.QueryRow(ctx, query, companyID, userID).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", apperrors.NewAppError(500, "failed to find role for user "+userID+" in company "+companyID, err)
	}
	return domain.UserRole(role), nil
}
