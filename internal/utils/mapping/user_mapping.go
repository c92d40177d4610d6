package mapping

import (
	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/dairybooks/dairy_books_app/internal/models"
)

func ToModelUser(u domain.User) models.User {
	return models.User{
		UserID:       u.UserID,
		Username:     u.Username,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		AuditFields:  ToModelAuditFields(u.AuditFields),
	}
}

func ToDomainUser(u models.User) domain.User {
	return domain.User{
		UserID:       u.UserID,
		Username:     u.Username,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		AuditFields:  ToDomainAuditFields(u.AuditFields),
	}
}

func ToDomainUserSlice(users []models.User) []domain.User {
	res := make([]domain.User, len(users))
	for i, u := range users {
		res[i] = ToDomainUser(u)
	}
	return res
}

func ToModelCompany(c domain.Company) models.Company {
	return models.Company{
		CompanyID:   c.CompanyID,
		Name:        c.Name,
		Description: c.Description,
		AuditFields: ToModelAuditFields(c.AuditFields),
	}
}

func ToDomainCompany(c models.Company) domain.Company {
	return domain.Company{
		CompanyID:   c.CompanyID,
		Name:        c.Name,
		Description: c.Description,
		AuditFields: ToDomainAuditFields(c.AuditFields),
	}
}

func ToDomainCompanySlice(companies []models.Company) []domain.Company {
	res := make([]domain.Company, len(companies))
	for i, c := range companies {
		res[i] = ToDomainCompany(c)
	}
	return res
}

func ToModelCompanyUser(cu domain.CompanyUser) models.CompanyUser {
	return models.CompanyUser{
		CompanyID:   cu.CompanyID,
		UserID:      cu.UserID,
		Role:        string(cu.Role),
		AuditFields: ToModelAuditFields(cu.AuditFields),
	}
}

func ToDomainCompanyUser(cu models.CompanyUser) domain.CompanyUser {
	return domain.CompanyUser{
		CompanyID:   cu.CompanyID,
		UserID:      cu.UserID,
		Role:        domain.UserRole(cu.Role),
		AuditFields: ToDomainAuditFields(cu.AuditFields),
	}
}
