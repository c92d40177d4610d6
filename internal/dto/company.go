package dto

import (
	"time"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
)

// CreateCompanyRequest defines the data needed to create a new company.
type CreateCompanyRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CompanyResponse defines the data returned for a company.
type CompanyResponse struct {
	CompanyID   string    `json:"companyID"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ToCompanyResponse converts a domain.Company to CompanyResponse DTO
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:   c.CompanyID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

// ToListCompanyResponse converts a slice of domain.Company to CompanyResponse DTOs
func ToListCompanyResponse(companies []domain.Company) []CompanyResponse {
	res := make([]CompanyResponse, len(companies))
	for i, c := range companies {
		res[i] = ToCompanyResponse(&c)
	}
	return res
}
