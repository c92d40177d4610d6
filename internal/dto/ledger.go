package dto

import (
	"time"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLedgerRequest defines the data needed to create a new ledger.
type CreateLedgerRequest struct {
	Name               string                 `json:"name" binding:"required"`
	Code               string                 `json:"code"` // Optional short code
	Group              domain.LedgerGroup     `json:"group" binding:"required"`
	Type               domain.LedgerType      `json:"type" binding:"omitempty,oneof=ASSET LIABILITY EQUITY INCOME EXPENSE"` // Defaults from group if omitted
	OpeningBalance     decimal.Decimal        `json:"openingBalance"`
	OpeningBalanceType domain.EntryDirection  `json:"openingBalanceType" binding:"omitempty,oneof=DEBIT CREDIT"`
	Description        string                 `json:"description"`
}

// UpdateLedgerRequest defines the data allowed for updating a ledger.
// Use pointers to distinguish between zero-value updates and fields not provided.
// Group, type, and opening balance are immutable after creation; balance is
// owned by the posting engine.
type UpdateLedgerRequest struct {
	Name        *string `json:"name"`
	Code        *string `json:"code"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// LedgerResponse defines the data returned for a ledger.
type LedgerResponse struct {
	LedgerID           string                `json:"ledgerID"`
	Name               string                `json:"name"`
	Code               string                `json:"code,omitempty"`
	Group              domain.LedgerGroup    `json:"group"`
	Type               domain.LedgerType     `json:"type"`
	OpeningBalance     decimal.Decimal       `json:"openingBalance"`
	OpeningBalanceType domain.EntryDirection `json:"openingBalanceType"`
	Balance            decimal.Decimal       `json:"balance"`
	Description        string                `json:"description"`
	IsActive           bool                  `json:"isActive"`
	CreatedAt          time.Time             `json:"createdAt"`
	CreatedBy          string                `json:"createdBy"`
	LastUpdatedAt      time.Time             `json:"lastUpdatedAt"`
	LastUpdatedBy      string                `json:"lastUpdatedBy"`
}

// ToLedgerResponse converts a domain.Ledger to LedgerResponse DTO
func ToLedgerResponse(l *domain.Ledger) LedgerResponse {
	return LedgerResponse{
		LedgerID:           l.LedgerID,
		Name:               l.Name,
		Code:               l.Code,
		Group:              l.Group,
		Type:               l.Type,
		OpeningBalance:     l.OpeningBalance,
		OpeningBalanceType: l.OpeningBalanceType,
		Balance:            l.Balance,
		Description:        l.Description,
		IsActive:           l.IsActive,
		CreatedAt:          l.CreatedAt,
		CreatedBy:          l.CreatedBy,
		LastUpdatedAt:      l.LastUpdatedAt,
		LastUpdatedBy:      l.LastUpdatedBy,
	}
}

// ToListLedgerResponse converts a slice of domain.Ledger to LedgerResponse DTOs
func ToListLedgerResponse(ledgers []domain.Ledger) []LedgerResponse {
	res := make([]LedgerResponse, len(ledgers))
	for i, l := range ledgers {
		res[i] = ToLedgerResponse(&l)
	}
	return res
}
