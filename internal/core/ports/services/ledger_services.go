package services

import (
	"context"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/dairybooks/dairy_books_app/internal/dto"
)

// LedgerSvcFacade defines the service operations on ledgers.
type LedgerSvcFacade interface {
	CreateLedger(ctx context.Context, companyID string, req dto.CreateLedgerRequest, creatorUserID string) (*domain.Ledger, error)
	GetLedgerByID(ctx context.Context, companyID string, ledgerID string, requestingUserID string) (*domain.Ledger, error)
	GetLedgersByIDs(ctx context.Context, companyID string, ledgerIDs []string, requestingUserID string) (map[string]domain.Ledger, error)
	ListLedgers(ctx context.Context, companyID string, requestingUserID string, limit int, offset int, includeInactive bool) ([]domain.Ledger, error)
	UpdateLedger(ctx context.Context, companyID string, ledgerID string, req dto.UpdateLedgerRequest, updaterUserID string) (*domain.Ledger, error)
	DeactivateLedger(ctx context.Context, companyID string, ledgerID string, deactivatorUserID string) error
}
