package mapping

import (
	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/dairybooks/dairy_books_app/internal/models"
)

// ToModelLedger converts a domain Ledger to a model Ledger
func ToModelLedger(d domain.Ledger) models.Ledger {
	return models.Ledger{
		LedgerID:           d.LedgerID,
		CompanyID:          d.CompanyID,
		Name:               d.Name,
		Code:               d.Code,
		LedgerGroup:        models.LedgerGroup(d.Group),
		LedgerType:         models.LedgerType(d.Type),
		OpeningBalance:     d.OpeningBalance,
		OpeningBalanceType: string(d.OpeningBalanceType),
		Balance:            d.Balance,
		Description:        d.Description,
		IsActive:           d.IsActive,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLedger converts a model Ledger to a domain Ledger
func ToDomainLedger(m models.Ledger) domain.Ledger {
	return domain.Ledger{
		LedgerID:           m.LedgerID,
		CompanyID:          m.CompanyID,
		Name:               m.Name,
		Code:               m.Code,
		Group:              domain.LedgerGroup(m.LedgerGroup),
		Type:               domain.LedgerType(m.LedgerType),
		OpeningBalance:     m.OpeningBalance,
		OpeningBalanceType: domain.EntryDirection(m.OpeningBalanceType),
		Balance:            m.Balance,
		Description:        m.Description,
		IsActive:           m.IsActive,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLedgerSlice converts a slice of model Ledgers to domain Ledgers
func ToDomainLedgerSlice(ms []models.Ledger) []domain.Ledger {
	ds := make([]domain.Ledger, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLedger(m)
	}
	return ds
}
