package mapping

import (
	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/dairybooks/dairy_books_app/internal/models"
)

// ToModelVoucher converts a domain Voucher to a model Voucher
func ToModelVoucher(d domain.Voucher) models.Voucher {
	return models.Voucher{
		VoucherID:     d.VoucherID,
		CompanyID:     d.CompanyID,
		VoucherNumber: d.VoucherNumber,
		VoucherType:   string(d.VoucherType),
		VoucherDate:   d.VoucherDate,
		Narration:     d.Narration,
		PaymentMode:   d.PaymentMode,
		BankReference: d.BankReference,
		ReferenceType: d.ReferenceType,
		ReferenceID:   d.ReferenceID,
		PartyLedgerID: d.PartyLedgerID,
		Status:        models.VoucherStatus(d.Status),
		TotalDebit:    d.TotalDebit,
		TotalCredit:   d.TotalCredit,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainVoucher converts a model Voucher to a domain Voucher
func ToDomainVoucher(m models.Voucher) domain.Voucher {
	return domain.Voucher{
		VoucherID:     m.VoucherID,
		CompanyID:     m.CompanyID,
		VoucherNumber: m.VoucherNumber,
		VoucherType:   domain.VoucherType(m.VoucherType),
		VoucherDate:   m.VoucherDate,
		Narration:     m.Narration,
		PaymentMode:   m.PaymentMode,
		BankReference: m.BankReference,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		PartyLedgerID: m.PartyLedgerID,
		Status:        domain.VoucherStatus(m.Status),
		TotalDebit:    m.TotalDebit,
		TotalCredit:   m.TotalCredit,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelEntry converts a domain Entry to a model Entry
func ToModelEntry(d domain.Entry) models.Entry {
	return models.Entry{
		EntryID:        d.EntryID,
		VoucherID:      d.VoucherID,
		LedgerID:       d.LedgerID,
		Direction:      string(d.Direction),
		Amount:         d.Amount,
		Memo:           d.Memo,
		Classification: d.Classification,
		RunningBalance: d.RunningBalance,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainEntry converts a model Entry to a domain Entry
func ToDomainEntry(m models.Entry) domain.Entry {
	return domain.Entry{
		EntryID:        m.EntryID,
		VoucherID:      m.VoucherID,
		LedgerID:       m.LedgerID,
		Direction:      domain.EntryDirection(m.Direction),
		Amount:         m.Amount,
		Memo:           m.Memo,
		Classification: m.Classification,
		RunningBalance: m.RunningBalance,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainEntrySlice converts a slice of model Entries to domain Entries
func ToDomainEntrySlice(ms []models.Entry) []domain.Entry {
	ds := make([]domain.Entry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEntry(m)
	}
	return ds
}
