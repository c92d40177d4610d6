package dto

import (
	"time"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateEntryRequest defines one debit/credit line of a voucher draft.
type CreateEntryRequest struct {
	LedgerID       string                `json:"ledgerID" binding:"required"`
	Direction      domain.EntryDirection `json:"direction" binding:"required,oneof=DEBIT CREDIT"`
	Amount         decimal.Decimal       `json:"amount" binding:"required,dgt0"`
	Memo           string                `json:"memo"`
	Classification string                `json:"classification"` // Optional tag for outstanding aggregation
}

// CreateVoucherRequest defines the data needed to post a new voucher.
type CreateVoucherRequest struct {
	VoucherType   domain.VoucherType   `json:"voucherType" binding:"required,oneof=INCOME EXPENSE JOURNAL CONTRA SALES PURCHASE"`
	Date          time.Time            `json:"date" binding:"required"`
	Narration     string               `json:"narration" binding:"required"`
	PaymentMode   string               `json:"paymentMode"`
	BankReference string               `json:"bankReference"`
	ReferenceType string               `json:"referenceType"`
	ReferenceID   string               `json:"referenceID"`
	PartyLedgerID string               `json:"partyLedgerID"`
	Entries       []CreateEntryRequest `json:"entries" binding:"required,min=2,dive"`
}

// ListVouchersParams holds query parameters for listing vouchers.
type ListVouchersParams struct {
	Limit          int        `form:"limit"`
	NextToken      *string    `form:"nextToken"`
	VoucherType    *string    `form:"voucherType"`
	Status         *string    `form:"status"`
	FromDate       *time.Time `form:"fromDate" time_format:"2006-01-02"`
	ToDate         *time.Time `form:"toDate" time_format:"2006-01-02"`
	IncludeEntries bool       `form:"includeEntries"`
}

// EntryResponse defines the data returned for a voucher entry.
type EntryResponse struct {
	EntryID        string                `json:"entryID"`
	LedgerID       string                `json:"ledgerID"`
	Direction      domain.EntryDirection `json:"direction"`
	Amount         decimal.Decimal       `json:"amount"`
	Memo           string                `json:"memo,omitempty"`
	Classification string                `json:"classification,omitempty"`
	RunningBalance decimal.Decimal       `json:"runningBalance"`
}

// VoucherResponse defines the data returned for a voucher.
type VoucherResponse struct {
	VoucherID     string               `json:"voucherID"`
	VoucherNumber int64                `json:"voucherNumber"`
	VoucherType   domain.VoucherType   `json:"voucherType"`
	Date          time.Time            `json:"date"`
	Narration     string               `json:"narration"`
	PaymentMode   string               `json:"paymentMode,omitempty"`
	BankReference string               `json:"bankReference,omitempty"`
	ReferenceType string               `json:"referenceType,omitempty"`
	ReferenceID   string               `json:"referenceID,omitempty"`
	PartyLedgerID string               `json:"partyLedgerID,omitempty"`
	Status        domain.VoucherStatus `json:"status"`
	TotalDebit    decimal.Decimal      `json:"totalDebit"`
	TotalCredit   decimal.Decimal      `json:"totalCredit"`
	CreatedAt     time.Time            `json:"createdAt"`
	CreatedBy     string               `json:"createdBy"`
	Entries       []EntryResponse      `json:"entries,omitempty"`
}

// ListVouchersResponse is the paginated voucher listing payload.
type ListVouchersResponse struct {
	Vouchers  []VoucherResponse `json:"vouchers"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToEntryResponse converts a domain.Entry to EntryResponse DTO
func ToEntryResponse(e *domain.Entry) EntryResponse {
	return EntryResponse{
		EntryID:        e.EntryID,
		LedgerID:       e.LedgerID,
		Direction:      e.Direction,
		Amount:         e.Amount,
		Memo:           e.Memo,
		Classification: e.Classification,
		RunningBalance: e.RunningBalance,
	}
}

// ToEntryResponses converts a slice of domain.Entry to []EntryResponse.
func ToEntryResponses(entries []domain.Entry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToEntryResponse(&e)
	}
	return responses
}

// ToVoucherResponse converts a domain.Voucher to VoucherResponse DTO
func ToVoucherResponse(v *domain.Voucher) VoucherResponse {
	resp := VoucherResponse{
		VoucherID:     v.VoucherID,
		VoucherNumber: v.VoucherNumber,
		VoucherType:   v.VoucherType,
		Date:          v.VoucherDate,
		Narration:     v.Narration,
		PaymentMode:   v.PaymentMode,
		BankReference: v.BankReference,
		ReferenceType: v.ReferenceType,
		ReferenceID:   v.ReferenceID,
		PartyLedgerID: v.PartyLedgerID,
		Status:        v.Status,
		TotalDebit:    v.TotalDebit,
		TotalCredit:   v.TotalCredit,
		CreatedAt:     v.CreatedAt,
		CreatedBy:     v.CreatedBy,
	}
	if len(v.Entries) > 0 {
		resp.Entries = ToEntryResponses(v.Entries)
	}
	return resp
}
