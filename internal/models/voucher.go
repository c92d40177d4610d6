package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherStatus indicates the state of a voucher.
type VoucherStatus string

const (
	Draft     VoucherStatus = "DRAFT"
	Posted    VoucherStatus = "POSTED"
	Cancelled VoucherStatus = "CANCELLED"
)

// Voucher represents a transaction header row.
type Voucher struct {
	VoucherID     string          `db:"voucher_id"`
	CompanyID     string          `db:"company_id"`
	VoucherNumber int64           `db:"voucher_number"`
	VoucherType   string          `db:"voucher_type"`
	VoucherDate   time.Time       `db:"voucher_date"`
	Narration     string          `db:"narration"`
	PaymentMode   string          `db:"payment_mode"`   // Nullable
	BankReference string          `db:"bank_reference"` // Nullable
	ReferenceType string          `db:"reference_type"` // Nullable
	ReferenceID   string          `db:"reference_id"`   // Nullable
	PartyLedgerID string          `db:"party_ledger_id"` // Nullable
	Status        VoucherStatus   `db:"status"`
	TotalDebit    decimal.Decimal `db:"total_debit"`
	TotalCredit   decimal.Decimal `db:"total_credit"`
	AuditFields
}

// Entry represents one voucher line row.
type Entry struct {
	EntryID        string          `db:"entry_id"`
	VoucherID      string          `db:"voucher_id"`
	LedgerID       string          `db:"ledger_id"`
	Direction      string          `db:"direction"`
	Amount         decimal.Decimal `db:"amount"`
	Memo           string          `db:"memo"`
	Classification string          `db:"classification"` // Nullable
	RunningBalance decimal.Decimal `db:"running_balance"`
	AuditFields
}
