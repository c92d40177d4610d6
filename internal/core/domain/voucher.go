package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryDirection indicates whether an entry line is a Debit or a Credit.
type EntryDirection string

const (
	Debit  EntryDirection = "DEBIT"
	Credit EntryDirection = "CREDIT"
)

// Opposite returns the other direction.
func (d EntryDirection) Opposite() EntryDirection {
	if d == Debit {
		return Credit
	}
	return Debit
}

// NormalSide returns the direction that increases a ledger of the given type.
// This is the only place polarity is defined; every delta computation goes
// through it.
func NormalSide(t LedgerType) EntryDirection {
	switch t {
	case Asset, Expense:
		return Debit
	default: // Liability, Income, Equity
		return Credit
	}
}

// VoucherType classifies the business intent of a voucher. All types use the
// same balanced-entries posting mechanics.
type VoucherType string

const (
	VoucherIncome   VoucherType = "INCOME"
	VoucherExpense  VoucherType = "EXPENSE"
	VoucherJournal  VoucherType = "JOURNAL"
	VoucherContra   VoucherType = "CONTRA"
	VoucherSales    VoucherType = "SALES"
	VoucherPurchase VoucherType = "PURCHASE"
)

// IsValid reports whether t is a known voucher type.
func (t VoucherType) IsValid() bool {
	switch t {
	case VoucherIncome, VoucherExpense, VoucherJournal, VoucherContra, VoucherSales, VoucherPurchase:
		return true
	}
	return false
}

// VoucherStatus indicates the state of a voucher. Only POSTED vouchers affect
// ledger balances; a CANCELLED voucher's effects have already been reversed.
type VoucherStatus string

const (
	VoucherDraft     VoucherStatus = "DRAFT"
	VoucherPosted    VoucherStatus = "POSTED"
	VoucherCancelled VoucherStatus = "CANCELLED"
)

// Voucher represents a single balanced financial event composed of multiple
// debit/credit entries.
type Voucher struct {
	VoucherID     string          `json:"voucherID"`     // Primary Key (UUID)
	CompanyID     string          `json:"companyID"`     // FK -> companies.company_id (NON-NULL)
	VoucherNumber int64           `json:"voucherNumber"` // Sequence-assigned at posting, immutable
	VoucherType   VoucherType     `json:"voucherType"`
	VoucherDate   time.Time       `json:"voucherDate"`
	Narration     string          `json:"narration"`
	PaymentMode   string          `json:"paymentMode"`   // Optional (cash/bank/cheque/...)
	BankReference string          `json:"bankReference"` // Optional cheque/txn reference
	ReferenceType string          `json:"referenceType"` // Optional originating document kind (e.g. SALE)
	ReferenceID   string          `json:"referenceID"`   // Optional originating document id
	PartyLedgerID string          `json:"partyLedgerID"` // Optional counterpart party ledger
	Status        VoucherStatus   `json:"status"`
	TotalDebit    decimal.Decimal `json:"totalDebit"`
	TotalCredit   decimal.Decimal `json:"totalCredit"`
	AuditFields
	Entries []Entry `json:"entries,omitempty"` // Owned by the voucher
}

// Entry represents a single line within a voucher, affecting one ledger.
// Entries have no lifecycle outside their parent voucher.
type Entry struct {
	EntryID        string          `json:"entryID"`   // Primary Key (UUID)
	VoucherID      string          `json:"voucherID"` // FK -> Voucher.voucherID (Not Null)
	LedgerID       string          `json:"ledgerID"`  // FK -> Ledger.ledgerID (Not Null)
	Direction      EntryDirection  `json:"direction"` // DEBIT or CREDIT (Not Null)
	Amount         decimal.Decimal `json:"amount"`    // Positive value
	Memo           string          `json:"memo"`
	Classification string          `json:"classification"` // Optional tag for outstanding aggregation
	RunningBalance decimal.Decimal `json:"runningBalance"` // Ledger balance after this entry
	AuditFields
}
