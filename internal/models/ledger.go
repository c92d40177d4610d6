package models

import (
	"github.com/shopspring/decimal"
)

// LedgerType defines the fundamental accounting nature of a ledger.
type LedgerType string

// LedgerGroup is the fixed classification bucket of a ledger.
type LedgerGroup string

// Ledger represents an account row.
// Balance is maintained by the voucher engine via atomic increments only.
type Ledger struct {
	LedgerID           string          `db:"ledger_id"`
	CompanyID          string          `db:"company_id"`
	Name               string          `db:"name"`
	Code               string          `db:"code"` // Nullable
	LedgerGroup        LedgerGroup     `db:"ledger_group"`
	LedgerType         LedgerType      `db:"ledger_type"`
	OpeningBalance     decimal.Decimal `db:"opening_balance"`
	OpeningBalanceType string          `db:"opening_balance_type"`
	Balance            decimal.Decimal `db:"balance"`
	Description        string          `db:"description"`
	IsActive           bool            `db:"is_active"`
	AuditFields
}
