package domain

import (
	"github.com/shopspring/decimal"
)

// LedgerType defines the fundamental accounting nature of a ledger.
// It determines which side (debit or credit) increases the balance.
type LedgerType string

const (
	Asset     LedgerType = "ASSET"
	Liability LedgerType = "LIABILITY"
	Equity    LedgerType = "EQUITY"
	Income    LedgerType = "INCOME"
	Expense   LedgerType = "EXPENSE"
)

// LedgerGroup is the classification bucket a ledger belongs to.
// The set is fixed; groups are presentation/classification only and never
// influence posting mechanics.
type LedgerGroup string

const (
	GroupCashInHand         LedgerGroup = "CASH_IN_HAND"
	GroupBankAccounts       LedgerGroup = "BANK_ACCOUNTS"
	GroupSundryDebtors      LedgerGroup = "SUNDRY_DEBTORS"
	GroupSundryCreditors    LedgerGroup = "SUNDRY_CREDITORS"
	GroupSalesAccounts      LedgerGroup = "SALES_ACCOUNTS"
	GroupPurchaseAccounts   LedgerGroup = "PURCHASE_ACCOUNTS"
	GroupDirectExpenses     LedgerGroup = "DIRECT_EXPENSES"
	GroupIndirectExpenses   LedgerGroup = "INDIRECT_EXPENSES"
	GroupDirectIncomes      LedgerGroup = "DIRECT_INCOMES"
	GroupIndirectIncomes    LedgerGroup = "INDIRECT_INCOMES"
	GroupFixedAssets        LedgerGroup = "FIXED_ASSETS"
	GroupCurrentAssets      LedgerGroup = "CURRENT_ASSETS"
	GroupCurrentLiabilities LedgerGroup = "CURRENT_LIABILITIES"
	GroupCapitalAccount     LedgerGroup = "CAPITAL_ACCOUNT"
	GroupLoansAndAdvances   LedgerGroup = "LOANS_AND_ADVANCES"
	GroupInvestments        LedgerGroup = "INVESTMENTS"
	GroupDutiesAndTaxes     LedgerGroup = "DUTIES_AND_TAXES"
	GroupProvisions         LedgerGroup = "PROVISIONS"
	GroupReservesAndSurplus LedgerGroup = "RESERVES_AND_SURPLUS"
	GroupSuspense           LedgerGroup = "SUSPENSE"
	GroupStockInHand        LedgerGroup = "STOCK_IN_HAND"
)

// ledgerGroupTypes maps each classification group to its conventional ledger type.
var ledgerGroupTypes = map[LedgerGroup]LedgerType{
	GroupCashInHand:         Asset,
	GroupBankAccounts:       Asset,
	GroupSundryDebtors:      Asset,
	GroupSundryCreditors:    Liability,
	GroupSalesAccounts:      Income,
	GroupPurchaseAccounts:   Expense,
	GroupDirectExpenses:     Expense,
	GroupIndirectExpenses:   Expense,
	GroupDirectIncomes:      Income,
	GroupIndirectIncomes:    Income,
	GroupFixedAssets:        Asset,
	GroupCurrentAssets:      Asset,
	GroupCurrentLiabilities: Liability,
	GroupCapitalAccount:     Equity,
	GroupLoansAndAdvances:   Asset,
	GroupInvestments:        Asset,
	GroupDutiesAndTaxes:     Liability,
	GroupProvisions:         Liability,
	GroupReservesAndSurplus: Equity,
	GroupSuspense:           Asset,
	GroupStockInHand:        Asset,
}

// IsValid reports whether g is one of the fixed classification groups.
func (g LedgerGroup) IsValid() bool {
	_, ok := ledgerGroupTypes[g]
	return ok
}

// DefaultLedgerType returns the conventional ledger type for the group.
func (g LedgerGroup) DefaultLedgerType() (LedgerType, bool) {
	t, ok := ledgerGroupTypes[g]
	return t, ok
}

// Ledger represents a named account bucket with a running balance.
// Balance is signed: positive means "in the normal direction for this ledger's
// type". Only the voucher posting/reversal flow may change Balance.
type Ledger struct {
	LedgerID           string          `json:"ledgerID"`  // Primary Key (UUID)
	CompanyID          string          `json:"companyID"` // FK -> companies.company_id (NON-NULL)
	Name               string          `json:"name"`      // Unique within a company
	Code               string          `json:"code"`      // Optional short code, unique within a company when set
	Group              LedgerGroup     `json:"group"`
	Type               LedgerType      `json:"type"`
	OpeningBalance     decimal.Decimal `json:"openingBalance"`     // Non-negative magnitude
	OpeningBalanceType EntryDirection  `json:"openingBalanceType"` // DEBIT or CREDIT
	Balance            decimal.Decimal `json:"balance"`            // Signed, normal-side positive
	Description        string          `json:"description"`
	IsActive           bool            `json:"isActive"` // Ledgers are deactivated, never deleted
	AuditFields
}

// SignedOpeningBalance converts the opening magnitude + side into the signed
// representation used by Balance (normal-side positive).
func (l Ledger) SignedOpeningBalance() decimal.Decimal {
	if l.OpeningBalance.IsZero() {
		return decimal.Zero
	}
	if l.OpeningBalanceType == NormalSide(l.Type) {
		return l.OpeningBalance
	}
	return l.OpeningBalance.Neg()
}
