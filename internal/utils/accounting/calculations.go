package accounting

import (
	"fmt"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount applies the correct sign to an entry amount based on
// the ledger type and entry direction. Used by both services and repositories
// so the polarity convention lives in one place (domain.NormalSide).
//
// An entry on a ledger's normal side increases its balance (positive signed
// amount); an entry on the opposite side decreases it.
func CalculateSignedAmount(entry domain.Entry, ledgerType domain.LedgerType) (decimal.Decimal, error) {
	switch ledgerType {
	case domain.Asset, domain.Liability, domain.Equity, domain.Income, domain.Expense:
	default:
		return decimal.Zero, fmt.Errorf("unknown ledger type '%s' encountered for ledger ID %s", ledgerType, entry.LedgerID)
	}
	if entry.Direction == domain.NormalSide(ledgerType) {
		return entry.Amount, nil
	}
	return entry.Amount.Neg(), nil
}

// ValidateVoucherEntries checks the structural validity of a proposed set of
// voucher entries: at least two entries, every amount strictly positive, and
// total debits equal to total credits. All checks run before any mutation.
func ValidateVoucherEntries(entries []domain.Entry) error {
	if len(entries) < 2 {
		return fmt.Errorf("voucher must have at least two entries")
	}

	debitsSum := decimal.Zero
	creditsSum := decimal.Zero
	for _, e := range entries {
		if e.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("entry amount must be positive for ledger %s", e.LedgerID)
		}
		switch e.Direction {
		case domain.Debit:
			debitsSum = debitsSum.Add(e.Amount)
		case domain.Credit:
			creditsSum = creditsSum.Add(e.Amount)
		default:
			return fmt.Errorf("entry direction must be DEBIT or CREDIT for ledger %s", e.LedgerID)
		}
	}

	if !debitsSum.Equal(creditsSum) {
		return fmt.Errorf("voucher entries do not balance: debits sum is %s and credits sum is %s",
			debitsSum.String(), creditsSum.String())
	}
	return nil
}

// SumByDirection returns the debit and credit totals of a set of entries.
func SumByDirection(entries []domain.Entry) (debits decimal.Decimal, credits decimal.Decimal) {
	debits = decimal.Zero
	credits = decimal.Zero
	for _, e := range entries {
		if e.Direction == domain.Debit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits
}
