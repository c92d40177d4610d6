package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementLine is one row of a ledger statement: an entry in chronological
// order with the ledger's running balance after it.
type StatementLine struct {
	EntryID        string          `json:"entryID"`
	VoucherID      string          `json:"voucherID"`
	VoucherNumber  int64           `json:"voucherNumber"`
	Date           time.Time       `json:"date"`
	Narration      string          `json:"narration"`
	Direction      EntryDirection  `json:"direction"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// OutstandingEntry identifies one entry contributing to an outstanding total.
type OutstandingEntry struct {
	EntryID       string          `json:"entryID"`
	VoucherID     string          `json:"voucherID"`
	VoucherNumber int64           `json:"voucherNumber"`
	Date          time.Time       `json:"date"`
	Direction     EntryDirection  `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
}

// OutstandingSummary aggregates the unreversed entries of one classification
// tag against a party ledger. Purely additive; no business-rule interpretation.
type OutstandingSummary struct {
	Amount  decimal.Decimal    `json:"amount"` // Signed, normal-side positive for the party ledger
	Entries []OutstandingEntry `json:"entries"`
}
