package dto

import (
	"time"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StatementParams holds query parameters for a ledger statement.
type StatementParams struct {
	FromDate  time.Time `form:"fromDate" time_format:"2006-01-02" binding:"required"`
	ToDate    time.Time `form:"toDate" time_format:"2006-01-02" binding:"required"`
	Limit     int       `form:"limit"`
	NextToken *string   `form:"nextToken"`
}

// StatementLineResponse is one row of a ledger statement.
type StatementLineResponse struct {
	EntryID        string                `json:"entryID"`
	VoucherID      string                `json:"voucherID"`
	VoucherNumber  int64                 `json:"voucherNumber"`
	Date           time.Time             `json:"date"`
	Narration      string                `json:"narration"`
	Direction      domain.EntryDirection `json:"direction"`
	Amount         decimal.Decimal       `json:"amount"`
	RunningBalance decimal.Decimal       `json:"runningBalance"`
}

// StatementResponse is the paginated statement payload. OpeningBalance is the
// ledger's signed balance as of the range start.
type StatementResponse struct {
	LedgerID       string                  `json:"ledgerID"`
	LedgerName     string                  `json:"ledgerName"`
	OpeningBalance decimal.Decimal         `json:"openingBalance"`
	Lines          []StatementLineResponse `json:"lines"`
	NextToken      *string                 `json:"nextToken,omitempty"`
}

// OutstandingEntryResponse identifies one contributing entry.
type OutstandingEntryResponse struct {
	EntryID       string                `json:"entryID"`
	VoucherID     string                `json:"voucherID"`
	VoucherNumber int64                 `json:"voucherNumber"`
	Date          time.Time             `json:"date"`
	Direction     domain.EntryDirection `json:"direction"`
	Amount        decimal.Decimal       `json:"amount"`
}

// OutstandingSummaryResponse aggregates one classification tag.
type OutstandingSummaryResponse struct {
	Amount  decimal.Decimal            `json:"amount"`
	Entries []OutstandingEntryResponse `json:"entries"`
}

// OutstandingResponse maps classification tag to its outstanding summary.
type OutstandingResponse struct {
	LedgerID    string                                `json:"ledgerID"`
	Outstanding map[string]OutstandingSummaryResponse `json:"outstanding"`
}

// ToStatementLineResponse converts a domain.StatementLine to its DTO.
func ToStatementLineResponse(l *domain.StatementLine) StatementLineResponse {
	return StatementLineResponse{
		EntryID:        l.EntryID,
		VoucherID:      l.VoucherID,
		VoucherNumber:  l.VoucherNumber,
		Date:           l.Date,
		Narration:      l.Narration,
		Direction:      l.Direction,
		Amount:         l.Amount,
		RunningBalance: l.RunningBalance,
	}
}

// ToStatementLineResponses converts a slice of domain.StatementLine to DTOs.
func ToStatementLineResponses(lines []domain.StatementLine) []StatementLineResponse {
	responses := make([]StatementLineResponse, len(lines))
	for i, l := range lines {
		responses[i] = ToStatementLineResponse(&l)
	}
	return responses
}

// ToOutstandingResponse converts the domain aggregation to its DTO.
func ToOutstandingResponse(ledgerID string, summaries map[string]domain.OutstandingSummary) OutstandingResponse {
	out := OutstandingResponse{
		LedgerID:    ledgerID,
		Outstanding: make(map[string]OutstandingSummaryResponse, len(summaries)),
	}
	for tag, s := range summaries {
		entries := make([]OutstandingEntryResponse, len(s.Entries))
		for i, e := range s.Entries {
			entries[i] = OutstandingEntryResponse{
				EntryID:       e.EntryID,
				VoucherID:     e.VoucherID,
				VoucherNumber: e.VoucherNumber,
				Date:          e.Date,
				Direction:     e.Direction,
				Amount:        e.Amount,
			}
		}
		out.Outstanding[tag] = OutstandingSummaryResponse{Amount: s.Amount, Entries: entries}
	}
	return out
}
