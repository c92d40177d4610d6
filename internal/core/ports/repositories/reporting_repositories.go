package repositories

import (
	"context"
	"time"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StatementCursor positions a statement query after a previously returned
// line. The entry ID disambiguates lines of the same voucher against the same
// ledger, so a page boundary inside a voucher drops nothing.
type StatementCursor struct {
	AfterDate          time.Time
	AfterVoucherNumber int64
	AfterEntryID       string
	RunningBalance     decimal.Decimal
}

// ReportingRepositoryFacade defines the read-only projections over posted
// vouchers. Draft and cancelled vouchers are excluded from every aggregate.
type ReportingRepositoryFacade interface {
	// SignedEntrySumBefore returns the signed sum (normal-side positive for the
	// given ledger type) of all posted entries against the ledger strictly
	// before the given date.
	SignedEntrySumBefore(ctx context.Context, ledger domain.Ledger, before time.Time) (decimal.Decimal, error)

	// ListStatementLines returns posted entries for the ledger within the date
	// range in chronological order (ties broken by voucher number ascending),
	// with running balances computed from the seed balance. cursor is nil for
	// the first page.
	ListStatementLines(ctx context.Context, ledger domain.Ledger, from, to time.Time, seedBalance decimal.Decimal, cursor *StatementCursor, limit int) ([]domain.StatementLine, error)

	// OutstandingByClassification aggregates posted entries against the party
	// ledger by their classification tag.
	OutstandingByClassification(ctx context.Context, ledger domain.Ledger) (map[string]domain.OutstandingSummary, error)
}
