package repositories

import (
	"context"
	"time"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations for ledger data
type LedgerReader interface {
	// FindLedgerByID retrieves a specific ledger by its unique identifier.
	FindLedgerByID(ctx context.Context, ledgerID string) (*domain.Ledger, error)

	// FindLedgersByIDs retrieves multiple ledgers by their IDs.
	FindLedgersByIDs(ctx context.Context, ledgerIDs []string) (map[string]domain.Ledger, error)

	// ListLedgers retrieves a paginated list of ledgers for a given company.
	ListLedgers(ctx context.Context, companyID string, limit int, offset int, includeInactive bool) ([]domain.Ledger, error)
}

// LedgerWriter defines write operations for ledger data.
// Balance is deliberately absent here: it is only mutated through
// LedgerPostingSupport by the voucher engine.
type LedgerWriter interface {
	// SaveLedger persists a new ledger.
	SaveLedger(ctx context.Context, ledger domain.Ledger) error

	// UpdateLedger updates an existing ledger's editable details (name, code, description, status).
	UpdateLedger(ctx context.Context, ledger domain.Ledger) error

	// DeactivateLedger marks a ledger as inactive. Ledgers are never hard-deleted.
	DeactivateLedger(ctx context.Context, ledgerID string, userID string, now time.Time) error
}

// LedgerPostingSupport defines the balance-mutation primitives used by voucher
// posting and reversal. Both must be called inside a repository transaction.
type LedgerPostingSupport interface {
	// FindLedgersByIDsForUpdate selects ledgers and locks their rows for update,
	// acquiring locks in sorted ledger-id order to avoid deadlocks.
	FindLedgersByIDsForUpdate(ctx context.Context, tx pgx.Tx, ledgerIDs []string) (map[string]domain.Ledger, error)

	// ApplyBalanceDeltasInTx adjusts ledger balances with atomic increments
	// (balance = balance + delta) within the given transaction.
	ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, now time.Time) error
}

// LedgerRepositoryFacade combines all ledger-related repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
	LedgerPostingSupport
}
