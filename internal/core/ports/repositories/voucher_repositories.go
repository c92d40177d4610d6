package repositories

import (
	"context"
	"time"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ListVouchersFilter narrows a voucher listing.
type ListVouchersFilter struct {
	VoucherType *domain.VoucherType
	Status      *domain.VoucherStatus
	FromDate    *time.Time
	ToDate      *time.Time
}

// VoucherReader defines read operations for voucher data
type VoucherReader interface {
	// FindVoucherByID retrieves a voucher header by its unique identifier.
	FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// FindEntriesByVoucherID retrieves all entries of a single voucher.
	FindEntriesByVoucherID(ctx context.Context, voucherID string) ([]domain.Entry, error)

	// FindEntriesByVoucherIDs retrieves entries for multiple vouchers, grouped by voucher ID.
	FindEntriesByVoucherIDs(ctx context.Context, voucherIDs []string) (map[string][]domain.Entry, error)

	// ListVouchersByCompany retrieves a paginated, filtered list of vouchers
	// using token-based pagination. Returns the vouchers, a next-page token, and an error.
	ListVouchersByCompany(ctx context.Context, companyID string, filter ListVouchersFilter, limit int, nextToken *string) ([]domain.Voucher, *string, error)
}

// VoucherWriter defines the atomic write primitives of the posting engine.
// Each method is a single all-or-nothing unit: either every ledger delta and
// every row change becomes visible together, or none of it does.
type VoucherWriter interface {
	// SaveVoucher persists a voucher and its entries, assigns the voucher
	// number, and applies the balance deltas, all within one transaction.
	// The saved voucher (with its assigned number) is written back into voucher.
	SaveVoucher(ctx context.Context, voucher *domain.Voucher, entries []domain.Entry, deltas map[string]decimal.Decimal) error

	// CancelVoucher marks a POSTED voucher CANCELLED and applies the inverse of
	// its entries' balance effect within one transaction. The entries and their
	// deltas are read under a lock on the voucher row, so the reversal always
	// targets the entry set current at commit time. A voucher that is not
	// POSTED aborts with a conflict error; missing ledger rows abort with an
	// integrity error; inactive ledgers are permitted.
	CancelVoucher(ctx context.Context, voucherID string, userID string, now time.Time) error

	// ReplaceVoucher reverses the current entries and posts the new ones for a
	// POSTED voucher in one transaction: locks the voucher row, re-reads the
	// old entries and undoes their balance effect, deletes them, updates the
	// header, inserts newEntries and applies postDeltas. A voucher that is not
	// POSTED aborts with a conflict error.
	ReplaceVoucher(ctx context.Context, voucher *domain.Voucher, newEntries []domain.Entry, postDeltas map[string]decimal.Decimal) error
}

// VoucherRepositoryFacade combines all voucher-related repository interfaces.
type VoucherRepositoryFacade interface {
	VoucherReader
	VoucherWriter
}
