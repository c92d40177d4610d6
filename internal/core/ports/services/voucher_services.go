package services

import (
	"context"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/dairybooks/dairy_books_app/internal/dto"
)

// VoucherSvcFacade defines the posting, reversal and query operations on vouchers.
type VoucherSvcFacade interface {
	// PostVoucher validates the draft, assigns the next voucher number and
	// atomically writes the voucher, its entries and the ledger balance deltas.
	PostVoucher(ctx context.Context, companyID string, req dto.CreateVoucherRequest, creatorUserID string) (*domain.Voucher, error)

	// ReverseVoucher marks a POSTED voucher CANCELLED and applies the exact
	// inverse balance deltas. Reversing a voucher that is not POSTED fails
	// with a conflict error.
	ReverseVoucher(ctx context.Context, companyID string, voucherID string, reverserUserID string) (*domain.Voucher, error)

	// EditVoucher atomically reverses the old entries and posts the new ones
	// under the same voucher identity and number.
	EditVoucher(ctx context.Context, companyID string, voucherID string, req dto.CreateVoucherRequest, updaterUserID string) (*domain.Voucher, error)

	GetVoucherByID(ctx context.Context, companyID string, voucherID string, requestingUserID string) (*domain.Voucher, error)
	ListVouchers(ctx context.Context, companyID string, requestingUserID string, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error)
}
