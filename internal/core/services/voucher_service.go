package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dairybooks/dairy_books_app/internal/apperrors"
	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	portsrepo "github.com/dairybooks/dairy_books_app/internal/core/ports/repositories"
	portssvc "github.com/dairybooks/dairy_books_app/internal/core/ports/services"
	"github.com/dairybooks/dairy_books_app/internal/dto"
	"github.com/dairybooks/dairy_books_app/internal/middleware"
	"github.com/dairybooks/dairy_books_app/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

var (
	ErrVoucherMinLedgers = errors.New("voucher must affect at least two different ledgers")
	ErrLedgerNotFound    = errors.New("ledger not found")
	ErrVoucherNotPosted  = errors.New("voucher is not in POSTED status")
)

// voucherService provides the posting, reversal and edit operations on vouchers.
type voucherService struct {
	voucherRepo portsrepo.VoucherRepositoryFacade
	ledgerRepo  portsrepo.LedgerReader
	companySvc  portssvc.CompanySvcFacade
}

// NewVoucherService creates a new VoucherService.
func NewVoucherService(voucherRepo portsrepo.VoucherRepositoryFacade, ledgerRepo portsrepo.LedgerReader, companySvc portssvc.CompanySvcFacade) portssvc.VoucherSvcFacade {
	return &voucherService{
		voucherRepo: voucherRepo,
		ledgerRepo:  ledgerRepo,
		companySvc:  companySvc,
	}
}

var _ portssvc.VoucherSvcFacade = (*voucherService)(nil)

// prepareEntries converts request lines into domain entries, validates them,
// resolves and checks their ledgers, and computes the net balance delta per
// ledger. No mutation happens here: every check runs before any write.
func (s *voucherService) prepareEntries(ctx context.Context, companyID string, voucherID string, reqEntries []dto.CreateEntryRequest, userID string, now time.Time) ([]domain.Entry, map[string]decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entries := make([]domain.Entry, len(reqEntries))
	ledgerSet := make(map[string]bool)
	ledgerIDs := make([]string, 0, len(reqEntries))
	for i, entryReq := range reqEntries {
		entries[i] = domain.Entry{
			EntryID:        uuid.NewString(),
			VoucherID:      voucherID,
			LedgerID:       entryReq.LedgerID,
			Direction:      entryReq.Direction,
			Amount:         entryReq.Amount,
			Memo:           entryReq.Memo,
			Classification: entryReq.Classification,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
			// RunningBalance is calculated and set by the repository
		}
		if !ledgerSet[entryReq.LedgerID] {
			ledgerSet[entryReq.LedgerID] = true
			ledgerIDs = append(ledgerIDs, entryReq.LedgerID)
		}
	}

	if len(ledgerIDs) < 2 {
		return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrVoucherMinLedgers)
	}

	// Structural validation (entry count, positive amounts, debits == credits)
	if err := accounting.ValidateVoucherEntries(entries); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	// Resolve ledgers and validate them against the company
	ledgersMap, err := s.ledgerRepo.FindLedgersByIDs(ctx, ledgerIDs)
	if err != nil {
		logger.Error("Failed to fetch ledgers for voucher", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, nil, fmt.Errorf("failed to fetch ledgers: %w", err)
	}
	for _, id := range ledgerIDs {
		ledger, found := ledgersMap[id]
		if !found {
			return nil, nil, fmt.Errorf("%w: ID %s: %w", ErrLedgerNotFound, id, apperrors.ErrNotFound)
		}
		if ledger.CompanyID != companyID {
			logger.Warn("Ledger used in voucher belongs to a different company", slog.String("ledger_id", id), slog.String("ledger_company", ledger.CompanyID), slog.String("voucher_company", companyID))
			return nil, nil, fmt.Errorf("%w: ledger %s does not belong to company %s: %w", ErrLedgerNotFound, id, companyID, apperrors.ErrNotFound)
		}
		if !ledger.IsActive {
			return nil, nil, fmt.Errorf("%w: ledger %s is inactive", apperrors.ErrValidation, id)
		}
	}

	// Net balance delta per ledger, signed by the ledger's normal side
	deltas := make(map[string]decimal.Decimal)
	for _, entry := range entries {
		ledger := ledgersMap[entry.LedgerID]
		signedAmount, err := accounting.CalculateSignedAmount(entry, ledger.Type)
		if err != nil {
			logger.Error("Error calculating signed amount", slog.String("error", err.Error()), slog.String("entry_id", entry.EntryID))
			return nil, nil, fmt.Errorf("internal error calculating balance deltas: %w", err)
		}
		deltas[entry.LedgerID] = deltas[entry.LedgerID].Add(signedAmount)
	}

	return entries, deltas, nil
}

// PostVoucher validates the draft and atomically persists the voucher, its
// entries and the ledger balance deltas.
// Implements portssvc.VoucherSvcFacade
func (s *voucherService) PostVoucher(ctx context.Context, companyID string, req dto.CreateVoucherRequest, creatorUserID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for PostVoucher", slog.String("user_id", creatorUserID), slog.String("company_id", companyID), slog.String("error", err.Error()))
		return nil, err
	}

	if !req.VoucherType.IsValid() {
		return nil, fmt.Errorf("%w: invalid voucher type %s", apperrors.ErrValidation, req.VoucherType)
	}
	if req.Narration == "" {
		return nil, fmt.Errorf("%w: narration is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	voucherID := uuid.NewString()

	entries, deltas, err := s.prepareEntries(ctx, companyID, voucherID, req.Entries, creatorUserID, now)
	if err != nil {
		return nil, err
	}

	totalDebit, totalCredit := accounting.SumByDirection(entries)
	voucher := domain.Voucher{
		VoucherID:     voucherID,
		CompanyID:     companyID,
		VoucherType:   req.VoucherType,
		VoucherDate:   req.Date,
		Narration:     req.Narration,
		PaymentMode:   req.PaymentMode,
		BankReference: req.BankReference,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		PartyLedgerID: req.PartyLedgerID,
		Status:        domain.VoucherPosted,
		TotalDebit:    totalDebit,
		TotalCredit:   totalCredit,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	// The repository assigns the voucher number and applies the balance deltas
	// in the same transaction as the inserts.
	if err := s.voucherRepo.SaveVoucher(ctx, &voucher, entries, deltas); err != nil {
		logger.Error("Failed to save voucher", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to save voucher: %w", err)
	}

	logger.Info("Voucher posted successfully", slog.String("voucher_id", voucher.VoucherID), slog.Int64("voucher_number", voucher.VoucherNumber), slog.String("company_id", companyID))
	voucher.Entries = entries
	return &voucher, nil
}

// ReverseVoucher marks a POSTED voucher CANCELLED and applies the exact
// inverse balance deltas.
// Implements portssvc.VoucherSvcFacade
func (s *voucherService) ReverseVoucher(ctx context.Context, companyID string, voucherID string, reverserUserID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, reverserUserID, companyID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for ReverseVoucher", slog.String("user_id", reverserUserID), slog.String("company_id", companyID), slog.String("voucher_id", voucherID), slog.String("error", err.Error()))
		return nil, err
	}

	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find voucher for reversal", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		}
		return nil, fmt.Errorf("failed to find voucher %s: %w", voucherID, err)
	}
	if voucher.CompanyID != companyID {
		logger.Warn("Voucher found but belongs to different company", slog.String("voucher_id", voucherID), slog.String("voucher_company", voucher.CompanyID), slog.String("requested_company", companyID))
		return nil, apperrors.ErrNotFound // Obscure existence
	}
	if voucher.Status != domain.VoucherPosted {
		// Already reversed vouchers fail here too, making reversal idempotent
		// in the "second call errors, state unchanged" sense.
		return nil, fmt.Errorf("%w: voucher %s has status %s: %w", ErrVoucherNotPosted, voucherID, voucher.Status, apperrors.ErrConflict)
	}

	// The repository re-reads the entries and computes the inverse deltas under
	// a lock on the voucher row, so a concurrent edit or reversal cannot slip
	// in between this status check and the balance writes.
	now := time.Now().UTC()
	if err := s.voucherRepo.CancelVoucher(ctx, voucherID, reverserUserID, now); err != nil {
		logger.Error("Failed to cancel voucher", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		return nil, fmt.Errorf("failed to reverse voucher %s: %w", voucherID, err)
	}

	// Safe to read after the cancel commits: a cancelled voucher's entries are
	// immutable.
	entries, err := s.voucherRepo.FindEntriesByVoucherID(ctx, voucherID)
	if err != nil {
		logger.Error("Failed to fetch entries of reversed voucher", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		return nil, fmt.Errorf("failed to retrieve entries for voucher %s: %w", voucherID, err)
	}

	logger.Info("Voucher reversed successfully", slog.String("voucher_id", voucherID), slog.String("company_id", companyID))
	voucher.Status = domain.VoucherCancelled
	voucher.LastUpdatedAt = now
	voucher.LastUpdatedBy = reverserUserID
	voucher.Entries = entries
	return voucher, nil
}

// EditVoucher atomically replaces a posted voucher's entries: the old entries'
// balance effect is reversed and the new entries are posted under the same
// voucher identity and number, all in one transaction.
// Implements portssvc.VoucherSvcFacade
func (s *voucherService) EditVoucher(ctx context.Context, companyID string, voucherID string, req dto.CreateVoucherRequest, updaterUserID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, updaterUserID, companyID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for EditVoucher", slog.String("user_id", updaterUserID), slog.String("company_id", companyID), slog.String("voucher_id", voucherID), slog.String("error", err.Error()))
		return nil, err
	}

	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		return nil, fmt.Errorf("failed to find voucher %s: %w", voucherID, err)
	}
	if voucher.CompanyID != companyID {
		return nil, apperrors.ErrNotFound // Obscure existence
	}
	if voucher.Status != domain.VoucherPosted {
		return nil, fmt.Errorf("%w: voucher %s has status %s: %w", ErrVoucherNotPosted, voucherID, voucher.Status, apperrors.ErrConflict)
	}

	if !req.VoucherType.IsValid() {
		return nil, fmt.Errorf("%w: invalid voucher type %s", apperrors.ErrValidation, req.VoucherType)
	}
	if req.Narration == "" {
		return nil, fmt.Errorf("%w: narration is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	newEntries, postDeltas, err := s.prepareEntries(ctx, companyID, voucherID, req.Entries, updaterUserID, now)
	if err != nil {
		return nil, err
	}

	totalDebit, totalCredit := accounting.SumByDirection(newEntries)
	updated := *voucher
	updated.VoucherType = req.VoucherType
	updated.VoucherDate = req.Date
	updated.Narration = req.Narration
	updated.PaymentMode = req.PaymentMode
	updated.BankReference = req.BankReference
	updated.ReferenceType = req.ReferenceType
	updated.ReferenceID = req.ReferenceID
	updated.PartyLedgerID = req.PartyLedgerID
	updated.TotalDebit = totalDebit
	updated.TotalCredit = totalCredit
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = updaterUserID

	// The old entries' inverse deltas are recomputed by the repository inside
	// the replace transaction, under a lock on the voucher row; computing them
	// here from a prior read would race with concurrent edits.
	if err := s.voucherRepo.ReplaceVoucher(ctx, &updated, newEntries, postDeltas); err != nil {
		logger.Error("Failed to replace voucher", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		return nil, fmt.Errorf("failed to edit voucher %s: %w", voucherID, err)
	}

	logger.Info("Voucher edited successfully", slog.String("voucher_id", voucherID), slog.Int64("voucher_number", updated.VoucherNumber), slog.String("company_id", companyID))
	updated.Entries = newEntries
	return &updated, nil
}

// GetVoucherByID retrieves a voucher with its entries.
// Implements portssvc.VoucherSvcFacade
func (s *voucherService) GetVoucherByID(ctx context.Context, companyID string, voucherID string, requestingUserID string) (*domain.Voucher, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for GetVoucherByID", slog.String("user_id", requestingUserID), slog.String("company_id", companyID), slog.String("voucher_id", voucherID), slog.String("error", err.Error()))
		return nil, err
	}

	voucher, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find voucher by ID", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		}
		return nil, fmt.Errorf("failed to find voucher by ID %s: %w", voucherID, err)
	}
	if voucher.CompanyID != companyID {
		logger.Warn("Voucher found but belongs to different company", slog.String("voucher_id", voucherID), slog.String("voucher_company", voucher.CompanyID), slog.String("requested_company", companyID))
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	entries, err := s.voucherRepo.FindEntriesByVoucherID(ctx, voucherID)
	if err != nil {
		logger.Error("Failed to fetch entries for voucher", slog.String("error", err.Error()), slog.String("voucher_id", voucherID))
		return nil, fmt.Errorf("failed to retrieve entries for voucher %s: %w", voucherID, err)
	}
	voucher.Entries = entries

	logger.Debug("Voucher and entries retrieved successfully", slog.String("voucher_id", voucherID), slog.Int("entry_count", len(entries)))
	return voucher, nil
}

// ListVouchers retrieves a paginated, filtered list of vouchers for a company.
// Implements portssvc.VoucherSvcFacade
func (s *voucherService) ListVouchers(ctx context.Context, companyID string, requestingUserID string, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for ListVouchers", "error", err)
		return nil, err
	}

	filter := portsrepo.ListVouchersFilter{
		FromDate: params.FromDate,
		ToDate:   params.ToDate,
	}
	if params.VoucherType != nil {
		vt := domain.VoucherType(*params.VoucherType)
		if !vt.IsValid() {
			return nil, fmt.Errorf("%w: invalid voucher type filter %s", apperrors.ErrValidation, *params.VoucherType)
		}
		filter.VoucherType = &vt
	}
	if params.Status != nil {
		st := domain.VoucherStatus(*params.Status)
		filter.Status = &st
	}

	vouchers, nextToken, err := s.voucherRepo.ListVouchersByCompany(ctx, companyID, filter, params.Limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list vouchers from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve vouchers: %w", err)
	}

	// If entries are requested, fetch them in a batch for all vouchers
	var entriesMap map[string][]domain.Entry
	if params.IncludeEntries && len(vouchers) > 0 {
		voucherIDs := make([]string, len(vouchers))
		for i, v := range vouchers {
			voucherIDs[i] = v.VoucherID
		}
		entriesMap, err = s.voucherRepo.FindEntriesByVoucherIDs(ctx, voucherIDs)
		if err != nil {
			logger.Warn("Failed to fetch entries for vouchers", "error", err)
			// Continue without entries rather than failing the whole request
		}
	}

	voucherResponses := make([]dto.VoucherResponse, len(vouchers))
	for i, v := range vouchers {
		if entriesMap != nil {
			v.Entries = entriesMap[v.VoucherID]
		} else {
			v.Entries = nil
		}
		voucherResponses[i] = dto.ToVoucherResponse(&v)
	}

	logger.Info("Vouchers listed successfully", "count", len(vouchers), "includeEntries", params.IncludeEntries)
	return &dto.ListVouchersResponse{
		Vouchers:  voucherResponses,
		NextToken: nextToken,
	}, nil
}
