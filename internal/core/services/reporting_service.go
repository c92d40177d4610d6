package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/dairybooks/dairy_books_app/internal/apperrors"
	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	portsrepo "github.com/dairybooks/dairy_books_app/internal/core/ports/repositories"
	portssvc "github.com/dairybooks/dairy_books_app/internal/core/ports/services"
	"github.com/dairybooks/dairy_books_app/internal/dto"
	"github.com/dairybooks/dairy_books_app/internal/middleware"
	"github.com/dairybooks/dairy_books_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const (
	defaultStatementPageSize = 50
	maxStatementPageSize     = 200
	// exportPageSize is the batch size used when streaming a full statement
	// into an export file.
	exportPageSize = 500
)

// reportingService builds read models (statements, outstanding summaries)
// from posted entries. It never mutates ledger or voucher state.
type reportingService struct {
	reportingRepo portsrepo.ReportingRepositoryFacade
	ledgerRepo    portsrepo.LedgerReader
	companySvc    portssvc.CompanySvcFacade
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepositoryFacade, ledgerRepo portsrepo.LedgerReader, companySvc portssvc.CompanySvcFacade) portssvc.ReportingSvcFacade {
	return &reportingService{
		reportingRepo: reportingRepo,
		ledgerRepo:    ledgerRepo,
		companySvc:    companySvc,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// resolveLedger fetches the ledger and verifies it belongs to the company.
func (s *reportingService) resolveLedger(ctx context.Context, companyID string, ledgerID string) (*domain.Ledger, error) {
	ledger, err := s.ledgerRepo.FindLedgerByID(ctx, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger %s: %w", ledgerID, err)
	}
	if ledger.CompanyID != companyID {
		return nil, apperrors.ErrNotFound // Obscure existence
	}
	return ledger, nil
}

// GetStatement returns one page of a ledger statement. The first page seeds
// the running balance from the signed opening balance plus the signed sum of
// all posted entries before the range start; subsequent pages carry the
// balance forward inside the pagination token.
// Implements portssvc.ReportingSvcFacade
func (s *reportingService) GetStatement(ctx context.Context, companyID string, ledgerID string, params dto.StatementParams, requestingUserID string) (*dto.StatementResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for GetStatement", slog.String("user_id", requestingUserID), slog.String("company_id", companyID), slog.String("ledger_id", ledgerID), slog.String("error", err.Error()))
		return nil, err
	}

	if params.ToDate.Before(params.FromDate) {
		return nil, fmt.Errorf("%w: toDate must not be before fromDate", apperrors.ErrValidation)
	}

	ledger, err := s.resolveLedger(ctx, companyID, ledgerID)
	if err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultStatementPageSize
	} else if limit > maxStatementPageSize {
		limit = maxStatementPageSize
	}

	var cursor *portsrepo.StatementCursor
	var seedBalance decimal.Decimal
	if params.NextToken != nil && *params.NextToken != "" {
		afterDate, afterNumber, afterEntryID, balanceStr, err := pagination.DecodeStatementToken(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		seedBalance, err = decimal.NewFromString(balanceStr)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid nextToken balance: %v", apperrors.ErrValidation, err)
		}
		cursor = &portsrepo.StatementCursor{
			AfterDate:          afterDate,
			AfterVoucherNumber: afterNumber,
			AfterEntryID:       afterEntryID,
			RunningBalance:     seedBalance,
		}
	} else {
		priorSum, err := s.reportingRepo.SignedEntrySumBefore(ctx, *ledger, params.FromDate)
		if err != nil {
			logger.Error("Failed to compute statement seed balance", slog.String("error", err.Error()), slog.String("ledger_id", ledgerID))
			return nil, fmt.Errorf("failed to compute opening balance: %w", err)
		}
		seedBalance = ledger.SignedOpeningBalance().Add(priorSum)
	}

	lines, err := s.reportingRepo.ListStatementLines(ctx, *ledger, params.FromDate, params.ToDate, seedBalance, cursor, limit)
	if err != nil {
		logger.Error("Failed to list statement lines", slog.String("error", err.Error()), slog.String("ledger_id", ledgerID))
		return nil, fmt.Errorf("failed to retrieve statement: %w", err)
	}

	var nextToken *string
	if len(lines) == limit {
		last := lines[len(lines)-1]
		token := pagination.EncodeStatementToken(last.Date, last.VoucherNumber, last.EntryID, last.RunningBalance.String())
		nextToken = &token
	}

	resp := &dto.StatementResponse{
		LedgerID:       ledger.LedgerID,
		LedgerName:     ledger.Name,
		OpeningBalance: seedBalance,
		Lines:          dto.ToStatementLineResponses(lines),
		NextToken:      nextToken,
	}

	logger.Debug("Statement retrieved", slog.String("ledger_id", ledgerID), slog.Int("line_count", len(lines)))
	return resp, nil
}

// GetOutstandingByClassification aggregates posted entry amounts for a ledger
// grouped by classification tag, netted by direction against the ledger's
// normal side. Entries of cancelled vouchers are excluded.
// Implements portssvc.ReportingSvcFacade
func (s *reportingService) GetOutstandingByClassification(ctx context.Context, companyID string, ledgerID string, requestingUserID string) (map[string]domain.OutstandingSummary, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for GetOutstandingByClassification", slog.String("user_id", requestingUserID), slog.String("company_id", companyID), slog.String("ledger_id", ledgerID), slog.String("error", err.Error()))
		return nil, err
	}

	ledger, err := s.resolveLedger(ctx, companyID, ledgerID)
	if err != nil {
		return nil, err
	}

	summaries, err := s.reportingRepo.OutstandingByClassification(ctx, *ledger)
	if err != nil {
		logger.Error("Failed to aggregate outstanding entries", slog.String("error", err.Error()), slog.String("ledger_id", ledgerID))
		return nil, fmt.Errorf("failed to aggregate outstanding entries: %w", err)
	}

	logger.Debug("Outstanding summary retrieved", slog.String("ledger_id", ledgerID), slog.Int("classification_count", len(summaries)))
	return summaries, nil
}

// ExportStatementExcel renders the full statement for the range as an xlsx
// workbook. All pages are fetched; the export is not paginated.
// Implements portssvc.ReportingSvcFacade
func (s *reportingService) ExportStatementExcel(ctx context.Context, companyID string, ledgerID string, params dto.StatementParams, requestingUserID string) ([]byte, string, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for ExportStatementExcel", slog.String("user_id", requestingUserID), slog.String("company_id", companyID), slog.String("ledger_id", ledgerID), slog.String("error", err.Error()))
		return nil, "", err
	}

	if params.ToDate.Before(params.FromDate) {
		return nil, "", fmt.Errorf("%w: toDate must not be before fromDate", apperrors.ErrValidation)
	}

	ledger, err := s.resolveLedger(ctx, companyID, ledgerID)
	if err != nil {
		return nil, "", err
	}

	priorSum, err := s.reportingRepo.SignedEntrySumBefore(ctx, *ledger, params.FromDate)
	if err != nil {
		return nil, "", fmt.Errorf("failed to compute opening balance: %w", err)
	}
	openingBalance := ledger.SignedOpeningBalance().Add(priorSum)

	// Stream all pages into memory
	var allLines []domain.StatementLine
	seedBalance := openingBalance
	var cursor *portsrepo.StatementCursor
	for {
		lines, err := s.reportingRepo.ListStatementLines(ctx, *ledger, params.FromDate, params.ToDate, seedBalance, cursor, exportPageSize)
		if err != nil {
			return nil, "", fmt.Errorf("failed to retrieve statement for export: %w", err)
		}
		allLines = append(allLines, lines...)
		if len(lines) < exportPageSize {
			break
		}
		last := lines[len(lines)-1]
		seedBalance = last.RunningBalance
		cursor = &portsrepo.StatementCursor{
			AfterDate:          last.Date,
			AfterVoucherNumber: last.VoucherNumber,
			AfterEntryID:       last.EntryID,
			RunningBalance:     last.RunningBalance,
		}
	}

	data, err := buildStatementWorkbook(ledger, params, openingBalance, allLines)
	if err != nil {
		logger.Error("Failed to build statement workbook", slog.String("error", err.Error()), slog.String("ledger_id", ledgerID))
		return nil, "", fmt.Errorf("failed to build statement export: %w", err)
	}

	filename := fmt.Sprintf("statement_%s_%s_%s.xlsx", ledger.LedgerID, params.FromDate.Format("2006-01-02"), params.ToDate.Format("2006-01-02"))
	logger.Info("Statement exported", slog.String("ledger_id", ledgerID), slog.Int("line_count", len(allLines)))
	return data, filename, nil
}

// buildStatementWorkbook writes the statement into a single-sheet workbook.
func buildStatementWorkbook(ledger *domain.Ledger, params dto.StatementParams, openingBalance decimal.Decimal, lines []domain.StatementLine) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Statement"
	f.SetSheetName("Sheet1", sheet)

	if err := f.SetCellValue(sheet, "A1", fmt.Sprintf("Statement for %s", ledger.Name)); err != nil {
		return nil, err
	}
	f.SetCellValue(sheet, "A2", fmt.Sprintf("Period: %s to %s", params.FromDate.Format("2006-01-02"), params.ToDate.Format("2006-01-02")))
	f.SetCellValue(sheet, "A3", "Opening balance")
	f.SetCellValue(sheet, "B3", openingBalance.String())

	headers := []string{"Date", "Voucher No", "Narration", "Debit", "Credit", "Balance"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 5)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for i, line := range lines {
		row := i + 6
		debit, credit := "", ""
		if line.Direction == domain.Debit {
			debit = line.Amount.String()
		} else {
			credit = line.Amount.String()
		}
		values := []interface{}{
			line.Date.Format("2006-01-02"),
			line.VoucherNumber,
			line.Narration,
			debit,
			credit,
			line.RunningBalance.String(),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
