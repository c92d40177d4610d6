package services

import (
	"context"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	"github.com/dairybooks/dairy_books_app/internal/dto"
)

// ReportingSvcFacade defines read-model operations derived from posted entries.
type ReportingSvcFacade interface {
	// GetStatement returns the entries touching a ledger within the date range
	// in chronological order, each carrying the running balance after it.
	GetStatement(ctx context.Context, companyID string, ledgerID string, params dto.StatementParams, requestingUserID string) (*dto.StatementResponse, error)

	// GetOutstandingByClassification aggregates non-cancelled entry amounts for
	// a ledger grouped by classification tag, netted by direction.
	GetOutstandingByClassification(ctx context.Context, companyID string, ledgerID string, requestingUserID string) (map[string]domain.OutstandingSummary, error)

	// ExportStatementExcel renders the full statement for the range as an xlsx
	// workbook and returns the serialized bytes with a suggested file name.
	ExportStatementExcel(ctx context.Context, companyID string, ledgerID string, params dto.StatementParams, requestingUserID string) ([]byte, string, error)
}
