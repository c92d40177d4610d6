package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	portsrepo "github.com/dairybooks/dairy_books_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepositoryFacade interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepositoryFacade {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ReportingRepositoryFacade = (*reportingRepository)(nil)

// SignedEntrySumBefore returns the signed sum of all posted entries against
// the ledger strictly before the given date. Entries on the ledger's normal
// side count positive, the opposite side negative.
func (r *reportingRepository) SignedEntrySumBefore(ctx context.Context, ledger domain.Ledger, before time.Time) (decimal.Decimal, error) {
	normalSide := string(domain.NormalSide(ledger.Type))

	query := `
		SELECT COALESCE(SUM(CASE WHEN e.direction = $1 THEN e.amount ELSE -e.amount END), 0)
		FROM entries e
		JOIN vouchers v ON e.voucher_id = v.voucher_id
		WHERE e.ledger_id = $2
			AND v.voucher_date < $3
			AND v.status = 'POSTED'
	`

	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, normalSide, ledger.LedgerID, before).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("error summing entries before %s for ledger %s: %w", before.Format("2006-01-02"), ledger.LedgerID, err)
	}
	return sum, nil
}

// ListStatementLines returns posted entries for the ledger within the date
// range in chronological order, ties broken by voucher number, with running
// balances computed from the seed balance.
func (r *reportingRepository) ListStatementLines(ctx context.Context, ledger domain.Ledger, from, to time.Time, seedBalance decimal.Decimal, cursor *portsrepo.StatementCursor, limit int) ([]domain.StatementLine, error) {
	query := `
		SELECT e.entry_id, e.voucher_id, v.voucher_number, v.voucher_date, v.narration, e.direction, e.amount
		FROM entries e
		JOIN vouchers v ON e.voucher_id = v.voucher_id
		WHERE e.ledger_id = $1
			AND v.voucher_date >= $2
			AND v.voucher_date <= $3
			AND v.status = 'POSTED'
	`
	args := []interface{}{ledger.LedgerID, from, to}

	if cursor != nil {
		args = append(args, cursor.AfterDate, cursor.AfterVoucherNumber, cursor.AfterEntryID)
		query += ` AND (v.voucher_date, v.voucher_number, e.entry_id) > ($4, $5, $6)`
	}

	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY v.voucher_date ASC, v.voucher_number ASC, e.entry_id ASC LIMIT $%d;`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying statement lines for ledger %s: %w", ledger.LedgerID, err)
	}
	defer rows.Close()

	normalSide := domain.NormalSide(ledger.Type)
	running := seedBalance

	lines := []domain.StatementLine{}
	for rows.Next() {
		var line domain.StatementLine
		var direction string
		if err := rows.Scan(
			&line.EntryID,
			&line.VoucherID,
			&line.VoucherNumber,
			&line.Date,
			&line.Narration,
			&direction,
			&line.Amount,
		); err != nil {
			return nil, fmt.Errorf("error scanning statement line: %w", err)
		}
		line.Direction = domain.EntryDirection(direction)
		if line.Direction == normalSide {
			running = running.Add(line.Amount)
		} else {
			running = running.Sub(line.Amount)
		}
		line.RunningBalance = running
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating statement lines: %w", err)
	}

	return lines, nil
}

// OutstandingByClassification aggregates posted entries against the ledger by
// their classification tag, netted by direction against the normal side.
// Entries without a classification are grouped under the empty tag.
func (r *reportingRepository) OutstandingByClassification(ctx context.Context, ledger domain.Ledger) (map[string]domain.OutstandingSummary, error) {
	normalSide := domain.NormalSide(ledger.Type)

	query := `
		SELECT COALESCE(e.classification, ''), e.entry_id, e.voucher_id, v.voucher_number, v.voucher_date, e.direction, e.amount
		FROM entries e
		JOIN vouchers v ON e.voucher_id = v.voucher_id
		WHERE e.ledger_id = $1
			AND v.status = 'POSTED'
		ORDER BY v.voucher_date ASC, v.voucher_number ASC, e.entry_id ASC;
	`

	rows, err := r.Pool.Query(ctx, query, ledger.LedgerID)
	if err != nil {
		return nil, fmt.Errorf("error querying outstanding entries for ledger %s: %w", ledger.LedgerID, err)
	}
	defer rows.Close()

	summaries := make(map[string]domain.OutstandingSummary)
	for rows.Next() {
		var tag, direction string
		var entry domain.OutstandingEntry
		if err := rows.Scan(
			&tag,
			&entry.EntryID,
			&entry.VoucherID,
			&entry.VoucherNumber,
			&entry.Date,
			&direction,
			&entry.Amount,
		); err != nil {
			return nil, fmt.Errorf("error scanning outstanding entry: %w", err)
		}
		entry.Direction = domain.EntryDirection(direction)

		summary := summaries[tag]
		if entry.Direction == normalSide {
			summary.Amount = summary.Amount.Add(entry.Amount)
		} else {
			summary.Amount = summary.Amount.Sub(entry.Amount)
		}
		summary.Entries = append(summary.Entries, entry)
		summaries[tag] = summary
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outstanding entries: %w", err)
	}

	return summaries, nil
}
