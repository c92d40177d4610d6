package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/dairybooks/dairy_books_app/internal/apperrors"
	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	portsrepo "github.com/dairybooks/dairy_books_app/internal/core/ports/repositories"
	"github.com/dairybooks/dairy_books_app/internal/models"
	"github.com/dairybooks/dairy_books_app/internal/utils/accounting"
	"github.com/dairybooks/dairy_books_app/internal/utils/mapping"
	"github.com/dairybooks/dairy_books_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const voucherColumns = `voucher_id, company_id, voucher_number, voucher_type, voucher_date, narration, payment_mode, bank_reference, reference_type, reference_id, party_ledger_id, status, total_debit, total_credit, created_at, created_by, last_updated_at, last_updated_by`

const entryColumns = `entry_id, voucher_id, ledger_id, direction, amount, memo, classification, running_balance, created_at, created_by, last_updated_at, last_updated_by`

type PgxVoucherRepository struct {
	BaseRepository
	ledgerRepo portsrepo.LedgerRepositoryFacade
}

// newPgxVoucherRepository creates a new repository for voucher and entry data.
func newPgxVoucherRepository(pool *pgxpool.Pool, ledgerRepo portsrepo.LedgerRepositoryFacade) portsrepo.VoucherRepositoryFacade {
	return &PgxVoucherRepository{
		BaseRepository: BaseRepository{Pool: pool},
		ledgerRepo:     ledgerRepo,
	}
}

var _ portsrepo.VoucherRepositoryFacade = (*PgxVoucherRepository)(nil)

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// SaveVoucher persists a voucher and its entries, claims the next voucher
// number, and applies the ledger balance deltas, all within one transaction.
// The assigned voucher number is written back into voucher.
func (r *PgxVoucherRepository) SaveVoucher(ctx context.Context, voucher *domain.Voucher, entries []domain.Entry, deltas map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Ignored if the transaction commits

	now := voucher.CreatedAt
	userID := voucher.CreatedBy

	// 1. Claim the next voucher number inside the transaction so numbering and
	// posting commit (or roll back) together.
	var voucherNumber int64
	if err := tx.QueryRow(ctx, `SELECT nextval('voucher_number_seq');`).Scan(&voucherNumber); err != nil {
		return apperrors.NewAppError(500, "failed to claim voucher number", err)
	}
	voucher.VoucherNumber = voucherNumber

	// 2. Insert the voucher header
	m := mapping.ToModelVoucher(*voucher)
	headerQuery := `
		INSERT INTO vouchers (` + voucherColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err = tx.Exec(ctx, headerQuery,
		m.VoucherID,
		m.CompanyID,
		m.VoucherNumber,
		m.VoucherType,
		m.VoucherDate,
		m.Narration,
		nullable(m.PaymentMode),
		nullable(m.BankReference),
		nullable(m.ReferenceType),
		nullable(m.ReferenceID),
		nullable(m.PartyLedgerID),
		m.Status,
		m.TotalDebit,
		m.TotalCredit,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: voucher %s already exists", apperrors.ErrConflict, m.VoucherID)
		}
		return apperrors.NewAppError(500, "failed to insert voucher "+m.VoucherID, err)
	}

	// 3. Lock the affected ledgers in sorted ID order and read their balances
	ledgerIDs := make([]string, 0, len(deltas))
	for id := range deltas {
		ledgerIDs = append(ledgerIDs, id)
	}
	lockedLedgers, err := r.ledgerRepo.FindLedgersByIDsForUpdate(ctx, tx, ledgerIDs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to lock ledgers for update", err)
	}

	// 4. Apply the balance deltas
	if err := r.ledgerRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to apply ledger balance deltas", err)
	}

	// 5. Insert the entries with running balances computed from the balances
	// read under lock
	if err := r.insertEntriesInTx(ctx, tx, entries, lockedLedgers, userID, now); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction for voucher "+m.VoucherID, err)
	}
	return nil
}

// insertEntriesInTx batch-inserts entries, stamping each with the ledger's
// running balance after that entry. Balances start from the locked rows.
func (r *PgxVoucherRepository) insertEntriesInTx(ctx context.Context, tx pgx.Tx, entries []domain.Entry, lockedLedgers map[string]domain.Ledger, userID string, now time.Time) error {
	entryQuery := `
		INSERT INTO entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`

	runningBalances := make(map[string]decimal.Decimal, len(lockedLedgers))
	for id, ledger := range lockedLedgers {
		runningBalances[id] = ledger.Balance // balance before this voucher's changes
	}

	// Deterministic order for running balance computation
	sorted := make([]domain.Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EntryID < sorted[j].EntryID
	})

	batch := &pgx.Batch{}
	for _, entry := range sorted {
		ledger, ok := lockedLedgers[entry.LedgerID]
		if !ok {
			return apperrors.NewAppError(500, "internal error: locked ledger "+entry.LedgerID+" missing during entry processing", nil)
		}

		signedAmount, err := accounting.CalculateSignedAmount(entry, ledger.Type)
		if err != nil {
			return apperrors.NewAppError(500, "failed to calculate signed amount for entry "+entry.EntryID, err)
		}
		newRunning := runningBalances[entry.LedgerID].Add(signedAmount)
		runningBalances[entry.LedgerID] = newRunning

		me := mapping.ToModelEntry(entry)
		me.RunningBalance = newRunning
		me.CreatedAt = now
		me.CreatedBy = userID
		me.LastUpdatedAt = now
		me.LastUpdatedBy = userID

		batch.Queue(entryQuery,
			me.EntryID,
			me.VoucherID,
			me.LedgerID,
			me.Direction,
			me.Amount,
			me.Memo,
			nullable(me.Classification),
			me.RunningBalance,
			me.CreatedAt,
			me.CreatedBy,
			me.LastUpdatedAt,
			me.LastUpdatedBy,
		)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute entry insert batch", err)
	}
	return nil
}

// lockVoucherForWrite locks the voucher row so no concurrent reversal or edit
// can change its entries until this transaction ends, then checks that it is
// still POSTED.
func (r *PgxVoucherRepository) lockVoucherForWrite(ctx context.Context, tx pgx.Tx, voucherID string) error {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM vouchers WHERE voucher_id = $1 FOR UPDATE;`, voucherID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock voucher "+voucherID, err)
	}
	if models.VoucherStatus(status) != models.Posted {
		return fmt.Errorf("%w: voucher %s is not in POSTED status", apperrors.ErrConflict, voucherID)
	}
	return nil
}

// inverseDeltas computes the negated balance effect of already-posted entries,
// using the ledger types read under lock in the same transaction.
func inverseDeltas(entries []domain.Entry, ledgers map[string]domain.Ledger) (map[string]decimal.Decimal, error) {
	deltas := make(map[string]decimal.Decimal)
	for _, entry := range entries {
		ledger, ok := ledgers[entry.LedgerID]
		if !ok {
			return nil, fmt.Errorf("%w: ledger %s referenced by posted entry %s is missing", apperrors.ErrIntegrity, entry.LedgerID, entry.EntryID)
		}
		signedAmount, err := accounting.CalculateSignedAmount(entry, ledger.Type)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to calculate signed amount for entry "+entry.EntryID, err)
		}
		deltas[entry.LedgerID] = deltas[entry.LedgerID].Sub(signedAmount)
	}
	return deltas, nil
}

func entryLedgerIDs(entries []domain.Entry, extra map[string]decimal.Decimal) []string {
	idSet := make(map[string]bool)
	for _, e := range entries {
		idSet[e.LedgerID] = true
	}
	for id := range extra {
		idSet[id] = true
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	return ids
}

// CancelVoucher marks a POSTED voucher CANCELLED and undoes its entries'
// balance effect within one transaction. The entries and the inverse deltas
// are read and computed under the voucher row lock, so a concurrent edit
// cannot leave a stale entry set to be reversed.
func (r *PgxVoucherRepository) CancelVoucher(ctx context.Context, voucherID string, userID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.lockVoucherForWrite(ctx, tx, voucherID); err != nil {
		return err
	}

	entries, err := r.findEntriesByVoucherIDQuerier(ctx, tx, voucherID)
	if err != nil {
		return err
	}

	lockedLedgers, err := r.ledgerRepo.FindLedgersByIDsForUpdate(ctx, tx, entryLedgerIDs(entries, nil))
	if err != nil {
		// A posted voucher referencing a missing ledger row means the store
		// has lost an invariant, not that the caller passed a bad ID.
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: voucher %s references missing ledger rows: %v", apperrors.ErrIntegrity, voucherID, err)
		}
		return apperrors.NewAppError(500, "failed to lock ledgers for reversal", err)
	}

	deltas, err := inverseDeltas(entries, lockedLedgers)
	if err != nil {
		return err
	}

	if err := r.ledgerRepo.ApplyBalanceDeltasInTx(ctx, tx, deltas, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to apply reversal balance deltas", err)
	}

	statusQuery := `
		UPDATE vouchers
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE voucher_id = $1;
	`
	if _, err := tx.Exec(ctx, statusQuery, voucherID, models.Cancelled, now, userID); err != nil {
		return apperrors.NewAppError(500, "failed to mark voucher cancelled "+voucherID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit reversal for voucher "+voucherID, err)
	}
	return nil
}

// ReplaceVoucher reverses the old entries and posts the new ones for an
// existing voucher in one transaction, keeping the voucher's identity and
// number. The old entries and their inverse deltas are read and computed
// under the voucher row lock, never from caller-supplied state.
func (r *PgxVoucherRepository) ReplaceVoucher(ctx context.Context, voucher *domain.Voucher, newEntries []domain.Entry, postDeltas map[string]decimal.Decimal) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	now := voucher.LastUpdatedAt
	userID := voucher.LastUpdatedBy

	if err := r.lockVoucherForWrite(ctx, tx, voucher.VoucherID); err != nil {
		return err
	}

	oldEntries, err := r.findEntriesByVoucherIDQuerier(ctx, tx, voucher.VoucherID)
	if err != nil {
		return err
	}

	// Lock the union of all affected ledgers up front, in sorted ID order
	lockedLedgers, err := r.ledgerRepo.FindLedgersByIDsForUpdate(ctx, tx, entryLedgerIDs(oldEntries, postDeltas))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: voucher %s references missing ledger rows: %v", apperrors.ErrIntegrity, voucher.VoucherID, err)
		}
		return apperrors.NewAppError(500, "failed to lock ledgers for edit", err)
	}

	reverseDeltas, err := inverseDeltas(oldEntries, lockedLedgers)
	if err != nil {
		return err
	}

	// 1. Undo the old entries' balance effect
	if err := r.ledgerRepo.ApplyBalanceDeltasInTx(ctx, tx, reverseDeltas, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to reverse old balance deltas", err)
	}

	// 2. Remove the old entries
	if _, err := tx.Exec(ctx, `DELETE FROM entries WHERE voucher_id = $1;`, voucher.VoucherID); err != nil {
		return apperrors.NewAppError(500, "failed to delete old entries for voucher "+voucher.VoucherID, err)
	}

	// 3. Update the header; the row is already locked and checked POSTED
	m := mapping.ToModelVoucher(*voucher)
	headerQuery := `
		UPDATE vouchers
		SET voucher_type = $2, voucher_date = $3, narration = $4, payment_mode = $5,
		    bank_reference = $6, reference_type = $7, reference_id = $8, party_ledger_id = $9,
		    total_debit = $10, total_credit = $11, last_updated_at = $12, last_updated_by = $13
		WHERE voucher_id = $1;
	`
	_, err = tx.Exec(ctx, headerQuery,
		m.VoucherID,
		m.VoucherType,
		m.VoucherDate,
		m.Narration,
		nullable(m.PaymentMode),
		nullable(m.BankReference),
		nullable(m.ReferenceType),
		nullable(m.ReferenceID),
		nullable(m.PartyLedgerID),
		m.TotalDebit,
		m.TotalCredit,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update voucher header "+m.VoucherID, err)
	}

	// 4. Apply the new entries' balance effect
	if err := r.ledgerRepo.ApplyBalanceDeltasInTx(ctx, tx, postDeltas, userID, now); err != nil {
		return apperrors.NewAppError(500, "failed to apply new balance deltas", err)
	}

	// 5. Insert the new entries. Running balances start from the locked
	// balances adjusted by the reversal, since the reversal logically precedes
	// the repost.
	adjusted := make(map[string]domain.Ledger, len(lockedLedgers))
	for id, ledger := range lockedLedgers {
		if delta, ok := reverseDeltas[id]; ok {
			ledger.Balance = ledger.Balance.Add(delta)
		}
		adjusted[id] = ledger
	}
	if err := r.insertEntriesInTx(ctx, tx, newEntries, adjusted, userID, now); err != nil {
		return err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return apperrors.NewAppError(500, "failed to commit edit for voucher "+m.VoucherID, err)
	}
	return nil
}

func scanVoucher(row pgx.Row) (*models.Voucher, error) {
	var m models.Voucher
	var paymentMode, bankRef, refType, refID, partyLedgerID sql.NullString
	err := row.Scan(
		&m.VoucherID,
		&m.CompanyID,
		&m.VoucherNumber,
		&m.VoucherType,
		&m.VoucherDate,
		&m.Narration,
		&paymentMode,
		&bankRef,
		&refType,
		&refID,
		&partyLedgerID,
		&m.Status,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.PaymentMode = paymentMode.String
	m.BankReference = bankRef.String
	m.ReferenceType = refType.String
	m.ReferenceID = refID.String
	m.PartyLedgerID = partyLedgerID.String
	return &m, nil
}

// FindVoucherByID retrieves a voucher header by its ID.
func (r *PgxVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE voucher_id = $1;`

	m, err := scanVoucher(r.Pool.QueryRow(ctx, query, voucherID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find voucher by ID "+voucherID, err)
	}

	voucher := mapping.ToDomainVoucher(*m)
	return &voucher, nil
}

func scanEntry(rows pgx.Rows) (*models.Entry, error) {
	var m models.Entry
	var memo, classification sql.NullString
	err := rows.Scan(
		&m.EntryID,
		&m.VoucherID,
		&m.LedgerID,
		&m.Direction,
		&m.Amount,
		&memo,
		&classification,
		&m.RunningBalance,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.Memo = memo.String
	m.Classification = classification.String
	return &m, nil
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, so entry reads can
// run either standalone or inside a write transaction.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// FindEntriesByVoucherID retrieves all entries of a single voucher.
func (r *PgxVoucherRepository) FindEntriesByVoucherID(ctx context.Context, voucherID string) ([]domain.Entry, error) {
	return r.findEntriesByVoucherIDQuerier(ctx, r.Pool, voucherID)
}

func (r *PgxVoucherRepository) findEntriesByVoucherIDQuerier(ctx context.Context, q rowQuerier, voucherID string) ([]domain.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE voucher_id = $1 ORDER BY entry_id;`

	rows, err := q.Query(ctx, query, voucherID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for voucher "+voucherID, err)
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row for voucher "+voucherID, err)
		}
		entries = append(entries, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows for voucher "+voucherID, err)
	}

	return mapping.ToDomainEntrySlice(entries), nil
}

// FindEntriesByVoucherIDs retrieves entries for multiple vouchers, grouped by voucher ID.
func (r *PgxVoucherRepository) FindEntriesByVoucherIDs(ctx context.Context, voucherIDs []string) (map[string][]domain.Entry, error) {
	if len(voucherIDs) == 0 {
		return map[string][]domain.Entry{}, nil
	}

	query := `SELECT ` + entryColumns + ` FROM entries WHERE voucher_id = ANY($1) ORDER BY voucher_id, entry_id;`

	rows, err := r.Pool.Query(ctx, query, voucherIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries for vouchers", err)
	}
	defer rows.Close()

	grouped := make(map[string][]domain.Entry)
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row", err)
		}
		grouped[m.VoucherID] = append(grouped[m.VoucherID], mapping.ToDomainEntry(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows", err)
	}

	return grouped, nil
}

// ListVouchersByCompany retrieves a paginated, filtered list of vouchers using
// token-based pagination, newest first.
func (r *PgxVoucherRepository) ListVouchersByCompany(ctx context.Context, companyID string, filter portsrepo.ListVouchersFilter, limit int, nextToken *string) ([]domain.Voucher, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra row to learn whether a next page exists
	fetchLimit := limit + 1

	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE company_id = $1`
	args := []interface{}{companyID}

	if filter.VoucherType != nil {
		args = append(args, string(*filter.VoucherType))
		query += ` AND voucher_type = $` + strconv.Itoa(len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	if filter.FromDate != nil {
		args = append(args, *filter.FromDate)
		query += ` AND voucher_date >= $` + strconv.Itoa(len(args))
	}
	if filter.ToDate != nil {
		args = append(args, *filter.ToDate)
		query += ` AND voucher_date <= $` + strconv.Itoa(len(args))
	}

	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastDate, lastCreatedAt)
		query += ` AND (voucher_date, created_at) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, fetchLimit)
	query += ` ORDER BY voucher_date DESC, created_at DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query vouchers for company "+companyID, err)
	}
	defer rows.Close()

	vouchers := []models.Voucher{}
	for rows.Next() {
		m, err := scanVoucher(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan voucher row", err)
		}
		vouchers = append(vouchers, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating voucher rows", err)
	}

	var nextTokenVal *string
	if len(vouchers) > limit {
		last := vouchers[limit-1] // last item actually included in this page
		token := pagination.EncodeToken(last.VoucherDate, last.CreatedAt)
		nextTokenVal = &token
		vouchers = vouchers[:limit]
	}

	result := make([]domain.Voucher, len(vouchers))
	for i, m := range vouchers {
		result[i] = mapping.ToDomainVoucher(m)
	}
	return result, nextTokenVal, nil
}
