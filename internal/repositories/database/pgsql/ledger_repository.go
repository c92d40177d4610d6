package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dairybooks/dairy_books_app/internal/apperrors"
	"github.com/dairybooks/dairy_books_app/internal/core/domain"
	portsrepo "github.com/dairybooks/dairy_books_app/internal/core/ports/repositories"
	"github.com/dairybooks/dairy_books_app/internal/models"
	"github.com/dairybooks/dairy_books_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const ledgerColumns = `ledger_id, company_id, name, code, ledger_group, ledger_type, opening_balance, opening_balance_type, balance, description, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger data.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func scanLedger(row pgx.Row) (*models.Ledger, error) {
	var m models.Ledger
	var code, description sql.NullString
	err := row.Scan(
		&m.LedgerID,
		&m.CompanyID,
		&m.Name,
		&code,
		&m.LedgerGroup,
		&m.LedgerType,
		&m.OpeningBalance,
		&m.OpeningBalanceType,
		&m.Balance,
		&description,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.Code = code.String
	m.Description = description.String
	return &m, nil
}

// SaveLedger persists a new ledger.
func (r *PgxLedgerRepository) SaveLedger(ctx context.Context, ledger domain.Ledger) error {
	m := mapping.ToModelLedger(ledger)

	query := `
		INSERT INTO ledgers (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	var code sql.NullString
	if m.Code != "" {
		code = sql.NullString{String: m.Code, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		m.LedgerID,
		m.CompanyID,
		m.Name,
		code,
		m.LedgerGroup,
		m.LedgerType,
		m.OpeningBalance,
		m.OpeningBalanceType,
		m.Balance,
		m.Description,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // Unique violation
				return fmt.Errorf("%w: ledger with that name or code already exists in company %s", apperrors.ErrDuplicate, m.CompanyID)
			}
		}
		return fmt.Errorf("failed to save ledger %s: %w", m.LedgerID, err)
	}
	return nil
}

// FindLedgerByID retrieves a ledger by its ID.
func (r *PgxLedgerRepository) FindLedgerByID(ctx context.Context, ledgerID string) (*domain.Ledger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledgers WHERE ledger_id = $1;`

	m, err := scanLedger(r.Pool.QueryRow(ctx, query, ledgerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find ledger by ID "+ledgerID, err)
	}

	ledger := mapping.ToDomainLedger(*m)
	return &ledger, nil
}

// FindLedgersByIDs retrieves multiple ledgers by their IDs. Missing IDs are
// simply absent from the returned map.
func (r *PgxLedgerRepository) FindLedgersByIDs(ctx context.Context, ledgerIDs []string) (map[string]domain.Ledger, error) {
	if len(ledgerIDs) == 0 {
		return map[string]domain.Ledger{}, nil
	}

	query := `SELECT ` + ledgerColumns + ` FROM ledgers WHERE ledger_id = ANY($1);`

	rows, err := r.Pool.Query(ctx, query, ledgerIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query ledgers by IDs", err)
	}
	defer rows.Close()

	ledgersMap := make(map[string]domain.Ledger)
	for rows.Next() {
		m, err := scanLedger(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger row", err)
		}
		ledgersMap[m.LedgerID] = mapping.ToDomainLedger(*m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger rows", err)
	}

	return ledgersMap, nil
}

// ListLedgers retrieves a paginated list of ledgers for a company, ordered by name.
func (r *PgxLedgerRepository) ListLedgers(ctx context.Context, companyID string, limit int, offset int, includeInactive bool) ([]domain.Ledger, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledgers WHERE company_id = $1`
	if !includeInactive {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name ASC LIMIT $2 OFFSET $3;`

	rows, err := r.Pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query ledgers for company "+companyID, err)
	}
	defer rows.Close()

	ledgers := []models.Ledger{}
	for rows.Next() {
		m, err := scanLedger(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan ledger row", err)
		}
		ledgers = append(ledgers, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating ledger rows", err)
	}

	return mapping.ToDomainLedgerSlice(ledgers), nil
}

// UpdateLedger updates a ledger's editable details. The balance column is
// deliberately not touched here; only the posting engine mutates it.
func (r *PgxLedgerRepository) UpdateLedger(ctx context.Context, ledger domain.Ledger) error {
	m := mapping.ToModelLedger(ledger)

	query := `
		UPDATE ledgers
		SET name = $2, code = $3, description = $4, is_active = $5, last_updated_at = $6, last_updated_by = $7
		WHERE ledger_id = $1;
	`
	var code sql.NullString
	if m.Code != "" {
		code = sql.NullString{String: m.Code, Valid: true}
	}

	ct, err := r.Pool.Exec(ctx, query,
		m.LedgerID,
		m.Name,
		code,
		m.Description,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: ledger name or code already in use", apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to update ledger "+m.LedgerID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeactivateLedger marks a ledger as inactive. Ledgers are never hard-deleted.
func (r *PgxLedgerRepository) DeactivateLedger(ctx context.Context, ledgerID string, userID string, now time.Time) error {
	query := `
		UPDATE ledgers
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE ledger_id = $1;
	`
	ct, err := r.Pool.Exec(ctx, query, ledgerID, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate ledger "+ledgerID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindLedgersByIDsForUpdate retrieves multiple ledgers by IDs and locks the rows for update.
// Must be called within a transaction. Lock order is sorted ledger ID so that
// concurrent postings touching the same ledgers cannot deadlock.
func (r *PgxLedgerRepository) FindLedgersByIDsForUpdate(ctx context.Context, tx pgx.Tx, ledgerIDs []string) (map[string]domain.Ledger, error) {
	if len(ledgerIDs) == 0 {
		return map[string]domain.Ledger{}, nil
	}

	sorted := make([]string, len(ledgerIDs))
	copy(sorted, ledgerIDs)
	sort.Strings(sorted)

	query := `
		SELECT ` + ledgerColumns + `
		FROM ledgers
		WHERE ledger_id = ANY($1)
		ORDER BY ledger_id
		FOR UPDATE;
	`
	rows, err := tx.Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledgers by IDs for update: %w", err)
	}
	defer rows.Close()

	ledgersMap := make(map[string]domain.Ledger)
	for rows.Next() {
		m, err := scanLedger(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan locked ledger row: %w", err)
		}
		ledgersMap[m.LedgerID] = mapping.ToDomainLedger(*m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked ledger rows: %w", err)
	}

	// Check if all requested ledgers were found and locked
	if len(ledgersMap) != len(sorted) {
		missing := []string{}
		for _, id := range sorted {
			if _, found := ledgersMap[id]; !found {
				missing = append(missing, id)
			}
		}
		slog.WarnContext(ctx, "Some ledgers requested for update lock were not found", "missing_ledgers", missing)
		return nil, fmt.Errorf("%w: could not find or lock all requested ledgers, missing: %v", apperrors.ErrNotFound, missing)
	}

	return ledgersMap, nil
}

// ApplyBalanceDeltasInTx adjusts ledger balances within a transaction using
// atomic increments so the writes compose with concurrent postings.
func (r *PgxLedgerRepository) ApplyBalanceDeltasInTx(ctx context.Context, tx pgx.Tx, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(deltas) == 0 {
		return nil // Nothing to update
	}

	query := `
		UPDATE ledgers
		SET balance = COALESCE(balance, 0) + $2, last_updated_at = $3, last_updated_by = $4
		WHERE ledger_id = $1;
	`

	batch := &pgx.Batch{}
	ledgerIDs := make([]string, 0, len(deltas))
	for ledgerID, delta := range deltas {
		if !delta.IsZero() { // Only queue updates if there's a change
			batch.Queue(query, ledgerID, delta, now, userID)
			ledgerIDs = append(ledgerIDs, ledgerID)
		}
	}

	if batch.Len() == 0 {
		return nil // No non-zero changes
	}

	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if err != nil {
			if batchErr == nil {
				batchErr = fmt.Errorf("failed to update balance for ledger %s: %w", ledgerIDs[i], err)
			}
		} else if ct.RowsAffected() == 0 {
			if batchErr == nil {
				batchErr = fmt.Errorf("%w: ledger %s not found during balance update", apperrors.ErrNotFound, ledgerIDs[i])
			}
		}
	}

	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = fmt.Errorf("failed to close balance update batch: %w", err)
	}
	return batchErr
}
