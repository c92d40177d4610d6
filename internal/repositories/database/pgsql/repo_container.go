package pgsql

import (
	portsrepo "github.com/dairybooks/dairy_books_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	ledgerRepo := newPgxLedgerRepository(dbPool)
	voucherRepo := newPgxVoucherRepository(dbPool, ledgerRepo)
	reportingRepo := newReportingRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	companyRepo := newPgxCompanyRepository(dbPool)

	return portsrepo.RepositoryProvider{
		LedgerRepo:    ledgerRepo,
		VoucherRepo:   voucherRepo,
		ReportingRepo: reportingRepo,
		UserRepo:      userRepo,
		CompanyRepo:   companyRepo,
	}
}
