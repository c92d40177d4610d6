package services

import (
	portsrepo "github.com/dairybooks/dairy_books_app/internal/core/ports/repositories"
	portssvc "github.com/dairybooks/dairy_books_app/internal/core/ports/services"
	"github.com/dairybooks/dairy_books_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Company service first since most services authorize through it
	container.Company = NewCompanyService(repos.CompanyRepo)

	container.User = NewUserService(repos.UserRepo)
	container.Auth = NewAuthService(repos.UserRepo, cfg.JWTSecret, cfg.JWTExpiryDuration, cfg.JWTIssuer)
	container.Ledger = NewLedgerService(repos.LedgerRepo, container.Company)
	container.Voucher = NewVoucherService(repos.VoucherRepo, repos.LedgerRepo, container.Company)
	container.Reporting = NewReportingService(repos.ReportingRepo, repos.LedgerRepo, container.Company)

	return container
}
