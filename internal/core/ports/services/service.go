package services

// ServiceContainer aggregates the service facades handed to the HTTP layer.
type ServiceContainer struct {
	Ledger    LedgerSvcFacade
	Voucher   VoucherSvcFacade
	Reporting ReportingSvcFacade
	User      UserSvcFacade
	Auth      AuthSvcFacade
	Company   CompanySvcFacade
}
