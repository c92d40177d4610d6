package models

// Company is the tenant row.
type Company struct {
	CompanyID   string `db:"company_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	AuditFields
}

// CompanyUser links a user to a company with a role.
type CompanyUser struct {
	CompanyID string `db:"company_id"`
	UserID    string `db:"user_id"`
	Role      string `db:"role"`
	AuditFields
}
