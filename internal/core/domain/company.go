package domain

// UserRole defines the role of a user within a company.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleMember   UserRole = "MEMBER"
	RoleReadOnly UserRole = "READ_ONLY"
)

// roleRank orders roles by privilege for authorization checks.
var roleRank = map[UserRole]int{
	RoleReadOnly: 1,
	RoleMember:   2,
	RoleAdmin:    3,
}

// AtLeast reports whether r grants the privileges of required.
func (r UserRole) AtLeast(required UserRole) bool {
	return roleRank[r] >= roleRank[required]
}

// Company is the tenant boundary: every ledger and voucher belongs to exactly
// one company.
type Company struct {
	CompanyID   string `json:"companyID"` // Primary Key (UUID)
	Name        string `json:"name"`
	Description string `json:"description"`
	AuditFields
}

// CompanyUser links a user to a company with a role.
type CompanyUser struct {
	CompanyID string   `json:"companyID"`
	UserID    string   `json:"userID"`
	Role      UserRole `json:"role"`
	AuditFields
}
