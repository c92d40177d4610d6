package domain

// User represents an application user.
type User struct {
	UserID       string `json:"userID"` // Primary Key (UUID)
	Username     string `json:"username"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"` // bcrypt hash, never serialized
	AuditFields
}
