package models

// User represents an application user row.
type User struct {
	UserID       string `db:"user_id"`
	Username     string `db:"username"`
	Name         string `db:"name"`
	PasswordHash string `db:"password_hash"`
	AuditFields
}
