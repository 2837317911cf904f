package auth

import "time"

// Account carries the credential view of a user account.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
