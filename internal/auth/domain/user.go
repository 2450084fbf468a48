package domain

import "time"

// User is an account as held by the user directory. Email is the
// identifier carried in the token subject.
type User struct {
	ID           int64
	Email        string
	PasswordHash string // argon2 encoded
	Role         Role
	Enabled      bool
	TOTPSecret   string // base32, empty when no one-time code is configured
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RequiresCode reports whether login must also present a one-time code.
func (u User) RequiresCode() bool {
	return u.TOTPSecret != ""
}
