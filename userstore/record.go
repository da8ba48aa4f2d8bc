package userstore

import "errors"

// DefaultTable is the table (key namespace) holding login credentials.
const DefaultTable = "users"

var (
	// ErrNotFound is returned by every backend when no record exists for an email.
	ErrNotFound = errors.New("user record not found")
	// ErrInvalidTable is returned when a table name is empty or unsafe for the backend.
	ErrInvalidTable = errors.New("invalid user table name")
)

// Record is the stored credential material for one account. The hash was computed from
// its own salt when the account was created; it is never recomputed by a login.
type Record struct {
	Email        string
	PasswordHash string
	PasswordSalt string
	Verified     bool
}
