package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash; the plaintext never touches storage.
// Avatar holds the processed 250x250 PNG, or nil when unset.
// Tokens is the set of currently valid bearer tokens for the user.
type User struct {
	ID        string
	Name      string
	Age       int
	Email     string
	Password  string
	Avatar    []byte
	Tokens    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
