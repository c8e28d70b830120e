package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist. For tasks it is
	// also returned when the record exists under a different owner, so the
	// two cases cannot be told apart by callers.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when creating or updating a user with an
	// email that is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)
