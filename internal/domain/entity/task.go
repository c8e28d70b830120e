package entity

import "time"

// Task belongs to exactly one user via OwnerID.
type Task struct {
	ID          string
	Description string
	Completed   bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
