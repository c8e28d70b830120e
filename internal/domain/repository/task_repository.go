package repository

import (
	"context"

	"github.com/taskforge/taskforge/internal/domain/entity"
)

// Sortable task columns, as stored. Handlers translate API field names to
// these before building ListOptions.
const (
	SortDescription = "description"
	SortCompleted   = "completed"
	SortCreatedAt   = "created_at"
	SortUpdatedAt   = "updated_at"
)

// ListOptions narrows and orders a task listing. SortBy must be one of the
// Sort* constants; an empty SortBy means storage order.
type ListOptions struct {
	Completed *bool
	Limit     int
	Skip      int
	SortBy    string
	SortDesc  bool
}

// TaskRepository defines owner-scoped persistence for tasks. Every read,
// update and delete filters by owner in addition to the task id.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	GetByOwner(ctx context.Context, ownerID, id string) (*entity.Task, error)
	ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]entity.Task, error)
	Update(ctx context.Context, t *entity.Task) error
	DeleteByOwner(ctx context.Context, ownerID, id string) (*entity.Task, error)
}
