package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskforge/taskforge/internal/domain/entity"
	"github.com/taskforge/taskforge/internal/domain/repository"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (description, completed, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, t.Description, t.Completed, t.OwnerID)

	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepository) GetByOwner(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	t := &entity.Task{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, description, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID)

	if err := row.Scan(&t.ID, &t.Description, &t.Completed, &t.OwnerID,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// sortColumns maps ListOptions.SortBy values onto ORDER BY targets. Only
// values present here ever reach the query text.
var sortColumns = map[string]string{
	repository.SortDescription: "description",
	repository.SortCompleted:   "completed",
	repository.SortCreatedAt:   "created_at",
	repository.SortUpdatedAt:   "updated_at",
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID string, opts repository.ListOptions) ([]entity.Task, error) {
	q := `
		SELECT id, description, completed, owner_id, created_at, updated_at
		FROM tasks
		WHERE owner_id = $1`
	args := []any{ownerID}

	if opts.Completed != nil {
		args = append(args, *opts.Completed)
		q += ` AND completed = $` + strconv.Itoa(len(args))
	}
	if col, ok := sortColumns[opts.SortBy]; ok {
		q += ` ORDER BY ` + col
		if opts.SortDesc {
			q += ` DESC`
		}
	} else {
		q += ` ORDER BY created_at`
	}
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		q += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if opts.Skip > 0 {
		args = append(args, opts.Skip)
		q += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]entity.Task, 0)
	for rows.Next() {
		var t entity.Task
		if err := rows.Scan(&t.ID, &t.Description, &t.Completed, &t.OwnerID,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, t *entity.Task) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET description = $1, completed = $2, updated_at = now()
		WHERE id = $3 AND owner_id = $4
	`, t.Description, t.Completed, t.ID, t.OwnerID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID, id string) (*entity.Task, error) {
	t := &entity.Task{}
	row := r.pool.QueryRow(ctx, `
		DELETE FROM tasks
		WHERE id = $1 AND owner_id = $2
		RETURNING id, description, completed, owner_id, created_at, updated_at
	`, id, ownerID)

	if err := row.Scan(&t.ID, &t.Description, &t.Completed, &t.OwnerID,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
