package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskforge/taskforge/internal/domain/entity"
	"github.com/taskforge/taskforge/internal/domain/repository"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, age, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Age, u.Email, u.Password)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isDuplicate(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, `WHERE email = $1`, email)
}

func (r *UserRepository) getBy(ctx context.Context, where string, arg any) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, age, email, password_hash, created_at, updated_at
		FROM users
	`+where, arg)

	if err := row.Scan(&u.ID, &u.Name, &u.Age, &u.Email, &u.Password,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, age = $2, email = $3, password_hash = $4, updated_at = now()
		WHERE id = $5
	`, u.Name, u.Age, u.Email, u.Password, u.ID)
	if err != nil {
		if isDuplicate(err) {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) AddToken(ctx context.Context, userID, token string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_tokens (user_id, token)
		VALUES ($1, $2)
	`, userID, token)
	return err
}

func (r *UserRepository) RemoveToken(ctx context.Context, userID, token string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM user_tokens WHERE user_id = $1 AND token = $2
	`, userID, token)
	return err
}

func (r *UserRepository) RemoveAllTokens(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM user_tokens WHERE user_id = $1
	`, userID)
	return err
}

func (r *UserRepository) HasToken(ctx context.Context, userID, token string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM user_tokens WHERE user_id = $1 AND token = $2)
	`, userID, token).Scan(&exists)
	return exists, err
}

func (r *UserRepository) Tokens(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT token FROM user_tokens WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *UserRepository) SetAvatar(ctx context.Context, userID string, avatar []byte) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET avatar = $1, updated_at = now() WHERE id = $2
	`, avatar, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Avatar(ctx context.Context, userID string) ([]byte, error) {
	var avatar []byte
	err := r.pool.QueryRow(ctx, `
		SELECT avatar FROM users WHERE id = $1
	`, userID).Scan(&avatar)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if len(avatar) == 0 {
		return nil, repository.ErrNotFound
	}
	return avatar, nil
}

func (r *UserRepository) ClearAvatar(ctx context.Context, userID string) error {
	return r.SetAvatar(ctx, userID, nil)
}

// DeleteCascade removes the user's tasks, tokens and the user row in one
// transaction so a deleted user can never be observed with surviving tasks.
func (r *UserRepository) DeleteCascade(ctx context.Context, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE owner_id = $1`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM user_tokens WHERE user_id = $1`, userID); err != nil {
		return err
	}
	res, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return tx.Commit(ctx)
}

var _ repository.UserRepository = (*UserRepository)(nil)
