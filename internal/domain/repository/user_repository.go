package repository

import (
	"context"

	"github.com/taskforge/taskforge/internal/domain/entity"
)

// UserRepository defines persistence for users, their active token set and
// their avatar blob.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error

	AddToken(ctx context.Context, userID, token string) error
	RemoveToken(ctx context.Context, userID, token string) error
	RemoveAllTokens(ctx context.Context, userID string) error
	HasToken(ctx context.Context, userID, token string) (bool, error)
	Tokens(ctx context.Context, userID string) ([]string, error)

	SetAvatar(ctx context.Context, userID string, avatar []byte) error
	Avatar(ctx context.Context, userID string) ([]byte, error)
	ClearAvatar(ctx context.Context, userID string) error

	// DeleteCascade removes the user, their tokens and every task they own
	// as a single atomic unit.
	DeleteCascade(ctx context.Context, userID string) error
}
