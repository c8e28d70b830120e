package application

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/internal/domain/entity"
	"github.com/taskforge/taskforge/internal/domain/repository"
)

// fakeUserRepo serves a single user and counts GetByID hits so tests can
// tell whether a profile read reached the store.
type fakeUserRepo struct {
	user       *entity.User
	getByIDHit int
}

func (f *fakeUserRepo) Create(ctx context.Context, u *entity.User) error { return nil }

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	f.getByIDHit++
	if f.user != nil && f.user.ID == id {
		cp := *f.user
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *entity.User) error           { return nil }
func (f *fakeUserRepo) AddToken(ctx context.Context, userID, token string) error   { return nil }
func (f *fakeUserRepo) RemoveToken(ctx context.Context, userID, token string) error {
	return nil
}
func (f *fakeUserRepo) RemoveAllTokens(ctx context.Context, userID string) error { return nil }
func (f *fakeUserRepo) HasToken(ctx context.Context, userID, token string) (bool, error) {
	return false, nil
}
func (f *fakeUserRepo) Tokens(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}
func (f *fakeUserRepo) SetAvatar(ctx context.Context, userID string, avatar []byte) error {
	return nil
}
func (f *fakeUserRepo) Avatar(ctx context.Context, userID string) ([]byte, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUserRepo) ClearAvatar(ctx context.Context, userID string) error   { return nil }
func (f *fakeUserRepo) DeleteCascade(ctx context.Context, userID string) error { return nil }

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testUser() *entity.User {
	return &entity.User{
		ID:        "5e3c7a1e-9b1f-4a2c-8d7e-1a2b3c4d5e6f",
		Name:      "Ann",
		Age:       28,
		Email:     "ann@example.com",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 12345, time.UTC),
		UpdatedAt: time.Date(2026, 3, 2, 11, 30, 0, 67890, time.UTC),
	}
}

func TestProfileFieldsRoundTrip(t *testing.T) {
	u := testUser()

	flat := profileFields(u)
	asStrings := make(map[string]string, len(flat))
	for k, v := range flat {
		asStrings[k] = fmt.Sprint(v)
	}

	got := profileFromFields(asStrings)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Name, got.Name)
	assert.Equal(t, u.Age, got.Age)
	assert.Equal(t, u.Email, got.Email)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, u.UpdatedAt.Equal(got.UpdatedAt))
}

func TestProfileFromFieldsRejectsBrokenEntries(t *testing.T) {
	u := testUser()
	base := func() map[string]string {
		flat := profileFields(u)
		out := make(map[string]string, len(flat))
		for k, v := range flat {
			out[k] = fmt.Sprint(v)
		}
		return out
	}

	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing user_id", func(m map[string]string) { delete(m, "user_id") }},
		{"missing email", func(m map[string]string) { delete(m, "email") }},
		{"bad age", func(m map[string]string) { m["age"] = "twenty" }},
		{"negative age", func(m map[string]string) { m["age"] = "-1" }},
		{"bad created_at", func(m map[string]string) { m["created_at"] = "yesterday" }},
		{"bad updated_at", func(m map[string]string) { m["updated_at"] = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := base()
			tt.mutate(fields)
			assert.Nil(t, profileFromFields(fields))
		})
	}
}

func TestGetProfileWithoutRedis(t *testing.T) {
	u := testUser()
	repo := &fakeUserRepo{user: u}
	svc := NewUserService(repo, nil, nil, discardLogger(), nil, false)

	got, err := svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, 1, repo.getByIDHit)

	_, err = svc.GetProfile(context.Background(), "9e7b32f1-54a1-4a6a-9c2d-000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetProfileFailsOpenOnRedisError(t *testing.T) {
	u := testUser()
	repo := &fakeUserRepo{user: u}
	// nothing listens here; every cache call errors and the read must fall
	// through to the repository
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = rdb.Close() }()

	svc := NewUserService(repo, nil, rdb, discardLogger(), nil, false)

	got, err := svc.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Name, got.Name)
	assert.Equal(t, 1, repo.getByIDHit)
}
