package application

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/taskforge/taskforge/internal/domain/entity"
	"github.com/taskforge/taskforge/internal/domain/repository"
	"github.com/taskforge/taskforge/pkg/helpers"
	"github.com/taskforge/taskforge/pkg/images"
	"github.com/taskforge/taskforge/pkg/mailer"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNoAvatar           = errors.New("avatar not set")
	ErrInvalidImage       = errors.New("invalid image")
)

// UserService owns the account lifecycle: signup, sessions, profile
// updates, avatars and cascade deletion. Hashing and cascade removal are
// explicit here rather than hidden in persistence hooks.
type UserService struct {
	Repo        repository.UserRepository
	JWT         *helpers.JWTManager
	Redis       *redis.Client
	Logger      *logrus.Logger
	Pub         *helpers.RabbitPublisher
	MailEnabled bool
}

func NewUserService(repo repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, pub *helpers.RabbitPublisher, mailEnabled bool) *UserService {
	return &UserService{Repo: repo, JWT: jwt, Redis: rdb, Logger: logger, Pub: pub, MailEnabled: mailEnabled}
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

type SignupInput struct {
	Name     string
	Age      int
	Email    string
	Password string
}

// Signup creates the account, enqueues the welcome email and issues the
// first bearer token.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*entity.User, string, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}
	u := &entity.User{
		Name:     strings.TrimSpace(in.Name),
		Age:      in.Age,
		Email:    normalizeEmail(in.Email),
		Password: hash,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	s.publishMail(ctx, mailer.WelcomeJob(u.Email, u.Name))

	token, err := s.issueToken(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login validates credentials and appends one new token to the user's
// active set. Unknown email and wrong password are indistinguishable.
func (s *UserService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil || u == nil {
		return nil, "", ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", ErrInvalidCredentials
	}
	token, err := s.issueToken(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *UserService) issueToken(ctx context.Context, u *entity.User) (string, error) {
	token, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		}
		return "", err
	}
	if err := s.Repo.AddToken(ctx, u.ID, token); err != nil {
		return "", err
	}
	s.cacheSession(ctx, u)
	return token, nil
}

// Logout removes exactly the presented token; other sessions stay valid.
func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	return s.Repo.RemoveToken(ctx, userID, token)
}

// LogoutAll empties the user's active token set.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.Repo.RemoveAllTokens(ctx, userID); err != nil {
		return err
	}
	s.dropSession(ctx, userID)
	return nil
}

// GetProfile serves reads from the Redis session cache when it is warm and
// falls back to Postgres on a miss, refilling the cache.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	if u := s.cachedProfile(ctx, userID); u != nil {
		return u, nil
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	s.cacheSession(ctx, u)
	return u, nil
}

type UpdateProfileInput struct {
	Name     *string
	Age      *int
	Email    *string
	Password *string
}

// UpdateProfile applies an already-whitelisted partial update. Either every
// field applies or none does.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Age != nil {
		u.Age = *in.Age
	}
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if in.Password != nil {
		hash, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.cacheSession(ctx, u)
	return u, nil
}

// DeleteAccount removes the user together with all owned tasks and tokens
// in one transaction, then enqueues the cancellation email.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	if err := s.Repo.DeleteCascade(ctx, userID); err != nil {
		return nil, err
	}
	s.dropSession(ctx, userID)
	s.publishMail(ctx, mailer.CancellationJob(u.Email, u.Name))
	return u, nil
}

// UploadAvatar converts the uploaded bytes to the stored 250x250 PNG.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, data []byte) error {
	png, err := images.ResizeAvatar(data)
	if err != nil {
		return ErrInvalidImage
	}
	if err := s.Repo.SetAvatar(ctx, userID, png); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	// avatar writes bump updated_at, so the cached projection is stale
	s.dropSession(ctx, userID)
	return nil
}

func (s *UserService) Avatar(ctx context.Context, userID string) ([]byte, error) {
	b, err := s.Repo.Avatar(ctx, userID)
	if err != nil || len(b) == 0 {
		return nil, ErrNoAvatar
	}
	return b, nil
}

func (s *UserService) DeleteAvatar(ctx context.Context, userID string) error {
	if err := s.Repo.ClearAvatar(ctx, userID); err != nil {
		return err
	}
	s.dropSession(ctx, userID)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// publishMail enqueues an email job fire-and-forget; a broken broker never
// fails the request.
func (s *UserService) publishMail(ctx context.Context, job mailer.EmailJob) {
	if s.Pub == nil || !s.MailEnabled {
		return
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("to", job.To).Warn("email enqueue failed")
	}
}

const sessionTTL = 24 * time.Hour

// profileFields flattens the public projection into a Redis hash.
func profileFields(u *entity.User) map[string]any {
	return map[string]any{
		"user_id":    u.ID,
		"name":       u.Name,
		"age":        u.Age,
		"email":      u.Email,
		"created_at": u.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// profileFromFields rebuilds the projection from a cached hash. Any missing
// or unparseable field invalidates the whole entry.
func profileFromFields(fields map[string]string) *entity.User {
	if fields["user_id"] == "" || fields["email"] == "" {
		return nil
	}
	age, err := strconv.Atoi(fields["age"])
	if err != nil || age < 0 {
		return nil
	}
	created, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil
	}
	updated, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return nil
	}
	return &entity.User{
		ID:        fields["user_id"],
		Name:      fields["name"],
		Age:       age,
		Email:     fields["email"],
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

// cachedProfile returns the cached projection, or nil on a miss or any
// Redis error so callers fall through to Postgres.
func (s *UserService) cachedProfile(ctx context.Context, userID string) *entity.User {
	if s.Redis == nil {
		return nil
	}
	fields, err := s.Redis.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil || len(fields) == 0 {
		return nil
	}
	return profileFromFields(fields)
}

func (s *UserService) cacheSession(ctx context.Context, u *entity.User) {
	if s.Redis == nil {
		return
	}
	key := sessionKey(u.ID)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, profileFields(u))
	pipe.Expire(ctx, key, sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("redis pipeline failed")
	}
}

func (s *UserService) dropSession(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, sessionKey(userID)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("redis del failed")
	}
}
