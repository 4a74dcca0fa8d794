package repo

import (
	"context"
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/google/uuid"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (uuid.UUID, error)

	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	UpdateUser(ctx context.Context, u model.User) error

	DeleteUser(ctx context.Context, id uuid.UUID) error

	ListUsers(ctx context.Context, offset, limit int) ([]model.User, error)

	Ping(ctx context.Context) error
}

// SessionStore is a flat expiring key-value space. Callers build keys with
// RefreshKey and BlacklistKey so the two namespaces never collide.
type SessionStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	Get(ctx context.Context, key string) (value string, found bool, err error)

	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

const (
	refreshPrefix   = "refresh:"
	blacklistPrefix = "blacklist:"
)

func RefreshKey(email string) string {
	return refreshPrefix + email
}

func BlacklistKey(token string) string {
	return blacklistPrefix + token
}
