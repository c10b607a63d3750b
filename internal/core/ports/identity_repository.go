package ports

import (
	"context"
	"time"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// IdentityRepository persists authentication identities.
type IdentityRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

// SessionRepository tracks live sessions so they can be revoked before their
// token expires.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session, ttl time.Duration) error
	// Active reports whether sessionID exists and belongs to userID.
	Active(ctx context.Context, sessionID, userID string) (bool, error)
	Extend(ctx context.Context, sessionID string, ttl time.Duration) error
	Revoke(ctx context.Context, sessionID string) error
}
