package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// SessionRepository keeps live sessions in Redis.
// Key format: session:<session_id> -> user id, expiring with the token.
type SessionRepository struct {
	client redis.Cmdable
}

func NewSessionRepository(client redis.Cmdable) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session, ttl time.Duration) error {
	if err := r.client.Set(ctx, sessionKey(s.ID), s.UserID, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Active reports whether the session is live and owned by userID.
func (r *SessionRepository) Active(ctx context.Context, sessionID, userID string) (bool, error) {
	owner, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session lookup: %w", err)
	}
	return owner == userID, nil
}

func (r *SessionRepository) Extend(ctx context.Context, sessionID string, ttl time.Duration) error {
	ok, err := r.client.Expire(ctx, sessionKey(sessionID), ttl).Result()
	if err != nil {
		return fmt.Errorf("extend session: %w", err)
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Revoke deletes the session. Revoking an unknown session is not an error.
func (r *SessionRepository) Revoke(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

func sessionKey(id string) string {
	return "session:" + id
}
