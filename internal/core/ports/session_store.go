package ports

import (
	"context"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// SessionEventType names a change reported by a SessionStore.
type SessionEventType string

const (
	SessionSignedIn       SessionEventType = "signed_in"
	SessionSignedOut      SessionEventType = "signed_out"
	SessionTokenRefreshed SessionEventType = "token_refreshed"
	SessionExpired        SessionEventType = "session_expired"
)

// SessionEvent is delivered to OnChange listeners. Session is nil for
// sign-out and expiry.
type SessionEvent struct {
	Type    SessionEventType
	Session *domain.Session
}

// SessionStore is the client-side view of the identity service.
type SessionStore interface {
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context) error
	// CurrentSession returns the stored session, or nil when signed out.
	CurrentSession(ctx context.Context) (*domain.Session, error)
	// OnChange registers fn for session changes. Call the returned function
	// to stop receiving them.
	OnChange(fn func(SessionEvent)) (unsubscribe func())
}
