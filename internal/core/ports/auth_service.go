package ports

import (
	"context"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// SignUpInput carries the sign-up form.
type SignUpInput struct {
	Email    string
	Password string
	Username string
	Phone    string
}

// AuthService manages identities and their sessions.
type AuthService interface {
	// SignUp creates an identity and its customer profile.
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	// Verify parses token and checks that its session is still live.
	Verify(ctx context.Context, token string) (*domain.Session, error)
	// Refresh issues a new token for a live session and extends it.
	Refresh(ctx context.Context, session *domain.Session) (*domain.Session, error)
	SignOut(ctx context.Context, sessionID string) error
}

// IdentityRegistrar creates and removes bare identities. Profile management
// uses it to provision employee accounts.
type IdentityRegistrar interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Remove(ctx context.Context, userID string) error
}

// RoleResolver looks up the current role of a user.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (domain.Role, error)
}
