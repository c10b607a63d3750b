package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightnest/cleaning-portal/internal/api/metrics"
	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

// AuthService implements sign-up, sign-in and revocable sessions.
type AuthService struct {
	identities ports.IdentityRepository
	profiles   ports.ProfileRepository
	sessions   ports.SessionRepository
	jwtSecret  string
	tokenTTL   time.Duration
	log        zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewAuthService(
	identities ports.IdentityRepository,
	profiles ports.ProfileRepository,
	sessions ports.SessionRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		identities: identities,
		profiles:   profiles,
		sessions:   sessions,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// Register creates a bare identity. No profile is written.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewCredentialError(domain.ErrInvalidCredentials)
	}
	if len(password) < domain.MinPasswordLength {
		return nil, domain.NewCredentialError(domain.ErrWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.identities.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.NewCredentialError(domain.ErrUserExists)
		}
		return nil, domain.NewPersistenceError("create identity", err)
	}
	return created, nil
}

// Remove deletes an identity.
func (s *AuthService) Remove(ctx context.Context, userID string) error {
	if err := s.identities.Delete(ctx, userID); err != nil {
		return fmt.Errorf("remove identity: %w", err)
	}
	return nil
}

// SignUp creates the identity and then its customer profile. A failed
// profile insert leaves the identity in place without a profile; the user
// can sign in but no role resolves.
func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	user, err := s.Register(ctx, in.Email, in.Password)
	if err != nil {
		metrics.AuthEventsTotal.WithLabelValues("signup", "rejected").Inc()
		return nil, err
	}

	profile := &domain.Profile{
		ID:        user.ID,
		Username:  strings.TrimSpace(in.Username),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      domain.RoleCustomer,
		CreatedAt: s.now(),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("identity created without profile")
		metrics.AuthEventsTotal.WithLabelValues("signup", "error").Inc()
		return nil, domain.NewPersistenceError("create profile", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user signed up")
	metrics.AuthEventsTotal.WithLabelValues("signup", "ok").Inc()
	return user, nil
}

// SignIn checks the password and opens a new session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.NewCredentialError(domain.ErrInvalidCredentials)
	}

	user, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthEventsTotal.WithLabelValues("signin", "rejected").Inc()
			return nil, domain.NewCredentialError(domain.ErrInvalidCredentials)
		}
		return nil, domain.NewPersistenceError("find identity", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.AuthEventsTotal.WithLabelValues("signin", "rejected").Inc()
		return nil, domain.NewCredentialError(domain.ErrInvalidCredentials)
	}

	session := &domain.Session{
		ID:        s.newID(),
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	if err := s.issue(session); err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, session, s.tokenTTL); err != nil {
		return nil, domain.NewPersistenceError("create session", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("session_id", session.ID).Msg("user signed in")
	metrics.AuthEventsTotal.WithLabelValues("signin", "ok").Inc()
	return session, nil
}

// Verify parses token and checks its session has not been revoked.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.SessionID == "" {
		return nil, domain.ErrSessionNotFound
	}

	active, err := s.sessions.Active(ctx, claims.SessionID, claims.Subject)
	if err != nil {
		return nil, domain.NewPersistenceError("check session", err)
	}
	if !active {
		return nil, domain.ErrSessionNotFound
	}

	session := &domain.Session{
		ID:     claims.SessionID,
		UserID: claims.Subject,
		Email:  claims.Email,
		Token:  token,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// Refresh re-issues the token of a live session with a fresh expiry.
func (s *AuthService) Refresh(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	refreshed := &domain.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Email:     session.Email,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	if err := s.sessions.Extend(ctx, session.ID, s.tokenTTL); err != nil {
		return nil, domain.NewPersistenceError("extend session", err)
	}
	if err := s.issue(refreshed); err != nil {
		return nil, err
	}
	metrics.AuthEventsTotal.WithLabelValues("refresh", "ok").Inc()
	return refreshed, nil
}

// SignOut revokes a session. Revoking an unknown session is not an error.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return domain.NewPersistenceError("revoke session", err)
	}
	s.log.Info().Str("session_id", sessionID).Msg("session revoked")
	metrics.AuthEventsTotal.WithLabelValues("signout", "ok").Inc()
	return nil
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

func (s *AuthService) issue(session *domain.Session) error {
	claims := sessionClaims{
		SessionID: session.ID,
		Email:     session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	session.Token = signed
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
