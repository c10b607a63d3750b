package client

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

type userBody struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type sessionBody struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      userBody    `json:"user"`
	Role      domain.Role `json:"role"`
}

func (b sessionBody) toDomain() *domain.Session {
	return &domain.Session{
		UserID:    b.User.ID,
		Email:     b.User.Email,
		Token:     b.Token,
		ExpiresAt: b.ExpiresAt,
	}
}

type signUpBody struct {
	User    userBody `json:"user"`
	Message string   `json:"message"`
}

// SessionStore implements ports.SessionStore against the portal API and
// persists the session in the client's token file. Listeners are called
// synchronously, in registration order, on the goroutine that caused the
// change.
type SessionStore struct {
	api *Client
	now func() time.Time

	mu        sync.Mutex
	listeners map[int]func(ports.SessionEvent)
	next      int
}

func NewSessionStore(api *Client) *SessionStore {
	return &SessionStore{
		api:       api,
		now:       time.Now,
		listeners: make(map[int]func(ports.SessionEvent)),
	}
}

// SignUp creates an account. It does not sign the user in.
func (s *SessionStore) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	var out signUpBody
	err := s.api.do(ctx, http.MethodPost, "/auth/signup", map[string]string{
		"email":    in.Email,
		"password": in.Password,
		"username": in.Username,
		"phone":    in.Phone,
	}, &out)
	if err != nil {
		return nil, credentialError(err)
	}
	return &domain.User{ID: out.User.ID, Email: out.User.Email}, nil
}

func (s *SessionStore) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	var out sessionBody
	err := s.api.do(ctx, http.MethodPost, "/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, credentialError(err)
	}

	sess := out.toDomain()
	if err := s.api.tokens.Save(sess); err != nil {
		return nil, err
	}
	s.emit(ports.SessionEvent{Type: ports.SessionSignedIn, Session: sess})
	return sess, nil
}

// SignOut revokes the session on the server. The local session is cleared
// and listeners notified even when the server call fails.
func (s *SessionStore) SignOut(ctx context.Context) error {
	sess, _ := s.api.tokens.Load()
	if sess == nil {
		return nil
	}
	remoteErr := s.api.do(ctx, http.MethodPost, "/auth/signout", nil, nil)
	if statusOf(remoteErr) == http.StatusUnauthorized {
		remoteErr = nil
	}
	clearErr := s.api.tokens.Clear()

	s.emit(ports.SessionEvent{Type: ports.SessionSignedOut})
	return errors.Join(remoteErr, clearErr)
}

// CurrentSession returns the stored session. A session past its expiry is
// discarded and reported as signed out.
func (s *SessionStore) CurrentSession(context.Context) (*domain.Session, error) {
	sess, err := s.api.tokens.Load()
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		return nil, s.api.tokens.Clear()
	}
	return sess, nil
}

// Refresh exchanges the current token for a new one.
func (s *SessionStore) Refresh(ctx context.Context) (*domain.Session, error) {
	var out sessionBody
	if err := s.api.do(ctx, http.MethodPost, "/auth/refresh", nil, &out); err != nil {
		if statusOf(err) == http.StatusUnauthorized {
			s.expire()
		}
		return nil, err
	}

	sess := out.toDomain()
	if err := s.api.tokens.Save(sess); err != nil {
		return nil, err
	}
	s.emit(ports.SessionEvent{Type: ports.SessionTokenRefreshed, Session: sess})
	return sess, nil
}

// Validate asks the server whether the stored session is still live. A
// revoked or expired session is cleared and reported as expired.
func (s *SessionStore) Validate(ctx context.Context) (*domain.Session, domain.Role, error) {
	var out sessionBody
	if err := s.api.do(ctx, http.MethodGet, "/auth/session", nil, &out); err != nil {
		if statusOf(err) == http.StatusUnauthorized {
			s.expire()
			return nil, "", nil
		}
		return nil, "", err
	}
	return out.toDomain(), out.Role, nil
}

func (s *SessionStore) OnChange(fn func(ports.SessionEvent)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *SessionStore) expire() {
	if err := s.api.tokens.Clear(); err != nil {
		s.api.log.Warn().Err(err).Msg("failed to clear expired session")
	}
	s.emit(ports.SessionEvent{Type: ports.SessionExpired})
}

func (s *SessionStore) emit(ev ports.SessionEvent) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(ports.SessionEvent), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// credentialError turns identity rejections into domain.CredentialError.
func credentialError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Status {
	case http.StatusUnauthorized:
		return domain.NewCredentialError(domain.ErrInvalidCredentials)
	case http.StatusConflict:
		return domain.NewCredentialError(domain.ErrUserExists)
	case http.StatusBadRequest:
		if apiErr.Message == domain.ErrWeakPassword.Error() {
			return domain.NewCredentialError(domain.ErrWeakPassword)
		}
	case http.StatusUnprocessableEntity:
		return domain.NewValidationError(apiErr.Field, apiErr.Message)
	case http.StatusServiceUnavailable:
		return domain.NewPersistenceError("identity store", apiErr)
	}
	return err
}
