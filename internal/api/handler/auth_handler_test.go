package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

// newTestContext builds an echo context with the validator installed and,
// when userID is set, the actor fields a gate would have stored.
func newTestContext(method, target, body string, userID string, role domain.Role) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Set("session", &domain.Session{ID: "s-" + userID, UserID: userID, Email: userID + "@example.com", Token: "tok"})
	}
	return c, rec
}

type stubAuthService struct {
	signUpFn  func(ctx context.Context, in ports.SignUpInput) (*domain.User, error)
	signInFn  func(ctx context.Context, email, password string) (*domain.Session, error)
	refreshFn func(ctx context.Context, s *domain.Session) (*domain.Session, error)
	signedOut []string
}

func (s *stubAuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	return s.signUpFn(ctx, in)
}

func (s *stubAuthService) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubAuthService) Verify(context.Context, string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}

func (s *stubAuthService) Refresh(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
	return s.refreshFn(ctx, sess)
}

func (s *stubAuthService) SignOut(_ context.Context, sessionID string) error {
	s.signedOut = append(s.signedOut, sessionID)
	return nil
}

type stubRoles map[string]domain.Role

func (m stubRoles) ResolveRole(_ context.Context, id string) (domain.Role, error) {
	if r, ok := m[id]; ok {
		return r, nil
	}
	return "", domain.ErrProfileNotFound
}

func TestAuthHandler_SignUp_Success(t *testing.T) {
	stub := &stubAuthService{
		signUpFn: func(_ context.Context, in ports.SignUpInput) (*domain.User, error) {
			if in.Email != "a@x.com" || in.Password != "secret1" || in.Username != "A" || in.Phone != "6125550100" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Email: in.Email}, nil
		},
	}
	h := NewAuthHandler(stub, stubRoles{})

	c, rec := newTestContext(http.MethodPost, "/auth/signup",
		`{"email":"a@x.com","password":"secret1","username":"A","phone":"6125550100"}`, "", "")
	if err := h.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp signUpResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User.ID != "u1" || resp.User.Email != "a@x.com" {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}
	if strings.Contains(rec.Body.String(), "token") {
		t.Fatalf("sign up must not return a session: %s", rec.Body.String())
	}
}

func TestAuthHandler_SignUp_MissingFields(t *testing.T) {
	stub := &stubAuthService{
		signUpFn: func(context.Context, ports.SignUpInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub, stubRoles{})

	c, _ := newTestContext(http.MethodPost, "/auth/signup", `{"email":"not-an-email","password":"secret1"}`, "", "")
	err := h.SignUp(c)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAuthHandler_SignUp_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, stubRoles{})

	c, _ := newTestContext(http.MethodPost, "/auth/signup", "not-json", "", "")
	err := h.SignUp(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_SignUp_DuplicatePassesCredentialError(t *testing.T) {
	stub := &stubAuthService{
		signUpFn: func(context.Context, ports.SignUpInput) (*domain.User, error) {
			return nil, domain.NewCredentialError(domain.ErrUserExists)
		},
	}
	h := NewAuthHandler(stub, stubRoles{})

	c, _ := newTestContext(http.MethodPost, "/auth/signup",
		`{"email":"a@x.com","password":"secret1","username":"A","phone":"6125550100"}`, "", "")
	if err := h.SignUp(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_SignIn_ReturnsTokenAndRole(t *testing.T) {
	exp := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		signInFn: func(_ context.Context, email, password string) (*domain.Session, error) {
			if email != "a@x.com" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &domain.Session{ID: "s1", UserID: "u1", Email: email, Token: "token123", ExpiresAt: exp}, nil
		},
	}
	h := NewAuthHandler(stub, stubRoles{"u1": domain.RoleCustomer})

	c, rec := newTestContext(http.MethodPost, "/auth/signin", `{"email":"a@x.com","password":"secret1"}`, "", "")
	if err := h.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "token123" || resp.Role != domain.RoleCustomer || resp.User.ID != "u1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_SignIn_RoleLookupFailureStillSignsIn(t *testing.T) {
	stub := &stubAuthService{
		signInFn: func(context.Context, string, string) (*domain.Session, error) {
			return &domain.Session{ID: "s1", UserID: "orphan", Token: "t"}, nil
		},
	}
	h := NewAuthHandler(stub, stubRoles{})

	c, rec := newTestContext(http.MethodPost, "/auth/signin", `{"email":"a@x.com","password":"secret1"}`, "", "")
	if err := h.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp sessionResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Token != "t" || resp.Role != "" {
		t.Fatalf("expected token without role, got %+v", resp)
	}
}

func TestAuthHandler_SignOut(t *testing.T) {
	stub := &stubAuthService{}
	h := NewAuthHandler(stub, stubRoles{})

	c, rec := newTestContext(http.MethodPost, "/auth/signout", "", "u1", domain.RoleCustomer)
	if err := h.SignOut(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(stub.signedOut) != 1 || stub.signedOut[0] != "s-u1" {
		t.Fatalf("expected session s-u1 revoked, got %v", stub.signedOut)
	}
}

func TestAuthHandler_Session_WithoutGate(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, stubRoles{})

	c, _ := newTestContext(http.MethodGet, "/auth/session", "", "", "")
	var he *echo.HTTPError
	if err := h.Session(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, s *domain.Session) (*domain.Session, error) {
			return &domain.Session{ID: s.ID, UserID: s.UserID, Token: "fresh"}, nil
		},
	}
	h := NewAuthHandler(stub, stubRoles{})

	c, rec := newTestContext(http.MethodPost, "/auth/refresh", "", "u1", domain.RoleAdmin)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp sessionResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Token != "fresh" || resp.Role != domain.RoleAdmin {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
