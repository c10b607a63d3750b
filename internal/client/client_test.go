package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
	"github.com/brightnest/cleaning-portal/internal/core/session"
)

// fakePortal answers the API routes the client uses. tokens maps a bearer
// token to its user ID.
type fakePortal struct {
	mu        sync.Mutex
	roles     map[string]domain.Role
	tokens    map[string]string
	signOuts  int
	failOut   bool
	lastQuery string
}

func newFakePortal() *fakePortal {
	return &fakePortal{
		roles:  map[string]domain.Role{"u-admin": domain.RoleAdmin, "u-amina": domain.RoleCustomer},
		tokens: map[string]string{},
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (p *fakePortal) user(r *http.Request) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	tok := r.Header.Get("Authorization")
	if len(tok) < 7 {
		return ""
	}
	return p.tokens[tok[7:]]
}

func (p *fakePortal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method + " " + r.URL.Path {
	case "POST /auth/signup":
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["email"] == "taken@example.com" {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "user already registered"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"user": map[string]string{"id": "u-new", "email": in["email"]}})
	case "POST /auth/signin":
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		ids := map[string]string{"admin@example.com": "u-admin", "amina@example.com": "u-amina"}
		id, ok := ids[in["email"]]
		if !ok || in["password"] != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid login credentials"})
			return
		}
		tok := "tok-" + id
		p.mu.Lock()
		p.tokens[tok] = id
		p.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"token": tok, "expires_at": time.Now().Add(time.Hour),
			"user": map[string]string{"id": id, "email": in["email"]}, "role": p.roles[id],
		})
	case "POST /auth/signout":
		p.mu.Lock()
		p.signOuts++
		fail := p.failOut
		p.mu.Unlock()
		if fail {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "service temporarily unavailable, please try again"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case "POST /auth/refresh":
		id := p.user(r)
		if id == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "sign in required"})
			return
		}
		p.mu.Lock()
		p.tokens["fresh-"+id] = id
		p.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"token": "fresh-" + id, "user": map[string]string{"id": id}})
	case "GET /v1/me/profile":
		id := p.user(r)
		if id == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "sign in required", "redirect": "/signin?from=%2Fv1%2Fme%2Fprofile"})
			return
		}
		writeJSON(w, http.StatusOK, domain.Profile{ID: id, Role: p.roles[id]})
	case "POST /v1/booking-wizards/w1/confirm":
		writeJSON(w, http.StatusPaymentRequired, map[string]any{
			"wizard": domain.Wizard{ID: "w1", Step: domain.StepFailed},
			"error":  "Payment declined: insufficient balance",
		})
	case "GET /v1/admin/bookings":
		p.mu.Lock()
		p.lastQuery = r.URL.RawQuery
		p.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"items": []any{}, "pagination": map[string]int{"total": 0, "page": 2, "limit": 5}})
	case "GET /v1/admin/payments/orphaned":
		writeJSON(w, http.StatusOK, []domain.BookingEvent{
			{WizardID: "w1", Type: domain.EventPaymentOrphaned, ReferenceID: "REF1", Amount: 59},
		})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func newTestClient(t *testing.T, p *fakePortal) (*Client, string) {
	t.Helper()
	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)
	path := filepath.Join(t.TempDir(), "session.json")
	return New(Config{BaseURL: srv.URL, TokenFile: path}, zerolog.Nop()), path
}

type eventLog struct {
	mu     sync.Mutex
	events []ports.SessionEventType
}

func (l *eventLog) record(ev ports.SessionEvent) {
	l.mu.Lock()
	l.events = append(l.events, ev.Type)
	l.mu.Unlock()
}

func TestSessionStore_SignInPersistsAndNotifies(t *testing.T) {
	api, path := newTestClient(t, newFakePortal())
	store := NewSessionStore(api)
	var log eventLog
	store.OnChange(log.record)

	sess, err := store.SignIn(context.Background(), "amina@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.UserID != "u-amina" || sess.Token != "tok-u-amina" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if len(log.events) != 1 || log.events[0] != ports.SessionSignedIn {
		t.Fatalf("expected one signed_in event, got %v", log.events)
	}

	// A fresh client on the same token file picks the session up.
	again := NewSessionStore(New(Config{BaseURL: api.baseURL, TokenFile: path}, zerolog.Nop()))
	cur, err := again.CurrentSession(context.Background())
	if err != nil || cur == nil || cur.UserID != "u-amina" {
		t.Fatalf("expected stored session, got %+v, %v", cur, err)
	}
}

func TestSessionStore_CredentialErrors(t *testing.T) {
	api, _ := newTestClient(t, newFakePortal())
	store := NewSessionStore(api)
	ctx := context.Background()

	_, err := store.SignIn(ctx, "amina@example.com", "wrong")
	var ce *domain.CredentialError
	if !errors.As(err, &ce) || !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	_, err = store.SignUp(ctx, ports.SignUpInput{Email: "taken@example.com", Password: "secret1", Username: "T", Phone: "1"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	u, err := store.SignUp(ctx, ports.SignUpInput{Email: "new@example.com", Password: "secret1", Username: "N", Phone: "1"})
	if err != nil || u.ID != "u-new" {
		t.Fatalf("expected new user, got %+v, %v", u, err)
	}
	if cur, _ := store.CurrentSession(ctx); cur != nil {
		t.Fatalf("sign up must not sign in")
	}
}

func TestSessionStore_SignOutClearsEvenWhenServerFails(t *testing.T) {
	portal := newFakePortal()
	portal.failOut = true
	api, path := newTestClient(t, portal)
	store := NewSessionStore(api)
	ctx := context.Background()

	if _, err := store.SignIn(ctx, "amina@example.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	var log eventLog
	store.OnChange(log.record)

	if err := store.SignOut(ctx); err == nil {
		t.Fatalf("expected the server failure to be reported")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("token file should be removed, stat err: %v", err)
	}
	if len(log.events) != 1 || log.events[0] != ports.SessionSignedOut {
		t.Fatalf("expected one signed_out event, got %v", log.events)
	}
}

func TestSessionStore_ExpiredSessionDiscarded(t *testing.T) {
	api, path := newTestClient(t, newFakePortal())
	if err := api.tokens.Save(&domain.Session{UserID: "u-amina", Token: "old", ExpiresAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("save: %v", err)
	}

	cur, err := NewSessionStore(api).CurrentSession(context.Background())
	if err != nil || cur != nil {
		t.Fatalf("expected no session, got %+v, %v", cur, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expired session should be removed")
	}
}

func TestSessionStore_Refresh(t *testing.T) {
	api, _ := newTestClient(t, newFakePortal())
	store := NewSessionStore(api)
	ctx := context.Background()
	var log eventLog
	store.OnChange(log.record)

	if _, err := store.Refresh(ctx); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound without a session, got %v", err)
	}

	if _, err := store.SignIn(ctx, "amina@example.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	sess, err := store.Refresh(ctx)
	if err != nil || sess.Token != "fresh-u-amina" {
		t.Fatalf("expected refreshed token, got %+v, %v", sess, err)
	}

	want := []ports.SessionEventType{ports.SessionExpired, ports.SessionSignedIn, ports.SessionTokenRefreshed}
	if len(log.events) != len(want) {
		t.Fatalf("expected %v, got %v", want, log.events)
	}
	for i := range want {
		if log.events[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, log.events)
		}
	}
}

func TestRoleResolver(t *testing.T) {
	api, _ := newTestClient(t, newFakePortal())
	store := NewSessionStore(api)
	roles := NewRoleResolver(api)
	ctx := context.Background()

	if _, err := roles.ResolveRole(ctx, "u-admin"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound when signed out, got %v", err)
	}

	if _, err := store.SignIn(ctx, "admin@example.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	role, err := roles.ResolveRole(ctx, "u-admin")
	if err != nil || role != domain.RoleAdmin {
		t.Fatalf("expected admin, got %q, %v", role, err)
	}
	if _, err := roles.ResolveRole(ctx, "someone-else"); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestController_OverHTTP(t *testing.T) {
	api, _ := newTestClient(t, newFakePortal())
	store := NewSessionStore(api)
	ctrl := session.NewController(store, NewRoleResolver(api), zerolog.Nop())
	defer ctrl.Close()
	ctx := context.Background()

	if err := ctrl.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	admin := session.Guard{Requirement: session.Admin(), Roles: NewRoleResolver(api)}

	d := admin.Check(ctx, ctrl.State(), "/admin")
	if d.Action != session.ActionRedirect || d.RedirectTo != "/signin?from=%2Fadmin" {
		t.Fatalf("expected sign-in redirect, got %+v", d)
	}

	if err := ctrl.SignIn(ctx, "admin@example.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	st := ctrl.State()
	if st.Status != session.StatusAuthenticated || st.Role != domain.RoleAdmin {
		t.Fatalf("expected authenticated admin, got %+v", st)
	}
	if d := admin.Check(ctx, st, "/admin"); d.Action != session.ActionRender {
		t.Fatalf("expected render, got %+v", d)
	}

	ctrl.SignOut(ctx)
	if ctrl.State().Status != session.StatusUnauthenticated {
		t.Fatalf("expected signed out")
	}
}

func TestClient_ConfirmDeclined(t *testing.T) {
	api, _ := newTestClient(t, newFakePortal())

	w, err := api.Confirm(context.Background(), "w1")
	var pe *domain.PaymentError
	if !errors.As(err, &pe) || pe.Error() != "Payment declined: insufficient balance" {
		t.Fatalf("expected gateway message verbatim, got %v", err)
	}
	if w == nil || w.Step != domain.StepFailed {
		t.Fatalf("expected failed wizard, got %+v", w)
	}
}

func TestClient_AllBookingsQuery(t *testing.T) {
	portal := newFakePortal()
	api, _ := newTestClient(t, portal)

	page, err := api.AllBookings(context.Background(), ports.ListBookingsInput{Status: "pending", Page: 2, Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if portal.lastQuery != "limit=5&page=2&status=pending" {
		t.Fatalf("unexpected query %q", portal.lastQuery)
	}
	if page.Pagination.Page != 2 || page.Items == nil {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestClient_NotFoundIsAPIError(t *testing.T) {
	api, _ := newTestClient(t, newFakePortal())

	_, err := api.Wizard(context.Background(), "missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Message != "not found" {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
}

func TestClient_OrphanedPayments(t *testing.T) {
	api, _ := newTestClient(t, newFakePortal())

	events, err := api.OrphanedPayments(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].WizardID != "w1" || events[0].ReferenceID != "REF1" {
		t.Fatalf("unexpected events: %+v", events)
	}
}
