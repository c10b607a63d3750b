package session

import (
	"context"
	"errors"
	"testing"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

var sess = &domain.Session{ID: "s1", UserID: "u1", Email: "a@x.com"}

func TestDecide_Table(t *testing.T) {
	cases := []struct {
		name     string
		st       State
		req      Requirement
		want     Action
		mismatch bool
	}{
		{"loading", Loading(), Admin(), ActionLoading, false},
		{"signed out", SignedOut(), Authenticated(), ActionRedirect, false},
		{"any role", SignedIn(sess, domain.RoleCustomer), Authenticated(), ActionRender, false},
		{"unresolved role passes authenticated", SignedIn(sess, ""), Authenticated(), ActionRender, false},
		{"admin match", SignedIn(sess, domain.RoleAdmin), Admin(), ActionRender, false},
		{"employee match", SignedIn(sess, domain.RoleEmployee), Employee(), ActionRender, false},
		{"unresolved role", SignedIn(sess, ""), Admin(), ActionRedirect, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decide(tc.st, tc.req, "/admin/bookings")
			if got.Action != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got.Action)
			}
			if got.Action == ActionRedirect {
				if got.RedirectTo != "/signin?from=%2Fadmin%2Fbookings" {
					t.Fatalf("unexpected redirect %q", got.RedirectTo)
				}
				if got.Mismatch != tc.mismatch {
					t.Fatalf("expected mismatch=%v", tc.mismatch)
				}
			}
		})
	}
}

func TestDecide_EveryOtherRoleRedirects(t *testing.T) {
	for _, required := range []Requirement{Admin(), Employee()} {
		for _, role := range domain.Roles {
			got := Decide(SignedIn(sess, role), required, "/x")
			if role == required.Role {
				if got.Action != ActionRender {
					t.Errorf("role %s on %s gate: expected render, got %s", role, required.Role, got.Action)
				}
				continue
			}
			if got.Action != ActionRedirect || !got.Mismatch {
				t.Errorf("role %s on %s gate: expected redirect, got %+v", role, required.Role, got)
			}
		}
	}
}

func TestSignInURL(t *testing.T) {
	if got := SignInURL(""); got != "/signin" {
		t.Fatalf("unexpected url %q", got)
	}
	if got := SignInURL("/my-bookings"); got != "/signin?from=%2Fmy-bookings" {
		t.Fatalf("unexpected url %q", got)
	}
}

type stubRoles struct {
	role  domain.Role
	err   error
	calls int
}

func (s *stubRoles) ResolveRole(context.Context, string) (domain.Role, error) {
	s.calls++
	return s.role, s.err
}

func TestGuard_ReverifiesUnresolvedRole(t *testing.T) {
	roles := &stubRoles{role: domain.RoleAdmin}
	g := Guard{Requirement: Admin(), Roles: roles}

	got := g.Check(context.Background(), SignedIn(sess, ""), "/admin")
	if got.Action != ActionRender {
		t.Fatalf("expected render after re-verification, got %+v", got)
	}
	if roles.calls != 1 {
		t.Fatalf("expected one role lookup, got %d", roles.calls)
	}
}

func TestGuard_ResolvedRoleNotRequeried(t *testing.T) {
	roles := &stubRoles{role: domain.RoleAdmin}
	g := Guard{Requirement: Employee(), Roles: roles}

	got := g.Check(context.Background(), SignedIn(sess, domain.RoleCustomer), "/employee/tasks")
	if got.Action != ActionRedirect {
		t.Fatalf("expected redirect, got %+v", got)
	}
	if roles.calls != 0 {
		t.Fatalf("resolved role must not be re-queried")
	}
}

func TestGuard_LookupErrorDenies(t *testing.T) {
	g := Guard{Requirement: Admin(), Roles: &stubRoles{err: errors.New("network down")}}

	got := g.Check(context.Background(), SignedIn(sess, ""), "/admin")
	if got.Action != ActionRedirect || !got.Mismatch {
		t.Fatalf("expected redirect on lookup error, got %+v", got)
	}
}

func TestGuard_AuthenticatedSkipsLookup(t *testing.T) {
	roles := &stubRoles{role: domain.RoleCustomer}
	g := Guard{Requirement: Authenticated(), Roles: roles}

	if got := g.Check(context.Background(), SignedIn(sess, ""), "/book-now"); got.Action != ActionRender {
		t.Fatalf("expected render, got %+v", got)
	}
	if roles.calls != 0 {
		t.Fatalf("authenticated gate must not look up roles")
	}
}
