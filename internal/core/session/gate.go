package session

import (
	"context"
	"net/url"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

// SignInPath is where gates send callers that may not enter.
const SignInPath = "/signin"

// Action is what a gate tells the view to do.
type Action int

const (
	ActionLoading Action = iota
	ActionRedirect
	ActionRender
)

func (a Action) String() string {
	switch a {
	case ActionLoading:
		return "loading"
	case ActionRedirect:
		return "redirect"
	case ActionRender:
		return "render"
	}
	return "unknown"
}

// Decision is a gate verdict. RedirectTo is set for ActionRedirect;
// Mismatch tells a signed-in caller with the wrong role apart from a
// signed-out one.
type Decision struct {
	Action     Action
	RedirectTo string
	Mismatch   bool
}

// Requirement is what a gate demands of the caller. A zero Role means any
// signed-in user.
type Requirement struct {
	Role domain.Role
}

// Authenticated admits any signed-in user.
func Authenticated() Requirement { return Requirement{} }

// Admin admits only admins.
func Admin() Requirement { return Requirement{Role: domain.RoleAdmin} }

// Employee admits only employees.
func Employee() Requirement { return Requirement{Role: domain.RoleEmployee} }

// Decide applies a requirement to a state. origin is the location the
// caller tried to reach; it is carried on the redirect so sign-in can
// return there.
func Decide(st State, req Requirement, origin string) Decision {
	switch st.Status {
	case StatusLoading:
		return Decision{Action: ActionLoading}
	case StatusUnauthenticated:
		return redirect(origin, false)
	}

	if req.Role == "" {
		return Decision{Action: ActionRender}
	}
	if !st.RoleResolved || st.Role != req.Role {
		return redirect(origin, true)
	}
	return Decision{Action: ActionRender}
}

// SignInURL is the sign-in location carrying origin.
func SignInURL(origin string) string {
	if origin == "" {
		return SignInPath
	}
	return SignInPath + "?from=" + url.QueryEscape(origin)
}

func redirect(origin string, mismatch bool) Decision {
	return Decision{Action: ActionRedirect, RedirectTo: SignInURL(origin), Mismatch: mismatch}
}

// Guard is a gate that re-reads the caller's role from the profile store
// whenever the state does not carry a resolved one. A lookup failure
// leaves the role unresolved, which denies entry to role-gated views.
type Guard struct {
	Requirement Requirement
	Roles       ports.RoleResolver
}

// Resolve fills in the role of an authenticated state that lacks one.
func (g Guard) Resolve(ctx context.Context, st State) State {
	if st.Status != StatusAuthenticated || st.RoleResolved || g.Roles == nil {
		return st
	}
	role, err := g.Roles.ResolveRole(ctx, st.UserID())
	if err != nil {
		return st
	}
	return SignedIn(st.Session, role)
}

// Check decides for st, resolving the role first when the requirement
// names one.
func (g Guard) Check(ctx context.Context, st State, origin string) Decision {
	if g.Requirement.Role != "" {
		st = g.Resolve(ctx, st)
	}
	return Decide(st, g.Requirement, origin)
}
