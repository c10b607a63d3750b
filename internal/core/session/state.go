package session

import "github.com/brightnest/cleaning-portal/internal/core/domain"

// Status is the authentication status seen by views and gates.
type Status int

const (
	StatusLoading Status = iota
	StatusUnauthenticated
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// State is a snapshot of who is signed in. Role is meaningful only when
// RoleResolved is true; a session whose profile could not be read is
// authenticated with no resolved role.
type State struct {
	Status       Status
	Session      *domain.Session
	Role         domain.Role
	RoleResolved bool
}

// UserID returns the signed-in user's ID, or "" when signed out.
func (s State) UserID() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.UserID
}

// Loading is the state before initialization completes.
func Loading() State { return State{Status: StatusLoading} }

// SignedOut is the state with no session.
func SignedOut() State { return State{Status: StatusUnauthenticated} }

// SignedIn builds an authenticated state. An empty role means unresolved.
func SignedIn(s *domain.Session, role domain.Role) State {
	return State{
		Status:       StatusAuthenticated,
		Session:      s,
		Role:         role,
		RoleResolved: role.Valid(),
	}
}
