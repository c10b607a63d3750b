package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/session"
)

// StateKey is the echo context key holding the caller's session.State.
const StateKey = "session_state"

// SessionVerifier checks a bearer token against the live sessions.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Session, error)
}

// Auth derives the caller's session state from the bearer token and stores
// it under StateKey. It never rejects; gates decide what the state allows.
// A missing or invalid token yields a signed-out state, and a session store
// outage yields a loading state.
func Auth(verifier SessionVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(StateKey, stateFor(c, verifier))
			return next(c)
		}
	}
}

func stateFor(c echo.Context, verifier SessionVerifier) session.State {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return session.SignedOut()
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return session.SignedOut()
	}

	sess, err := verifier.Verify(c.Request().Context(), parts[1])
	if err != nil {
		var pe *domain.PersistenceError
		if errors.As(err, &pe) {
			c.Logger().Warnf("session check unavailable: %v", err)
			return session.Loading()
		}
		return session.SignedOut()
	}
	return session.SignedIn(sess, "")
}

// StateFrom returns the state stored by Auth, or a signed-out state when
// Auth did not run.
func StateFrom(c echo.Context) session.State {
	st, ok := c.Get(StateKey).(session.State)
	if !ok {
		return session.SignedOut()
	}
	return st
}
