package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightnest/cleaning-portal/internal/core/session"
)

type gateResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// Gate enforces a route guard on the state stored by Auth:
//   - loading: 503 with Retry-After, the caller should try again.
//   - signed out: 401 pointing at the sign-in location.
//   - wrong or unknown role: 403 pointing at the sign-in location.
//   - allowed: the session, user_id and role are set on the context.
func Gate(guard session.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st := guard.Resolve(c.Request().Context(), StateFrom(c))
			d := session.Decide(st, guard.Requirement, c.Request().URL.RequestURI())

			switch d.Action {
			case session.ActionLoading:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, gateResponse{Error: "session check unavailable, retry shortly"})
			case session.ActionRedirect:
				c.Response().Header().Set(echo.HeaderLocation, d.RedirectTo)
				if d.Mismatch {
					return c.JSON(http.StatusForbidden, gateResponse{Error: "forbidden", Redirect: d.RedirectTo})
				}
				return c.JSON(http.StatusUnauthorized, gateResponse{Error: "sign in required", Redirect: d.RedirectTo})
			}

			c.Set("session", st.Session)
			c.Set("user_id", st.UserID())
			c.Set("role", st.Role)
			return next(c)
		}
	}
}
