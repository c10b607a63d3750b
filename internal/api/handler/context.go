package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

// ctxActor extracts the caller injected by the Gate middleware. A missing
// user ID means the route was mounted without a gate.
func ctxActor(c echo.Context) (ports.Actor, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	role, _ := c.Get("role").(domain.Role)
	return ports.Actor{ID: userID, Role: role}, nil
}

func ctxSession(c echo.Context) (*domain.Session, error) {
	s, _ := c.Get("session").(*domain.Session)
	if s == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return s, nil
}

// bindAndValidate decodes the request into req and runs the validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
