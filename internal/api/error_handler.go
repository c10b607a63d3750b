package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var (
		credErr    *domain.CredentialError
		validErr   *domain.ValidationError
		payErr     *domain.PaymentError
		persistErr *domain.PersistenceError
	)
	switch {
	case errors.As(err, &credErr):
		switch {
		case errors.Is(err, domain.ErrUserExists):
			return http.StatusConflict, errorResponse{Error: credErr.Error()}
		case errors.Is(err, domain.ErrWeakPassword):
			return http.StatusBadRequest, errorResponse{Error: credErr.Error()}
		}
		return http.StatusUnauthorized, errorResponse{Error: credErr.Error()}
	case errors.As(err, &validErr):
		return http.StatusUnprocessableEntity, errorResponse{Error: validErr.Message, Field: validErr.Field}
	case errors.As(err, &payErr):
		// The gateway's message is shown to the payer unchanged.
		return http.StatusPaymentRequired, errorResponse{Error: payErr.Error()}
	case errors.As(err, &persistErr):
		log.Error().
			Err(err).
			Str("op", persistErr.Op).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("record store unavailable")
		return http.StatusServiceUnavailable, errorResponse{Error: "service temporarily unavailable, please try again"}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrWizardNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrCancelNotAllowed),
		errors.Is(err, domain.ErrInvalidWizardStep),
		errors.Is(err, domain.ErrProfileExists):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrNotAnEmployee),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrUnknownService):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, errorResponse{Error: err.Error()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}
