package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	roles       ports.RoleResolver
}

func NewAuthHandler(authService ports.AuthService, roles ports.RoleResolver) *AuthHandler {
	return &AuthHandler{authService: authService, roles: roles}
}

// SignUp creates a customer account. The caller is not signed in.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Account details"
// @Success      201   {object}  signUpResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.SignUp(c.Request().Context(), ports.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, signUpResponse{
		User:    userResponse{ID: user.ID, Email: user.Email},
		Message: "Account created. Please sign in.",
	})
}

// SignIn authenticates with email and password and returns a bearer token.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sess, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toSessionResponse(sess, h.roleOf(c, sess.UserID)))
}

// Session returns the caller's current session and role.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	role, _ := c.Get("role").(domain.Role)
	return c.JSON(http.StatusOK, toSessionResponse(sess, role))
}

// Refresh issues a new token for the caller's session.
//
// @Summary      Refresh token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	refreshed, err := h.authService.Refresh(c.Request().Context(), sess)
	if err != nil {
		return err
	}
	role, _ := c.Get("role").(domain.Role)
	return c.JSON(http.StatusOK, toSessionResponse(refreshed, role))
}

// SignOut revokes the caller's session.
//
// @Summary      Sign out
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.authService.SignOut(c.Request().Context(), sess.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// roleOf looks up the role to report with a fresh session. A failed lookup
// leaves it empty; gates re-check on every request.
func (h *AuthHandler) roleOf(c echo.Context, userID string) domain.Role {
	role, err := h.roles.ResolveRole(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Warnf("role lookup failed for %s: %v", userID, err)
		return ""
	}
	return role
}
