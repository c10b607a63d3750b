package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

// ProfileHandler serves the public catalog, the caller's own profile and
// the admin employee management screens.
type ProfileHandler struct {
	profiles ports.ProfileService
}

func NewProfileHandler(profiles ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Services lists the bookable service packages.
//
// @Summary      List service packages
// @Tags         catalog
// @Produce      json
// @Success      200  {array}  domain.ServicePackage
// @Router       /v1/services [get]
func (h *ProfileHandler) Services(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.Catalog())
}

// Me returns the caller's profile.
//
// @Summary      Own profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Profile
// @Failure      404  {object}  map[string]string
// @Router       /v1/me/profile [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	p, err := h.profiles.Get(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// ListEmployees handles GET /v1/admin/employees.
//
// @Summary      List employees
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Profile
// @Failure      403  {object}  map[string]string
// @Router       /v1/admin/employees [get]
func (h *ProfileHandler) ListEmployees(c echo.Context) error {
	list, err := h.profiles.ListEmployees(c.Request().Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Profile{}
	}
	return c.JSON(http.StatusOK, list)
}

// CreateEmployee provisions an employee account.
//
// @Summary      Create employee
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createEmployeeRequest  true  "Employee account"
// @Success      201   {object}  domain.Profile
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/admin/employees [post]
func (h *ProfileHandler) CreateEmployee(c echo.Context) error {
	var req createEmployeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.profiles.CreateEmployee(c.Request().Context(), ports.CreateEmployeeInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// UpdateEmployee edits an employee's display fields.
//
// @Summary      Update employee
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Employee ID"
// @Param        body  body      updateEmployeeRequest  true  "Fields to change"
// @Success      200   {object}  domain.Profile
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/admin/employees/{id} [patch]
func (h *ProfileHandler) UpdateEmployee(c echo.Context) error {
	var req updateEmployeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.profiles.UpdateEmployee(c.Request().Context(), c.Param("id"), toProfileUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// DeleteEmployee removes an employee's profile.
//
// @Summary      Delete employee
// @Tags         admin
// @Security     BearerAuth
// @Param        id  path  string  true  "Employee ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/employees/{id} [delete]
func (h *ProfileHandler) DeleteEmployee(c echo.Context) error {
	if err := h.profiles.DeleteEmployee(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
