package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

// WizardHandler drives the booking wizard for the signed-in caller.
type WizardHandler struct {
	wizards ports.WizardService
}

func NewWizardHandler(wizards ports.WizardService) *WizardHandler {
	return &WizardHandler{wizards: wizards}
}

// Start opens a wizard for a service package.
//
// @Summary      Start booking wizard
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      startWizardRequest  true  "Service package"
// @Success      201   {object}  domain.Wizard
// @Failure      422   {object}  map[string]string
// @Router       /v1/booking-wizards [post]
func (h *WizardHandler) Start(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req startWizardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	w, err := h.wizards.Start(c.Request().Context(), actor.ID, ports.StartWizardInput{
		ServiceID: req.ServiceID,
		Location:  req.Location,
		Notes:     req.Notes,
	})
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, "/v1/booking-wizards/"+w.ID)
	return c.JSON(http.StatusCreated, w)
}

// Get returns the caller's wizard.
//
// @Summary      Get booking wizard
// @Tags         wizard
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Wizard ID"
// @Success      200  {object}  domain.Wizard
// @Failure      404  {object}  map[string]string
// @Router       /v1/booking-wizards/{id} [get]
func (h *WizardHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	w, err := h.wizards.Get(c.Request().Context(), actor.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}

// SetSchedule records the date and time and advances to payment.
//
// @Summary      Choose date and time
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Wizard ID"
// @Param        body  body      scheduleRequest  true  "Date (YYYY-MM-DD) and time (HH:MM)"
// @Success      200   {object}  domain.Wizard
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/booking-wizards/{id}/schedule [put]
func (h *WizardHandler) SetSchedule(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req scheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	w, err := h.wizards.SetSchedule(c.Request().Context(), actor.ID, c.Param("id"), req.Date, req.Time)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}

// SetPayment records the EVC Plus number and advances to confirmation.
//
// @Summary      Enter payment details
// @Tags         wizard
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Wizard ID"
// @Param        body  body      paymentRequest  true  "EVC Plus number"
// @Success      200   {object}  domain.Wizard
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/booking-wizards/{id}/payment [put]
func (h *WizardHandler) SetPayment(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req paymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	w, err := h.wizards.SetPayment(c.Request().Context(), actor.ID, c.Param("id"), req.EVCNumber)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}

// Back returns the wizard to the previous step.
//
// @Summary      Previous step
// @Tags         wizard
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Wizard ID"
// @Success      200  {object}  domain.Wizard
// @Failure      409  {object}  map[string]string
// @Router       /v1/booking-wizards/{id}/back [post]
func (h *WizardHandler) Back(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	w, err := h.wizards.Back(c.Request().Context(), actor.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}

// Confirm charges the payer and creates the booking. A declined charge or a
// failed save answers with the error and the failed wizard, which can be
// confirmed again.
//
// @Summary      Pay and book
// @Tags         wizard
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Wizard ID"
// @Success      201  {object}  confirmResponse
// @Failure      402  {object}  confirmResponse
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      503  {object}  confirmResponse
// @Router       /v1/booking-wizards/{id}/confirm [post]
func (h *WizardHandler) Confirm(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	w, err := h.wizards.Confirm(c.Request().Context(), actor.ID, c.Param("id"))
	if err == nil {
		return c.JSON(http.StatusCreated, confirmResponse{
			Wizard: w,
			Links:  &bookingLinks{Bookings: "/v1/bookings"},
		})
	}

	var (
		payErr     *domain.PaymentError
		persistErr *domain.PersistenceError
	)
	switch {
	case w != nil && errors.As(err, &payErr):
		return c.JSON(http.StatusPaymentRequired, confirmResponse{Wizard: w, Error: payErr.Error()})
	case w != nil && errors.As(err, &persistErr):
		c.Logger().Errorf("booking not saved for wizard %s: %v", w.ID, err)
		return c.JSON(http.StatusServiceUnavailable, confirmResponse{
			Wizard: w,
			Error:  "Your booking could not be saved. Please try again.",
		})
	}
	return err
}
