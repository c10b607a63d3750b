package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

// BookingHandler serves booking records to owners, admins and employees.
type BookingHandler struct {
	bookings ports.BookingService
}

func NewBookingHandler(bookings ports.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// ListMine handles GET /v1/bookings.
//
// @Summary      My bookings
// @Description  Newest first. can_cancel is true only for pending bookings.
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ports.OwnBooking
// @Failure      401  {object}  map[string]string
// @Router       /v1/bookings [get]
func (h *BookingHandler) ListMine(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	list, err := h.bookings.ListMine(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	if list == nil {
		list = []ports.OwnBooking{}
	}
	return c.JSON(http.StatusOK, list)
}

// Cancel handles POST /v1/bookings/:id/cancel.
//
// @Summary      Cancel my booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {object}  domain.Booking
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /v1/bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	b, err := h.bookings.Cancel(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// ListAll handles GET /v1/admin/bookings.
//
// @Summary      All bookings
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  bookingPageResponse
// @Failure      403     {object}  map[string]string
// @Failure      422     {object}  map[string]string
// @Router       /v1/admin/bookings [get]
func (h *BookingHandler) ListAll(c echo.Context) error {
	var q listBookingsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	page, err := h.bookings.ListAll(c.Request().Context(), ports.ListBookingsInput{
		Status: q.Status,
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBookingPageResponse(page))
}

// UpdateStatus handles PATCH /v1/admin/bookings/:id/status and
// PATCH /v1/employee/tasks/:id/status. The service applies the caller's
// role rules.
//
// @Summary      Set booking status
// @Tags         admin,employee
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Booking ID"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  domain.Booking
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/admin/bookings/{id}/status [patch]
// @Router       /v1/employee/tasks/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := h.bookings.UpdateStatus(c.Request().Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// Assign handles PUT /v1/admin/bookings/:id/assignee.
//
// @Summary      Assign employee
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Booking ID"
// @Param        body  body      assignRequest  true  "Employee ID, empty to unassign"
// @Success      200   {object}  domain.Booking
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/admin/bookings/{id}/assignee [put]
func (h *BookingHandler) Assign(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	b, err := h.bookings.Assign(c.Request().Context(), actor, c.Param("id"), req.EmployeeID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, b)
}

// History handles GET /v1/admin/bookings/:id/events.
//
// @Summary      Booking audit trail
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Booking ID"
// @Success      200  {array}   domain.BookingEvent
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/bookings/{id}/events [get]
func (h *BookingHandler) History(c echo.Context) error {
	events, err := h.bookings.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if events == nil {
		events = []*domain.BookingEvent{}
	}
	return c.JSON(http.StatusOK, events)
}

// OrphanedPayments handles GET /v1/admin/payments/orphaned.
//
// @Summary      Approved payments without a booking
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.BookingEvent
// @Failure      503  {object}  map[string]string
// @Router       /v1/admin/payments/orphaned [get]
func (h *BookingHandler) OrphanedPayments(c echo.Context) error {
	events, err := h.bookings.OrphanedPayments(c.Request().Context())
	if err != nil {
		return err
	}
	if events == nil {
		events = []*domain.BookingEvent{}
	}
	return c.JSON(http.StatusOK, events)
}

// Stats handles GET /v1/admin/stats.
//
// @Summary      Dashboard figures
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statsResponse
// @Router       /v1/admin/stats [get]
func (h *BookingHandler) Stats(c echo.Context) error {
	stats, err := h.bookings.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toStatsResponse(stats))
}

// Tasks handles GET /v1/employee/tasks.
//
// @Summary      My assigned tasks
// @Description  Ordered by scheduled date and time.
// @Tags         employee
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  domain.BookingDetail
// @Router       /v1/employee/tasks [get]
func (h *BookingHandler) Tasks(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	tasks, err := h.bookings.ListTasks(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []*domain.BookingDetail{}
	}
	return c.JSON(http.StatusOK, tasks)
}
