package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

// BookingPage is one page of the admin booking list.
type BookingPage struct {
	Items      []*domain.BookingDetail `json:"items"`
	Pagination struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalPages int   `json:"total_pages"`
	} `json:"pagination"`
}

// Stats backs the admin dashboard.
type Stats struct {
	UsersByRole map[string]int64    `json:"users_by_role"`
	Bookings    domain.BookingStats `json:"bookings"`
}

type confirmBody struct {
	Wizard *domain.Wizard `json:"wizard"`
	Error  string         `json:"error"`
}

// --- Catalog and profile ---

func (c *Client) Services(ctx context.Context) ([]domain.ServicePackage, error) {
	var out []domain.ServicePackage
	if err := c.do(ctx, http.MethodGet, "/v1/services", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MyProfile(ctx context.Context) (*domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, http.MethodGet, "/v1/me/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Booking wizard ---

func (c *Client) StartWizard(ctx context.Context, in ports.StartWizardInput) (*domain.Wizard, error) {
	return c.wizardCall(ctx, http.MethodPost, "/v1/booking-wizards", map[string]string{
		"service_id": in.ServiceID,
		"location":   in.Location,
		"notes":      in.Notes,
	})
}

func (c *Client) Wizard(ctx context.Context, id string) (*domain.Wizard, error) {
	return c.wizardCall(ctx, http.MethodGet, wizardPath(id, ""), nil)
}

func (c *Client) SetSchedule(ctx context.Context, id, date, clock string) (*domain.Wizard, error) {
	return c.wizardCall(ctx, http.MethodPut, wizardPath(id, "/schedule"), map[string]string{"date": date, "time": clock})
}

func (c *Client) SetPayment(ctx context.Context, id, evcNumber string) (*domain.Wizard, error) {
	return c.wizardCall(ctx, http.MethodPut, wizardPath(id, "/payment"), map[string]string{"evc_number": evcNumber})
}

func (c *Client) WizardBack(ctx context.Context, id string) (*domain.Wizard, error) {
	return c.wizardCall(ctx, http.MethodPost, wizardPath(id, "/back"), nil)
}

// Confirm pays and books. A declined payment returns the failed wizard with
// a *domain.PaymentError carrying the gateway's message; a booking that
// could not be saved returns it with a *domain.PersistenceError.
func (c *Client) Confirm(ctx context.Context, id string) (*domain.Wizard, error) {
	var out confirmBody
	err := c.do(ctx, http.MethodPost, wizardPath(id, "/confirm"), nil, &out)
	if err == nil {
		return out.Wizard, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return nil, err
	}
	switch apiErr.Status {
	case http.StatusPaymentRequired, http.StatusServiceUnavailable:
		if json.Unmarshal(apiErr.body, &out) != nil || out.Wizard == nil {
			return nil, err
		}
		if apiErr.Status == http.StatusPaymentRequired {
			return out.Wizard, &domain.PaymentError{Message: out.Error}
		}
		return out.Wizard, domain.NewPersistenceError("save booking", errors.New(out.Error))
	}
	return nil, err
}

func (c *Client) wizardCall(ctx context.Context, method, path string, in any) (*domain.Wizard, error) {
	var out domain.Wizard
	if err := c.do(ctx, method, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func wizardPath(id, suffix string) string {
	return "/v1/booking-wizards/" + url.PathEscape(id) + suffix
}

// --- Own bookings ---

func (c *Client) MyBookings(ctx context.Context) ([]ports.OwnBooking, error) {
	var out []ports.OwnBooking
	if err := c.do(ctx, http.MethodGet, "/v1/bookings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CancelBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return c.bookingCall(ctx, http.MethodPost, "/v1/bookings/"+url.PathEscape(id)+"/cancel", nil)
}

// --- Admin ---

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.do(ctx, http.MethodGet, "/v1/admin/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AllBookings(ctx context.Context, in ports.ListBookingsInput) (*BookingPage, error) {
	q := url.Values{}
	if in.Status != "" {
		q.Set("status", in.Status)
	}
	if in.Page > 0 {
		q.Set("page", strconv.Itoa(in.Page))
	}
	if in.Limit > 0 {
		q.Set("limit", strconv.Itoa(in.Limit))
	}
	path := "/v1/admin/bookings"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out BookingPage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetBookingStatus(ctx context.Context, id, status string) (*domain.Booking, error) {
	return c.bookingCall(ctx, http.MethodPatch, "/v1/admin/bookings/"+url.PathEscape(id)+"/status", map[string]string{"status": status})
}

// AssignBooking assigns an employee; an empty employeeID unassigns.
func (c *Client) AssignBooking(ctx context.Context, id, employeeID string) (*domain.Booking, error) {
	return c.bookingCall(ctx, http.MethodPut, "/v1/admin/bookings/"+url.PathEscape(id)+"/assignee", map[string]string{"employee_id": employeeID})
}

func (c *Client) BookingEvents(ctx context.Context, id string) ([]*domain.BookingEvent, error) {
	var out []*domain.BookingEvent
	if err := c.do(ctx, http.MethodGet, "/v1/admin/bookings/"+url.PathEscape(id)+"/events", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OrphanedPayments lists approved charges whose booking was not saved.
func (c *Client) OrphanedPayments(ctx context.Context) ([]*domain.BookingEvent, error) {
	var out []*domain.BookingEvent
	if err := c.do(ctx, http.MethodGet, "/v1/admin/payments/orphaned", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Employees(ctx context.Context) ([]*domain.Profile, error) {
	var out []*domain.Profile
	if err := c.do(ctx, http.MethodGet, "/v1/admin/employees", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateEmployee(ctx context.Context, in ports.CreateEmployeeInput) (*domain.Profile, error) {
	var out domain.Profile
	err := c.do(ctx, http.MethodPost, "/v1/admin/employees", map[string]string{
		"email":    in.Email,
		"password": in.Password,
		"username": in.Username,
		"phone":    in.Phone,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEmployee(ctx context.Context, id string, upd ports.ProfileUpdate) (*domain.Profile, error) {
	body := map[string]string{}
	if upd.Username != nil {
		body["username"] = *upd.Username
	}
	if upd.Phone != nil {
		body["phone"] = *upd.Phone
	}
	var out domain.Profile
	if err := c.do(ctx, http.MethodPatch, "/v1/admin/employees/"+url.PathEscape(id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/admin/employees/"+url.PathEscape(id), nil, nil)
}

// --- Employee ---

func (c *Client) Tasks(ctx context.Context) ([]*domain.BookingDetail, error) {
	var out []*domain.BookingDetail
	if err := c.do(ctx, http.MethodGet, "/v1/employee/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetTaskStatus(ctx context.Context, id, status string) (*domain.Booking, error) {
	return c.bookingCall(ctx, http.MethodPatch, "/v1/employee/tasks/"+url.PathEscape(id)+"/status", map[string]string{"status": status})
}

func (c *Client) bookingCall(ctx context.Context, method, path string, in any) (*domain.Booking, error) {
	var out domain.Booking
	if err := c.do(ctx, method, path, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
