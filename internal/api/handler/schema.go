package handler

import (
	"time"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// --- Auth ---

type signUpRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Username string `json:"username" validate:"required,max=80"`
	Phone    string `json:"phone"    validate:"required,max=20"`
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type sessionResponse struct {
	Token     string       `json:"token,omitempty"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
	Role      domain.Role  `json:"role,omitempty"`
}

type signUpResponse struct {
	User    userResponse `json:"user"`
	Message string       `json:"message"`
}

// --- Wizard ---

type startWizardRequest struct {
	ServiceID string `json:"service_id" validate:"required"`
	Location  string `json:"location"   validate:"max=200"`
	Notes     string `json:"notes"      validate:"max=1000"`
}

// Schedule and payment fields are checked by the wizard itself so the
// messages match the form.
type scheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type paymentRequest struct {
	EVCNumber string `json:"evc_number"`
}

type confirmResponse struct {
	Wizard *domain.Wizard `json:"wizard"`
	Error  string         `json:"error,omitempty"`
	Links  *bookingLinks  `json:"_links,omitempty"`
}

type bookingLinks struct {
	Bookings string `json:"bookings"`
}

// --- Bookings ---

type listBookingsQuery struct {
	Status string `query:"status"`
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
}

type pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type bookingPageResponse struct {
	Items      []*domain.BookingDetail `json:"items"`
	Pagination pagination              `json:"pagination"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// assignRequest with an empty employee_id clears the assignment.
type assignRequest struct {
	EmployeeID string `json:"employee_id"`
}

type statsResponse struct {
	UsersByRole map[string]int64    `json:"users_by_role"`
	Bookings    domain.BookingStats `json:"bookings"`
}

// --- Employees ---

type createEmployeeRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Username string `json:"username" validate:"required,max=80"`
	Phone    string `json:"phone"    validate:"max=20"`
}

type updateEmployeeRequest struct {
	Username *string `json:"username" validate:"omitempty,max=80"`
	Phone    *string `json:"phone"    validate:"omitempty,max=20"`
}
