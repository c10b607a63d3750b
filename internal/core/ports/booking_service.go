package ports

import (
	"context"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// Actor is the verified caller of a booking operation.
type Actor struct {
	ID   string
	Role domain.Role
}

// OwnBooking is a booking as shown to its owner.
type OwnBooking struct {
	*domain.Booking
	CanCancel bool `json:"can_cancel"`
}

// ListBookingsInput carries the admin list query.
type ListBookingsInput struct {
	Status string
	Page   int
	Limit  int
}

// BookingPage is one page of the admin booking list.
type BookingPage struct {
	Items      []*domain.BookingDetail
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// DashboardStats backs the admin dashboard.
type DashboardStats struct {
	UsersByRole map[domain.Role]int64
	Bookings    domain.BookingStats
}

// BookingService defines the booking record operations of each role.
type BookingService interface {
	ListMine(ctx context.Context, userID string) ([]OwnBooking, error)
	Cancel(ctx context.Context, actor Actor, bookingID string) (*domain.Booking, error)

	ListAll(ctx context.Context, in ListBookingsInput) (*BookingPage, error)
	UpdateStatus(ctx context.Context, actor Actor, bookingID, status string) (*domain.Booking, error)
	Assign(ctx context.Context, actor Actor, bookingID, employeeID string) (*domain.Booking, error)
	History(ctx context.Context, bookingID string) ([]*domain.BookingEvent, error)
	// OrphanedPayments lists approved charges whose booking was never saved.
	OrphanedPayments(ctx context.Context) ([]*domain.BookingEvent, error)
	Dashboard(ctx context.Context) (*DashboardStats, error)

	ListTasks(ctx context.Context, employeeID string) ([]*domain.BookingDetail, error)
}
