package ports

import (
	"context"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// SortOrder selects how booking lists are ordered.
type SortOrder int

const (
	SortNewestFirst SortOrder = iota // created_at descending
	SortByDateAsc                    // scheduled date then time ascending
)

// BookingFilter carries query parameters for listing bookings.
// Access scoping (owner / assignee) is always set by the service layer.
type BookingFilter struct {
	UserID           string // empty = any owner
	AssignedEmployee string // empty = any assignee
	Status           string // optional
	Sort             SortOrder
	Page             int // 1-based; 0 = no pagination
	Limit            int
}

// BookingUpdate carries the mutable booking fields. Nil means unchanged; an
// empty AssignedEmployee clears the assignment.
type BookingUpdate struct {
	Status           *domain.BookingStatus
	AssignedEmployee *string
}

// BookingRepository persists bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]*domain.Booking, int64, error)
	// ListDetailed is List joined with customer and employee profile fields.
	ListDetailed(ctx context.Context, filter BookingFilter) ([]*domain.BookingDetail, int64, error)
	Update(ctx context.Context, id string, upd BookingUpdate) (*domain.Booking, error)
	Stats(ctx context.Context) (*domain.BookingStats, error)
}
