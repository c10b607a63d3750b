package ports

import (
	"context"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// EventRepository persists the booking audit trail.
type EventRepository interface {
	Insert(ctx context.Context, event *domain.BookingEvent) error
	// ListByBooking returns the events of one booking, plus those of the
	// wizard that created it when wizardID is set, oldest first.
	ListByBooking(ctx context.Context, bookingID, wizardID string) ([]*domain.BookingEvent, error)
	// ListByType returns the newest events of one type.
	ListByType(ctx context.Context, t domain.BookingEventType, limit int) ([]*domain.BookingEvent, error)
}

// EventPublisher hands audit events to asynchronous processing. Publishing
// never fails the operation that produced the event.
type EventPublisher interface {
	Publish(event domain.BookingEvent)
}
