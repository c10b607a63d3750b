package ports

import (
	"context"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// EventService records booking audit events.
type EventService interface {
	Record(ctx context.Context, event domain.BookingEvent) error
}
