package domain

import "time"

// BookingEventType names an entry in a booking's audit trail.
type BookingEventType string

const (
	EventBookingCreated   BookingEventType = "created"
	EventStatusChanged    BookingEventType = "status_changed"
	EventEmployeeAssigned BookingEventType = "assigned"
	EventBookingCancelled BookingEventType = "cancelled"
	EventPaymentApproved  BookingEventType = "payment_approved"
	EventPaymentDeclined  BookingEventType = "payment_declined"
	// EventPaymentOrphaned marks a charge the gateway approved but that has no
	// booking, because persisting it failed. Needs manual reconciliation.
	EventPaymentOrphaned BookingEventType = "payment_orphaned"
)

// BookingEvent is one audit trail entry. Payment events carry the wizard
// that charged; BookingID is empty until a booking exists.
type BookingEvent struct {
	BookingID   string           `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	WizardID    string           `json:"wizard_id,omitempty" bson:"wizard_id,omitempty"`
	Type        BookingEventType `json:"type" bson:"type"`
	ActorID     string           `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	ActorRole   Role             `json:"actor_role,omitempty" bson:"actor_role,omitempty"`
	From        string           `json:"from,omitempty" bson:"from,omitempty"`
	To          string           `json:"to,omitempty" bson:"to,omitempty"`
	ReferenceID string           `json:"reference_id,omitempty" bson:"reference_id,omitempty"`
	Amount      float64          `json:"amount,omitempty" bson:"amount,omitempty"`
	Message     string           `json:"message,omitempty" bson:"message,omitempty"`
	Timestamp   time.Time        `json:"timestamp" bson:"timestamp"`
}

// StreamKey identifies the trail an event belongs to: the booking when
// there is one, otherwise the wizard.
func (e BookingEvent) StreamKey() string {
	if e.BookingID != "" {
		return e.BookingID
	}
	return e.WizardID
}
