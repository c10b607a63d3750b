package domain

import (
	"fmt"
	"time"
)

// BookingStatus represents the service lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// BookingStatuses lists every status an admin may pick.
var BookingStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled}

// ParseBookingStatus converts s into a BookingStatus.
func ParseBookingStatus(s string) (BookingStatus, error) {
	for _, st := range BookingStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// PaymentStatus records whether the booking was charged.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// Booking is a scheduled cleaning job, created only after its payment was
// approved.
type Booking struct {
	ID               string        `json:"id" bson:"_id"`
	UserID           string        `json:"user_id" bson:"user_id"`
	Date             string        `json:"date" bson:"date"`
	Time             string        `json:"time" bson:"time"`
	ServiceType      string        `json:"service_type" bson:"service_type"`
	Price            float64       `json:"price" bson:"price"`
	PaymentAmount    float64       `json:"payment_amount" bson:"payment_amount"`
	PaymentStatus    PaymentStatus `json:"payment_status" bson:"payment_status"`
	Status           BookingStatus `json:"status" bson:"status"`
	AssignedEmployee string        `json:"assigned_employee,omitempty" bson:"assigned_employee,omitempty"`
	Location         string        `json:"location,omitempty" bson:"location,omitempty"`
	Notes            string        `json:"notes,omitempty" bson:"notes,omitempty"`
	PaymentReference string        `json:"payment_reference,omitempty" bson:"payment_reference,omitempty"`
	TransactionID    string        `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	WizardID         string        `json:"wizard_id,omitempty" bson:"wizard_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at" bson:"created_at"`
}

// BookingDetail is a booking joined with the display fields of its customer
// and assigned employee.
type BookingDetail struct {
	Booking  `bson:",inline"`
	Customer *ProfileSummary `json:"customer,omitempty" bson:"customer,omitempty"`
	Employee *ProfileSummary `json:"employee,omitempty" bson:"employee,omitempty"`
}

// CanCancel reports whether the owner may still cancel the booking.
func (b *Booking) CanCancel() bool {
	return b.Status == StatusPending
}

// CanSetStatus reports whether an actor with the given role may move the
// booking to next. Admins may set any status; employees only update jobs
// assigned to them and never cancel.
func (b *Booking) CanSetStatus(actorID string, role Role, next BookingStatus) error {
	switch role {
	case RoleAdmin:
		return nil
	case RoleEmployee:
		if b.AssignedEmployee == "" || b.AssignedEmployee != actorID {
			return ErrForbidden
		}
		if next == StatusCancelled {
			return ErrForbidden
		}
		return nil
	case RoleCustomer:
		if b.UserID != actorID {
			return ErrForbidden
		}
		if next != StatusCancelled {
			return ErrForbidden
		}
		if !b.CanCancel() {
			return ErrCancelNotAllowed
		}
		return nil
	}
	return ErrForbidden
}

// BookingStats summarises bookings and revenue for the admin dashboard.
type BookingStats struct {
	Total     int64   `json:"total"`
	Pending   int64   `json:"pending"`
	Completed int64   `json:"completed"`
	Revenue   float64 `json:"revenue"`
}
