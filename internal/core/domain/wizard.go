package domain

import (
	"strings"
	"time"
)

// WizardStep is a state of the booking wizard.
type WizardStep string

const (
	StepSelectDateTime WizardStep = "select_date_time"
	StepEnterPayment   WizardStep = "enter_payment"
	StepConfirm        WizardStep = "confirm"
	StepSuccess        WizardStep = "success"
	StepFailed         WizardStep = "failed"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// MinEVCNumberLength is the shortest mobile wallet number accepted.
	MinEVCNumberLength = 8
)

// PaymentAttempt records one call to the payment gateway.
type PaymentAttempt struct {
	ReferenceID   string    `json:"reference_id"`
	InvoiceID     string    `json:"invoice_id"`
	Approved      bool      `json:"approved"`
	Code          string    `json:"code,omitempty"`
	Message       string    `json:"message,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	At            time.Time `json:"at"`
}

// Wizard is a booking draft moving through date/time selection, payment
// entry and confirmation. Nothing is written to the booking store until a
// confirm succeeds.
type Wizard struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Service   ServicePackage   `json:"service"`
	Location  string           `json:"location,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	Date      string           `json:"date,omitempty"`
	Time      string           `json:"time,omitempty"`
	EVCNumber string           `json:"evc_number,omitempty"`
	Step      WizardStep       `json:"step"`
	LastError string           `json:"last_error,omitempty"`
	BookingID string           `json:"booking_id,omitempty"`
	Attempts  []PaymentAttempt `json:"attempts,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// NewWizard starts a wizard for service at the date/time step.
func NewWizard(id, userID string, service ServicePackage, location, notes string, now time.Time) *Wizard {
	return &Wizard{
		ID:        id,
		UserID:    userID,
		Service:   service,
		Location:  strings.TrimSpace(location),
		Notes:     strings.TrimSpace(notes),
		Step:      StepSelectDateTime,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetSchedule records the chosen date and time and advances to payment.
// today is the caller's current day; dates before it are rejected.
func (w *Wizard) SetSchedule(date, clock string, today time.Time) error {
	if w.Step != StepSelectDateTime {
		return ErrInvalidWizardStep
	}
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if err := validateSchedule(date, clock, today); err != nil {
		return err
	}
	w.Date, w.Time = date, clock
	w.Step = StepEnterPayment
	w.LastError = ""
	return nil
}

// SetPayment records the wallet number and advances to confirmation. It is
// also the way back in after a failed confirm.
func (w *Wizard) SetPayment(evcNumber string) error {
	switch w.Step {
	case StepEnterPayment, StepConfirm, StepFailed:
	default:
		return ErrInvalidWizardStep
	}
	evcNumber = strings.TrimSpace(evcNumber)
	if evcNumber == "" {
		return NewValidationError("evc_number", "Please enter your EVC Plus number")
	}
	if len(evcNumber) < MinEVCNumberLength {
		return NewValidationError("evc_number", "Please enter a valid EVC Plus number")
	}
	w.EVCNumber = evcNumber
	w.Step = StepConfirm
	return nil
}

// Back moves one step towards date/time selection.
func (w *Wizard) Back() error {
	switch w.Step {
	case StepEnterPayment:
		w.Step = StepSelectDateTime
	case StepConfirm, StepFailed:
		w.Step = StepEnterPayment
	default:
		return ErrInvalidWizardStep
	}
	return nil
}

// ReadyToConfirm checks that confirm may run now. The schedule is
// re-validated because a draft can sit until its date has passed.
func (w *Wizard) ReadyToConfirm(today time.Time) error {
	if w.Step != StepConfirm && w.Step != StepFailed {
		return ErrInvalidWizardStep
	}
	if err := validateSchedule(w.Date, w.Time, today); err != nil {
		return err
	}
	if len(w.EVCNumber) < MinEVCNumberLength {
		return NewValidationError("evc_number", "Please enter a valid EVC Plus number")
	}
	return nil
}

// RecordAttempt appends a gateway call to the attempt log.
func (w *Wizard) RecordAttempt(a PaymentAttempt) {
	w.Attempts = append(w.Attempts, a)
}

// UnbookedApproval returns the last attempt when it was approved but no
// booking was saved for it.
func (w *Wizard) UnbookedApproval() (PaymentAttempt, bool) {
	if w.BookingID != "" || len(w.Attempts) == 0 {
		return PaymentAttempt{}, false
	}
	last := w.Attempts[len(w.Attempts)-1]
	return last, last.Approved
}

// Fail moves the wizard to the failed step, keeping msg for display.
func (w *Wizard) Fail(msg string) {
	w.Step = StepFailed
	w.LastError = msg
}

// Succeed moves the wizard to its terminal success step.
func (w *Wizard) Succeed(bookingID string) {
	w.Step = StepSuccess
	w.BookingID = bookingID
	w.LastError = ""
}

func validateSchedule(date, clock string, today time.Time) error {
	if date == "" || clock == "" {
		return NewValidationError("date", "Please select both date and time")
	}
	d, err := time.ParseInLocation(DateLayout, date, today.Location())
	if err != nil {
		return NewValidationError("date", "Date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse(TimeLayout, clock); err != nil {
		return NewValidationError("time", "Time must be in HH:MM format")
	}
	y, m, dd := today.Date()
	if d.Before(time.Date(y, m, dd, 0, 0, 0, 0, today.Location())) {
		return NewValidationError("date", "Date cannot be in the past")
	}
	return nil
}
