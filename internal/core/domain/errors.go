package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUserExists         = errors.New("user already registered")
	ErrWeakPassword       = fmt.Errorf("password should be at least %d characters", MinPasswordLength)
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found or expired")

	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrUnknownRole     = errors.New("unknown role")
	ErrNotAnEmployee   = errors.New("profile is not an employee")

	ErrBookingNotFound   = errors.New("booking not found")
	ErrCancelNotAllowed  = errors.New("only pending bookings can be cancelled")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrUnknownService    = errors.New("unknown service package")
	ErrWizardNotFound    = errors.New("booking wizard not found or expired")
	ErrInvalidWizardStep = errors.New("action not allowed at this step")

	ErrForbidden = errors.New("access forbidden")
)

// CredentialError is a rejection from the identity store: bad credentials,
// duplicate email or a weak password.
type CredentialError struct {
	Err error
}

func NewCredentialError(err error) *CredentialError {
	return &CredentialError{Err: err}
}

func (e *CredentialError) Error() string { return e.Err.Error() }
func (e *CredentialError) Unwrap() error { return e.Err }

// ValidationError is a form-level failure. The caller's state is unchanged.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// PaymentError carries the gateway's own message so it can be shown to the
// payer unchanged. Code is the gateway response code, empty on transport
// failures.
type PaymentError struct {
	Code    string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "payment failed"
}

func (e *PaymentError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed read or write against a record store.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
