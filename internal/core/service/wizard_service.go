package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brightnest/cleaning-portal/internal/api/metrics"
	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

// WizardService drives booking wizards stored as drafts and turns a
// confirmed, paid draft into a booking.
type WizardService struct {
	drafts   ports.WizardDraftStore
	bookings ports.BookingRepository
	gateway  ports.PaymentGateway
	audit    ports.EventPublisher
	logger   zerolog.Logger
	loc      *time.Location

	now      func() time.Time
	newID    func() string
	newRefID func(time.Time) string
}

func NewWizardService(
	drafts ports.WizardDraftStore,
	bookings ports.BookingRepository,
	gateway ports.PaymentGateway,
	audit ports.EventPublisher,
	loc *time.Location,
	logger zerolog.Logger,
) *WizardService {
	if loc == nil {
		loc = time.UTC
	}
	return &WizardService{
		drafts:   drafts,
		bookings: bookings,
		gateway:  gateway,
		audit:    audit,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
		newID:    uuid.NewString,
		newRefID: referenceID,
	}
}

// Start opens a wizard for the chosen service package.
func (s *WizardService) Start(ctx context.Context, userID string, in ports.StartWizardInput) (*domain.Wizard, error) {
	svc, err := domain.LookupService(in.ServiceID)
	if err != nil {
		return nil, domain.NewValidationError("service_id", err.Error())
	}

	w := domain.NewWizard(s.newID(), userID, svc, in.Location, in.Notes, s.now().UTC())
	if err := s.save(ctx, w); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("wizard_id", w.ID).Str("service", svc.ID).Msg("booking wizard started")
	return w, nil
}

func (s *WizardService) Get(ctx context.Context, userID, wizardID string) (*domain.Wizard, error) {
	return s.load(ctx, userID, wizardID)
}

func (s *WizardService) SetSchedule(ctx context.Context, userID, wizardID, date, clock string) (*domain.Wizard, error) {
	return s.step(ctx, userID, wizardID, func(w *domain.Wizard) error {
		return w.SetSchedule(date, clock, s.today())
	})
}

func (s *WizardService) SetPayment(ctx context.Context, userID, wizardID, evcNumber string) (*domain.Wizard, error) {
	return s.step(ctx, userID, wizardID, func(w *domain.Wizard) error {
		return w.SetPayment(evcNumber)
	})
}

func (s *WizardService) Back(ctx context.Context, userID, wizardID string) (*domain.Wizard, error) {
	return s.step(ctx, userID, wizardID, func(w *domain.Wizard) error {
		return w.Back()
	})
}

// Confirm charges the payer and persists the booking, strictly in that
// order. The booking exists only when both succeed. Each charge is a new
// attempt with its own reference ID. When an earlier charge was approved
// but its booking was not saved, only the save is retried.
func (s *WizardService) Confirm(ctx context.Context, userID, wizardID string) (*domain.Wizard, error) {
	w, err := s.load(ctx, userID, wizardID)
	if err != nil {
		return nil, err
	}
	if err := w.ReadyToConfirm(s.today()); err != nil {
		return w, err
	}
	if attempt, ok := w.UnbookedApproval(); ok {
		s.logger.Info().
			Str("wizard_id", w.ID).
			Str("reference_id", attempt.ReferenceID).
			Msg("retrying booking save for approved payment")
		return s.book(context.WithoutCancel(ctx), w, userID, attempt)
	}

	now := s.now().UTC()
	req := ports.ChargeRequest{
		AccountNo:   w.EVCNumber,
		ReferenceID: s.newRefID(now),
		InvoiceID:   fmt.Sprintf("INV-%s-%d", shortID(w.ID), len(w.Attempts)+1),
		Amount:      w.Service.Price,
		Currency:    domain.Currency,
		Description: fmt.Sprintf("%s cleaning on %s at %s", w.Service.Title, w.Date, w.Time),
	}

	start := time.Now()
	receipt, err := s.gateway.Charge(ctx, req)
	metrics.PaymentDuration.Observe(time.Since(start).Seconds())

	// The gateway has answered. Recording the outcome must not depend on
	// the caller still waiting.
	ctx = context.WithoutCancel(ctx)

	attempt := domain.PaymentAttempt{ReferenceID: req.ReferenceID, InvoiceID: req.InvoiceID, At: now}
	if err != nil {
		attempt.Message = err.Error()
		return s.fail(ctx, w, attempt, "error", &domain.PaymentError{Message: err.Error(), Err: err})
	}

	attempt.Code = receipt.Code
	attempt.Message = receipt.Message
	attempt.TransactionID = receipt.TransactionID
	if !receipt.Approved() {
		msg := receipt.Message
		if msg == "" {
			msg = "Payment failed"
		}
		return s.fail(ctx, w, attempt, "declined", &domain.PaymentError{Code: receipt.Code, Message: msg})
	}

	attempt.Approved = true
	w.RecordAttempt(attempt)
	// Stored before the booking insert so a retry finds the approval
	// instead of charging again.
	s.saveQuietly(ctx, w)
	metrics.PaymentsTotal.WithLabelValues("approved").Inc()
	s.publish(domain.BookingEvent{
		WizardID:    w.ID,
		Type:        domain.EventPaymentApproved,
		ActorID:     userID,
		ActorRole:   domain.RoleCustomer,
		ReferenceID: req.ReferenceID,
		Amount:      req.Amount,
		Timestamp:   now,
	})

	return s.book(ctx, w, userID, attempt)
}

// book persists the booking for an approved attempt.
func (s *WizardService) book(ctx context.Context, w *domain.Wizard, userID string, attempt domain.PaymentAttempt) (*domain.Wizard, error) {
	now := s.now().UTC()
	booking := &domain.Booking{
		ID:               s.newID(),
		UserID:           userID,
		Date:             w.Date,
		Time:             w.Time,
		ServiceType:      w.Service.Title,
		Price:            w.Service.Price,
		PaymentAmount:    w.Service.Price,
		PaymentStatus:    domain.PaymentPaid,
		Status:           domain.StatusPending,
		Location:         w.Location,
		Notes:            w.Notes,
		PaymentReference: attempt.ReferenceID,
		TransactionID:    attempt.TransactionID,
		WizardID:         w.ID,
		CreatedAt:        now,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		// The charge went through but there is no booking for it.
		s.logger.Error().Err(err).
			Str("wizard_id", w.ID).
			Str("user_id", userID).
			Str("reference_id", attempt.ReferenceID).
			Str("transaction_id", attempt.TransactionID).
			Float64("amount", w.Service.Price).
			Msg("payment approved but booking not saved")
		s.publish(domain.BookingEvent{
			WizardID:    w.ID,
			Type:        domain.EventPaymentOrphaned,
			ActorID:     userID,
			ReferenceID: attempt.ReferenceID,
			Amount:      w.Service.Price,
			Message:     err.Error(),
			Timestamp:   now,
		})
		metrics.WizardFailuresTotal.WithLabelValues("persistence").Inc()
		perr := domain.NewPersistenceError("save booking", err)
		w.Fail(perr.Error())
		s.saveQuietly(ctx, w)
		return w, perr
	}

	w.Succeed(booking.ID)
	s.saveQuietly(ctx, w)

	metrics.BookingsCreatedTotal.WithLabelValues(w.Service.ID).Inc()
	s.publish(domain.BookingEvent{
		BookingID:   booking.ID,
		WizardID:    w.ID,
		Type:        domain.EventBookingCreated,
		ActorID:     userID,
		ActorRole:   domain.RoleCustomer,
		To:          string(booking.Status),
		ReferenceID: attempt.ReferenceID,
		Amount:      booking.PaymentAmount,
		Timestamp:   now,
	})
	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("user_id", userID).
		Str("reference_id", attempt.ReferenceID).
		Msg("booking created")
	return w, nil
}

func (s *WizardService) fail(ctx context.Context, w *domain.Wizard, attempt domain.PaymentAttempt, outcome string, cause *domain.PaymentError) (*domain.Wizard, error) {
	w.RecordAttempt(attempt)
	w.Fail(cause.Error())
	s.saveQuietly(ctx, w)

	metrics.PaymentsTotal.WithLabelValues(outcome).Inc()
	metrics.WizardFailuresTotal.WithLabelValues("payment").Inc()
	s.publish(domain.BookingEvent{
		WizardID:    w.ID,
		Type:        domain.EventPaymentDeclined,
		ActorID:     w.UserID,
		ActorRole:   domain.RoleCustomer,
		ReferenceID: attempt.ReferenceID,
		Amount:      w.Service.Price,
		Message:     cause.Error(),
		Timestamp:   attempt.At,
	})
	s.logger.Warn().
		Str("wizard_id", w.ID).
		Str("reference_id", attempt.ReferenceID).
		Str("code", cause.Code).
		Str("message", cause.Error()).
		Msg("payment not approved")
	return w, cause
}

func (s *WizardService) step(ctx context.Context, userID, wizardID string, apply func(*domain.Wizard) error) (*domain.Wizard, error) {
	w, err := s.load(ctx, userID, wizardID)
	if err != nil {
		return nil, err
	}
	if err := apply(w); err != nil {
		return w, err
	}
	if err := s.save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WizardService) load(ctx context.Context, userID, wizardID string) (*domain.Wizard, error) {
	w, err := s.drafts.Get(ctx, wizardID)
	if err != nil {
		if errors.Is(err, domain.ErrWizardNotFound) {
			return nil, err
		}
		return nil, domain.NewPersistenceError("load wizard", err)
	}
	if w.UserID != userID {
		return nil, domain.ErrWizardNotFound
	}
	return w, nil
}

func (s *WizardService) save(ctx context.Context, w *domain.Wizard) error {
	w.UpdatedAt = s.now().UTC()
	if err := s.drafts.Save(ctx, w); err != nil {
		return domain.NewPersistenceError("save wizard", err)
	}
	return nil
}

// saveQuietly stores the outcome of a confirm. The outcome is already
// decided, so a failed save is only logged.
func (s *WizardService) saveQuietly(ctx context.Context, w *domain.Wizard) {
	if err := s.save(ctx, w); err != nil {
		s.logger.Warn().Err(err).Str("wizard_id", w.ID).Msg("failed to store wizard outcome")
	}
}

func (s *WizardService) publish(ev domain.BookingEvent) {
	if s.audit != nil {
		s.audit.Publish(ev)
	}
}

func (s *WizardService) today() time.Time {
	return s.now().In(s.loc)
}

// referenceID derives a payment reference from the clock plus a random
// suffix, so two attempts in the same millisecond still differ.
func referenceID(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("REF%d%s", t.UnixMilli(), suffix)
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
