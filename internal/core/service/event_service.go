package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightnest/cleaning-portal/internal/api/metrics"
	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

type eventService struct {
	repo ports.EventRepository
	log  zerolog.Logger
}

// NewEventService returns an EventService implementation.
func NewEventService(repo ports.EventRepository, log zerolog.Logger) ports.EventService {
	return &eventService{repo: repo, log: log}
}

// Record validates and stores a single audit event.
func (s *eventService) Record(ctx context.Context, ev domain.BookingEvent) error {
	start := time.Now()

	if ev.StreamKey() == "" || ev.Type == "" {
		metrics.AuditEventsErrorsTotal.WithLabelValues("invalid").Inc()
		return fmt.Errorf("record event: missing booking or wizard id, or type")
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	if err := s.repo.Insert(ctx, &ev); err != nil {
		metrics.AuditEventsErrorsTotal.WithLabelValues("insert_failed").Inc()
		return fmt.Errorf("record event: %w", err)
	}

	metrics.AuditEventsRecordedTotal.WithLabelValues(string(ev.Type)).Inc()
	metrics.AuditEventDuration.WithLabelValues(string(ev.Type)).Observe(time.Since(start).Seconds())

	s.log.Debug().
		Str("booking_id", ev.BookingID).
		Str("wizard_id", ev.WizardID).
		Str("type", string(ev.Type)).
		Str("actor_id", ev.ActorID).
		Msg("audit event recorded")
	if ev.Type == domain.EventPaymentOrphaned {
		s.log.Error().
			Str("wizard_id", ev.WizardID).
			Str("reference_id", ev.ReferenceID).
			Float64("amount", ev.Amount).
			Msg("orphaned payment recorded for reconciliation")
	}
	return nil
}
