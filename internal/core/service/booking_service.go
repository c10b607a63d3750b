package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightnest/cleaning-portal/internal/api/metrics"
	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	orphanListLimit  = 100
)

// BookingService implements the booking record operations for owners,
// admins and employees. Updates are last-write-wins.
type BookingService struct {
	repo     ports.BookingRepository
	profiles ports.ProfileRepository
	events   ports.EventRepository
	audit    ports.EventPublisher
	logger   zerolog.Logger
	now      func() time.Time
}

func NewBookingService(
	repo ports.BookingRepository,
	profiles ports.ProfileRepository,
	events ports.EventRepository,
	audit ports.EventPublisher,
	logger zerolog.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		profiles: profiles,
		events:   events,
		audit:    audit,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListMine returns the caller's bookings, newest first.
func (s *BookingService) ListMine(ctx context.Context, userID string) ([]ports.OwnBooking, error) {
	items, _, err := s.repo.List(ctx, ports.BookingFilter{UserID: userID, Sort: ports.SortNewestFirst})
	if err != nil {
		return nil, domain.NewPersistenceError("list bookings", err)
	}
	out := make([]ports.OwnBooking, 0, len(items))
	for _, b := range items {
		out = append(out, ports.OwnBooking{Booking: b, CanCancel: b.CanCancel()})
	}
	return out, nil
}

// Cancel cancels a pending booking on behalf of its owner.
func (s *BookingService) Cancel(ctx context.Context, actor ports.Actor, bookingID string) (*domain.Booking, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, wrapRepoErr("get booking", err)
	}
	if b.UserID != actor.ID {
		// Other users' bookings are invisible to customers.
		return nil, domain.ErrBookingNotFound
	}
	if err := b.CanSetStatus(actor.ID, domain.RoleCustomer, domain.StatusCancelled); err != nil {
		return nil, err
	}

	cancelled := domain.StatusCancelled
	updated, err := s.repo.Update(ctx, bookingID, ports.BookingUpdate{Status: &cancelled})
	if err != nil {
		return nil, wrapRepoErr("cancel booking", err)
	}

	s.publish(domain.BookingEvent{
		BookingID: bookingID,
		Type:      domain.EventBookingCancelled,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		From:      string(b.Status),
		To:        string(cancelled),
	})
	s.logger.Info().Str("booking_id", bookingID).Str("user_id", actor.ID).Msg("booking cancelled")
	return updated, nil
}

// ListAll returns every booking joined with profile display fields, newest
// first.
func (s *BookingService) ListAll(ctx context.Context, in ports.ListBookingsInput) (*ports.BookingPage, error) {
	if in.Status != "" {
		if _, err := domain.ParseBookingStatus(in.Status); err != nil {
			return nil, domain.NewValidationError("status", err.Error())
		}
	}
	page, limit := normalizePage(in.Page, in.Limit)

	items, total, err := s.repo.ListDetailed(ctx, ports.BookingFilter{
		Status: in.Status,
		Sort:   ports.SortNewestFirst,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, domain.NewPersistenceError("list bookings", err)
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}
	return &ports.BookingPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus sets a booking's status. Admins may set any status;
// employees only on their own tasks and never cancelled.
func (s *BookingService) UpdateStatus(ctx context.Context, actor ports.Actor, bookingID, status string) (*domain.Booking, error) {
	next, err := domain.ParseBookingStatus(status)
	if err != nil {
		return nil, domain.NewValidationError("status", err.Error())
	}

	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, wrapRepoErr("get booking", err)
	}
	if err := b.CanSetStatus(actor.ID, actor.Role, next); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, bookingID, ports.BookingUpdate{Status: &next})
	if err != nil {
		return nil, wrapRepoErr("update booking status", err)
	}

	s.publish(domain.BookingEvent{
		BookingID: bookingID,
		Type:      domain.EventStatusChanged,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		From:      string(b.Status),
		To:        string(next),
	})
	metrics.BookingStatusUpdatesTotal.WithLabelValues(string(next), string(actor.Role)).Inc()
	s.logger.Info().
		Str("booking_id", bookingID).
		Str("from", string(b.Status)).
		Str("to", string(next)).
		Str("actor_role", string(actor.Role)).
		Msg("booking status updated")
	return updated, nil
}

// Assign sets the booking's employee. employeeID must name an employee
// profile; empty clears the assignment.
func (s *BookingService) Assign(ctx context.Context, actor ports.Actor, bookingID, employeeID string) (*domain.Booking, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if employeeID != "" {
		p, err := s.profiles.FindByID(ctx, employeeID)
		if err != nil {
			return nil, wrapRepoErr("get employee", err)
		}
		if p.Role != domain.RoleEmployee {
			return nil, domain.ErrNotAnEmployee
		}
	}

	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, wrapRepoErr("get booking", err)
	}

	updated, err := s.repo.Update(ctx, bookingID, ports.BookingUpdate{AssignedEmployee: &employeeID})
	if err != nil {
		return nil, wrapRepoErr("assign booking", err)
	}

	s.publish(domain.BookingEvent{
		BookingID: bookingID,
		Type:      domain.EventEmployeeAssigned,
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		From:      b.AssignedEmployee,
		To:        employeeID,
	})
	s.logger.Info().Str("booking_id", bookingID).Str("employee_id", employeeID).Msg("booking assigned")
	return updated, nil
}

// History returns the audit trail of a booking, starting with the payment
// events of the wizard that created it.
func (s *BookingService) History(ctx context.Context, bookingID string) ([]*domain.BookingEvent, error) {
	b, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, wrapRepoErr("get booking", err)
	}
	events, err := s.events.ListByBooking(ctx, bookingID, b.WizardID)
	if err != nil {
		return nil, domain.NewPersistenceError("list booking events", err)
	}
	return events, nil
}

// OrphanedPayments returns the newest payment_orphaned events. An event
// stays listed after a later retry saved the booking; the booking's own
// history shows that.
func (s *BookingService) OrphanedPayments(ctx context.Context) ([]*domain.BookingEvent, error) {
	events, err := s.events.ListByType(ctx, domain.EventPaymentOrphaned, orphanListLimit)
	if err != nil {
		return nil, domain.NewPersistenceError("list orphaned payments", err)
	}
	return events, nil
}

// Dashboard gathers user and booking totals for the admin dashboard.
func (s *BookingService) Dashboard(ctx context.Context) (*ports.DashboardStats, error) {
	byRole, err := s.profiles.CountByRole(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("count profiles", err)
	}
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("booking stats", err)
	}
	if byRole == nil {
		byRole = make(map[domain.Role]int64, len(domain.Roles))
	}
	for _, r := range domain.Roles {
		if _, ok := byRole[r]; !ok {
			byRole[r] = 0
		}
	}
	return &ports.DashboardStats{UsersByRole: byRole, Bookings: *stats}, nil
}

// ListTasks returns the bookings assigned to employeeID by scheduled date.
func (s *BookingService) ListTasks(ctx context.Context, employeeID string) ([]*domain.BookingDetail, error) {
	items, _, err := s.repo.ListDetailed(ctx, ports.BookingFilter{
		AssignedEmployee: employeeID,
		Sort:             ports.SortByDateAsc,
	})
	if err != nil {
		return nil, domain.NewPersistenceError("list tasks", err)
	}
	return items, nil
}

func (s *BookingService) publish(ev domain.BookingEvent) {
	if s.audit == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.now()
	}
	s.audit.Publish(ev)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
