package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

type profileService struct {
	repo       ports.ProfileRepository
	identities ports.IdentityRegistrar
	log        zerolog.Logger
	now        func() time.Time
}

// NewProfileService returns a ProfileService implementation.
func NewProfileService(repo ports.ProfileRepository, identities ports.IdentityRegistrar, log zerolog.Logger) ports.ProfileService {
	return &profileService{
		repo:       repo,
		identities: identities,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *profileService) Get(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("get profile", err)
	}
	return p, nil
}

// ResolveRole reads the role straight from the profile store.
func (s *profileService) ResolveRole(ctx context.Context, userID string) (domain.Role, error) {
	p, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", wrapRepoErr("resolve role", err)
	}
	if !p.Role.Valid() {
		return "", domain.ErrUnknownRole
	}
	return p.Role, nil
}

func (s *profileService) ListEmployees(ctx context.Context) ([]*domain.Profile, error) {
	list, err := s.repo.ListByRole(ctx, domain.RoleEmployee)
	if err != nil {
		return nil, domain.NewPersistenceError("list employees", err)
	}
	return list, nil
}

// CreateEmployee provisions an identity plus an employee profile. If the
// profile insert fails the identity is deleted again.
func (s *profileService) CreateEmployee(ctx context.Context, in ports.CreateEmployeeInput) (*domain.Profile, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.NewValidationError("username", "username is required")
	}

	user, err := s.identities.Register(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		ID:        user.ID,
		Username:  username,
		Phone:     strings.TrimSpace(in.Phone),
		Role:      domain.RoleEmployee,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		if rmErr := s.identities.Remove(ctx, user.ID); rmErr != nil {
			s.log.Error().Err(rmErr).Str("user_id", user.ID).Msg("failed to remove identity after profile error")
		}
		return nil, domain.NewPersistenceError("create employee profile", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("employee created")
	return profile, nil
}

func (s *profileService) UpdateEmployee(ctx context.Context, id string, upd ports.ProfileUpdate) (*domain.Profile, error) {
	if _, err := s.employee(ctx, id); err != nil {
		return nil, err
	}
	if upd.Username != nil {
		trimmed := strings.TrimSpace(*upd.Username)
		if trimmed == "" {
			return nil, domain.NewValidationError("username", "username cannot be empty")
		}
		upd.Username = &trimmed
	}
	if upd.Phone != nil {
		trimmed := strings.TrimSpace(*upd.Phone)
		upd.Phone = &trimmed
	}

	p, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return nil, wrapRepoErr("update employee", err)
	}
	return p, nil
}

// DeleteEmployee removes the employee's profile. The identity stays.
func (s *profileService) DeleteEmployee(ctx context.Context, id string) error {
	if _, err := s.employee(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapRepoErr("delete employee", err)
	}
	s.log.Info().Str("user_id", id).Msg("employee profile deleted")
	return nil
}

func (s *profileService) employee(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapRepoErr("get employee", err)
	}
	if p.Role != domain.RoleEmployee {
		return nil, domain.ErrNotAnEmployee
	}
	return p, nil
}

// wrapRepoErr passes known domain errors through and wraps the rest as
// persistence failures.
func wrapRepoErr(op string, err error) error {
	for _, known := range []error{
		domain.ErrProfileNotFound,
		domain.ErrProfileExists,
		domain.ErrBookingNotFound,
		domain.ErrUserNotFound,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return domain.NewPersistenceError(op, err)
}
