package ports

import (
	"context"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// CreateEmployeeInput carries the admin's new-employee form.
type CreateEmployeeInput struct {
	Email    string
	Password string
	Username string
	Phone    string
}

// ProfileService manages profiles and employee accounts.
type ProfileService interface {
	RoleResolver
	Get(ctx context.Context, id string) (*domain.Profile, error)
	ListEmployees(ctx context.Context) ([]*domain.Profile, error)
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*domain.Profile, error)
	UpdateEmployee(ctx context.Context, id string, upd ProfileUpdate) (*domain.Profile, error)
	DeleteEmployee(ctx context.Context, id string) error
}
