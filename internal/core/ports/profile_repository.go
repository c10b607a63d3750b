package ports

import (
	"context"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// ProfileUpdate carries the admin-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	Username *string
	Phone    *string
}

// ProfileRepository persists profiles keyed by identity ID.
type ProfileRepository interface {
	Create(ctx context.Context, p *domain.Profile) error
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.Profile, error)
	Update(ctx context.Context, id string, upd ProfileUpdate) (*domain.Profile, error)
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
}
