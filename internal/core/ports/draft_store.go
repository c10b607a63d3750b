package ports

import (
	"context"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// WizardDraftStore keeps booking wizards. Drafts, finished ones included,
// expire on their own; nothing in them is a booking.
type WizardDraftStore interface {
	Save(ctx context.Context, w *domain.Wizard) error
	Get(ctx context.Context, id string) (*domain.Wizard, error)
}
