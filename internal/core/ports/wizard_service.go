package ports

import (
	"context"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// StartWizardInput opens a booking wizard for one service package.
type StartWizardInput struct {
	ServiceID string
	Location  string
	Notes     string
}

// WizardService drives the booking wizard. Every method is scoped to the
// wizard's owner; other users get domain.ErrWizardNotFound.
type WizardService interface {
	Start(ctx context.Context, userID string, in StartWizardInput) (*domain.Wizard, error)
	Get(ctx context.Context, userID, wizardID string) (*domain.Wizard, error)
	SetSchedule(ctx context.Context, userID, wizardID, date, clock string) (*domain.Wizard, error)
	SetPayment(ctx context.Context, userID, wizardID, evcNumber string) (*domain.Wizard, error)
	Back(ctx context.Context, userID, wizardID string) (*domain.Wizard, error)
	// Confirm charges the payer and, on approval, creates the booking. The
	// returned wizard reflects the outcome even when err is non-nil.
	Confirm(ctx context.Context, userID, wizardID string) (*domain.Wizard, error)
}
