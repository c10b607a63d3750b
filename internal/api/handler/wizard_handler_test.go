package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

type stubWizardService struct {
	startFn   func(userID string, in ports.StartWizardInput) (*domain.Wizard, error)
	confirmFn func(userID, wizardID string) (*domain.Wizard, error)
	schedule  [3]string
}

func (s *stubWizardService) Start(_ context.Context, userID string, in ports.StartWizardInput) (*domain.Wizard, error) {
	return s.startFn(userID, in)
}

func (s *stubWizardService) Get(_ context.Context, userID, wizardID string) (*domain.Wizard, error) {
	if userID != "u1" {
		return nil, domain.ErrWizardNotFound
	}
	return &domain.Wizard{ID: wizardID, UserID: userID, Step: domain.StepSelectDateTime}, nil
}

func (s *stubWizardService) SetSchedule(_ context.Context, _ string, wizardID, date, clock string) (*domain.Wizard, error) {
	s.schedule = [3]string{wizardID, date, clock}
	return &domain.Wizard{ID: wizardID, Date: date, Time: clock, Step: domain.StepEnterPayment}, nil
}

func (s *stubWizardService) SetPayment(_ context.Context, _ string, wizardID, evc string) (*domain.Wizard, error) {
	if len(evc) < domain.MinEVCNumberLength {
		return nil, domain.NewValidationError("evc_number", "enter a valid EVC Plus number")
	}
	return &domain.Wizard{ID: wizardID, EVCNumber: evc, Step: domain.StepConfirm}, nil
}

func (s *stubWizardService) Back(_ context.Context, _ string, wizardID string) (*domain.Wizard, error) {
	return &domain.Wizard{ID: wizardID, Step: domain.StepEnterPayment}, nil
}

func (s *stubWizardService) Confirm(_ context.Context, userID, wizardID string) (*domain.Wizard, error) {
	return s.confirmFn(userID, wizardID)
}

func TestWizardHandler_Start(t *testing.T) {
	stub := &stubWizardService{
		startFn: func(userID string, in ports.StartWizardInput) (*domain.Wizard, error) {
			if userID != "u1" || in.ServiceID != "premium" || in.Location != "Hodan" {
				t.Fatalf("unexpected start: %s %+v", userID, in)
			}
			return &domain.Wizard{ID: "w1", UserID: userID, Step: domain.StepSelectDateTime}, nil
		},
	}
	h := NewWizardHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/v1/booking-wizards", `{"service_id":"premium","location":"Hodan"}`, "u1", domain.RoleCustomer)
	if err := h.Start(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/v1/booking-wizards/w1" {
		t.Fatalf("unexpected Location: %q", loc)
	}
}

func TestWizardHandler_Start_MissingService(t *testing.T) {
	h := NewWizardHandler(&stubWizardService{})

	c, _ := newTestContext(http.MethodPost, "/v1/booking-wizards", `{"location":"Hodan"}`, "u1", domain.RoleCustomer)
	var ve *domain.ValidationError
	if err := h.Start(c); !errors.As(err, &ve) || ve.Field != "service_id" {
		t.Fatalf("expected service_id ValidationError, got %v", err)
	}
}

func TestWizardHandler_SetSchedule_PassesFields(t *testing.T) {
	stub := &stubWizardService{}
	h := NewWizardHandler(stub)

	c, rec := newTestContext(http.MethodPut, "/v1/booking-wizards/w1/schedule", `{"date":"2026-03-12","time":"10:00"}`, "u1", domain.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("w1")
	if err := h.SetSchedule(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.schedule != [3]string{"w1", "2026-03-12", "10:00"} {
		t.Fatalf("unexpected schedule args: %v", stub.schedule)
	}
}

func TestWizardHandler_SetPayment_ShortNumber(t *testing.T) {
	h := NewWizardHandler(&stubWizardService{})

	c, _ := newTestContext(http.MethodPut, "/v1/booking-wizards/w1/payment", `{"evc_number":"123"}`, "u1", domain.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("w1")
	var ve *domain.ValidationError
	if err := h.SetPayment(c); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestWizardHandler_Confirm(t *testing.T) {
	tests := []struct {
		name      string
		wizard    *domain.Wizard
		err       error
		wantCode  int
		wantError string
	}{
		{
			name:     "approved",
			wizard:   &domain.Wizard{ID: "w1", Step: domain.StepSuccess, BookingID: "b1"},
			wantCode: http.StatusCreated,
		},
		{
			name:      "declined keeps gateway message",
			wizard:    &domain.Wizard{ID: "w1", Step: domain.StepFailed},
			err:       &domain.PaymentError{Code: "5206", Message: "Payment declined: insufficient balance"},
			wantCode:  http.StatusPaymentRequired,
			wantError: "Payment declined: insufficient balance",
		},
		{
			name:      "approved but not saved",
			wizard:    &domain.Wizard{ID: "w1", Step: domain.StepFailed},
			err:       domain.NewPersistenceError("create booking", errors.New("timeout")),
			wantCode:  http.StatusServiceUnavailable,
			wantError: "Your booking could not be saved. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubWizardService{
				confirmFn: func(string, string) (*domain.Wizard, error) { return tt.wizard, tt.err },
			}
			h := NewWizardHandler(stub)

			c, rec := newTestContext(http.MethodPost, "/v1/booking-wizards/w1/confirm", "", "u1", domain.RoleCustomer)
			c.SetParamNames("id")
			c.SetParamValues("w1")
			if err := h.Confirm(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}

			var resp confirmResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tt.wantError {
				t.Fatalf("expected error %q, got %q", tt.wantError, resp.Error)
			}
			if resp.Wizard == nil || resp.Wizard.Step != tt.wizard.Step {
				t.Fatalf("expected wizard in body, got %+v", resp.Wizard)
			}
		})
	}
}

func TestWizardHandler_Confirm_WrongStepPassesThrough(t *testing.T) {
	stub := &stubWizardService{
		confirmFn: func(string, string) (*domain.Wizard, error) { return nil, domain.ErrInvalidWizardStep },
	}
	h := NewWizardHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/v1/booking-wizards/w1/confirm", "", "u1", domain.RoleCustomer)
	if err := h.Confirm(c); !errors.Is(err, domain.ErrInvalidWizardStep) {
		t.Fatalf("expected ErrInvalidWizardStep, got %v", err)
	}
}

func TestWizardHandler_Get_OtherUser(t *testing.T) {
	h := NewWizardHandler(&stubWizardService{})

	c, _ := newTestContext(http.MethodGet, "/v1/booking-wizards/w1", "", "u2", domain.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("w1")
	if err := h.Get(c); !errors.Is(err, domain.ErrWizardNotFound) {
		t.Fatalf("expected ErrWizardNotFound, got %v", err)
	}
}
