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

type stubBookingService struct {
	listMineFn func(userID string) ([]ports.OwnBooking, error)
	listAllIn  ports.ListBookingsInput
	actor      ports.Actor
	status     string
	assignee   string
}

func (s *stubBookingService) ListMine(_ context.Context, userID string) ([]ports.OwnBooking, error) {
	return s.listMineFn(userID)
}

func (s *stubBookingService) Cancel(_ context.Context, actor ports.Actor, id string) (*domain.Booking, error) {
	s.actor = actor
	if id != "b1" {
		return nil, domain.ErrCancelNotAllowed
	}
	return &domain.Booking{ID: id, Status: domain.StatusCancelled}, nil
}

func (s *stubBookingService) ListAll(_ context.Context, in ports.ListBookingsInput) (*ports.BookingPage, error) {
	s.listAllIn = in
	return &ports.BookingPage{
		Items: []*domain.BookingDetail{{Booking: domain.Booking{ID: "b3"}}},
		Total: 21, Page: 2, Limit: 10, TotalPages: 3,
	}, nil
}

func (s *stubBookingService) UpdateStatus(_ context.Context, actor ports.Actor, id, status string) (*domain.Booking, error) {
	s.actor, s.status = actor, status
	if actor.Role == domain.RoleEmployee && status == string(domain.StatusCancelled) {
		return nil, domain.ErrForbidden
	}
	return &domain.Booking{ID: id, Status: domain.BookingStatus(status)}, nil
}

func (s *stubBookingService) Assign(_ context.Context, actor ports.Actor, id, employeeID string) (*domain.Booking, error) {
	s.actor, s.assignee = actor, employeeID
	return &domain.Booking{ID: id, AssignedEmployee: employeeID}, nil
}

func (s *stubBookingService) History(context.Context, string) ([]*domain.BookingEvent, error) {
	return nil, nil
}

func (s *stubBookingService) OrphanedPayments(context.Context) ([]*domain.BookingEvent, error) {
	return nil, nil
}

func (s *stubBookingService) Dashboard(context.Context) (*ports.DashboardStats, error) {
	return &ports.DashboardStats{
		UsersByRole: map[domain.Role]int64{domain.RoleCustomer: 5, domain.RoleEmployee: 2},
		Bookings:    domain.BookingStats{Total: 3, Revenue: 227},
	}, nil
}

func (s *stubBookingService) ListTasks(context.Context, string) ([]*domain.BookingDetail, error) {
	return nil, nil
}

func TestBookingHandler_ListMine_EmptyIsArray(t *testing.T) {
	stub := &stubBookingService{
		listMineFn: func(userID string) ([]ports.OwnBooking, error) {
			if userID != "c1" {
				t.Fatalf("unexpected user %s", userID)
			}
			return nil, nil
		},
	}
	h := NewBookingHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/v1/bookings", "", "c1", domain.RoleCustomer)
	if err := h.ListMine(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestBookingHandler_ListMine_CarriesCancelFlag(t *testing.T) {
	stub := &stubBookingService{
		listMineFn: func(string) ([]ports.OwnBooking, error) {
			return []ports.OwnBooking{{Booking: &domain.Booking{ID: "b1", Status: domain.StatusPending}, CanCancel: true}}, nil
		},
	}
	h := NewBookingHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/v1/bookings", "", "c1", domain.RoleCustomer)
	if err := h.ListMine(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(list) != 1 || list[0]["id"] != "b1" || list[0]["can_cancel"] != true {
		t.Fatalf("unexpected list: %v", list)
	}
}

func TestBookingHandler_Cancel(t *testing.T) {
	stub := &stubBookingService{}
	h := NewBookingHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/v1/bookings/b1/cancel", "", "c1", domain.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("b1")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || stub.actor.ID != "c1" {
		t.Fatalf("unexpected result: %d %+v", rec.Code, stub.actor)
	}

	c, _ = newTestContext(http.MethodPost, "/v1/bookings/b2/cancel", "", "c1", domain.RoleCustomer)
	c.SetParamNames("id")
	c.SetParamValues("b2")
	if err := h.Cancel(c); !errors.Is(err, domain.ErrCancelNotAllowed) {
		t.Fatalf("expected ErrCancelNotAllowed, got %v", err)
	}
}

func TestBookingHandler_ListAll_BindsQuery(t *testing.T) {
	stub := &stubBookingService{}
	h := NewBookingHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/v1/admin/bookings?status=pending&page=2&limit=10", "", "a1", domain.RoleAdmin)
	if err := h.ListAll(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.listAllIn != (ports.ListBookingsInput{Status: "pending", Page: 2, Limit: 10}) {
		t.Fatalf("unexpected input: %+v", stub.listAllIn)
	}

	var resp bookingPageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Pagination.Total != 21 || resp.Pagination.TotalPages != 3 || len(resp.Items) != 1 {
		t.Fatalf("unexpected page: %+v", resp)
	}
}

func TestBookingHandler_UpdateStatus(t *testing.T) {
	stub := &stubBookingService{}
	h := NewBookingHandler(stub)

	c, rec := newTestContext(http.MethodPatch, "/v1/employee/tasks/b3/status", `{"status":"in_progress"}`, "e7", domain.RoleEmployee)
	c.SetParamNames("id")
	c.SetParamValues("b3")
	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || stub.status != "in_progress" || stub.actor.Role != domain.RoleEmployee {
		t.Fatalf("unexpected call: %d %s %+v", rec.Code, stub.status, stub.actor)
	}

	c, _ = newTestContext(http.MethodPatch, "/v1/employee/tasks/b3/status", `{"status":"cancelled"}`, "e7", domain.RoleEmployee)
	if err := h.UpdateStatus(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	c, _ = newTestContext(http.MethodPatch, "/v1/admin/bookings/b3/status", `{}`, "a1", domain.RoleAdmin)
	var ve *domain.ValidationError
	if err := h.UpdateStatus(c); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for missing status, got %v", err)
	}
}

func TestBookingHandler_Assign_EmptyClears(t *testing.T) {
	stub := &stubBookingService{assignee: "unset"}
	h := NewBookingHandler(stub)

	c, _ := newTestContext(http.MethodPut, "/v1/admin/bookings/b3/assignee", `{"employee_id":""}`, "a1", domain.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("b3")
	if err := h.Assign(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.assignee != "" || stub.actor.Role != domain.RoleAdmin {
		t.Fatalf("expected clear by admin, got %q %+v", stub.assignee, stub.actor)
	}
}

func TestBookingHandler_Stats(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{})

	c, rec := newTestContext(http.MethodGet, "/v1/admin/stats", "", "a1", domain.RoleAdmin)
	if err := h.Stats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.UsersByRole["customer"] != 5 || resp.UsersByRole["admin"] != 0 || resp.Bookings.Revenue != 227 {
		t.Fatalf("unexpected stats: %+v", resp)
	}
}

func TestBookingHandler_Lists_EmptyAreArrays(t *testing.T) {
	h := NewBookingHandler(&stubBookingService{})

	c, rec := newTestContext(http.MethodGet, "/v1/employee/tasks", "", "e7", domain.RoleEmployee)
	if err := h.Tasks(c); err != nil || rec.Body.String() != "[]\n" {
		t.Fatalf("tasks: %v %q", err, rec.Body.String())
	}

	c, rec = newTestContext(http.MethodGet, "/v1/admin/bookings/b1/events", "", "a1", domain.RoleAdmin)
	if err := h.History(c); err != nil || rec.Body.String() != "[]\n" {
		t.Fatalf("history: %v %q", err, rec.Body.String())
	}

	c, rec = newTestContext(http.MethodGet, "/v1/admin/payments/orphaned", "", "a1", domain.RoleAdmin)
	if err := h.OrphanedPayments(c); err != nil || rec.Body.String() != "[]\n" {
		t.Fatalf("orphaned payments: %v %q", err, rec.Body.String())
	}
}
