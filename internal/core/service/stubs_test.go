package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Identities and sessions
// ---------------------------------------------------------------------------

type stubIdentityRepo struct {
	users     map[string]*domain.User // by email
	createErr error
	deleted   []string
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubIdentityRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = "id-" + user.Email
	}
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubIdentityRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubIdentityRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubIdentityRepo) Delete(_ context.Context, id string) error {
	for email, u := range r.users {
		if u.ID == id {
			delete(r.users, email)
		}
	}
	r.deleted = append(r.deleted, id)
	return nil
}

type stubSessionRepo struct {
	sessions  map[string]string // session id -> user id
	activeErr error
	revokeErr error
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]string)}
}

func (r *stubSessionRepo) Create(_ context.Context, s *domain.Session, _ time.Duration) error {
	r.sessions[s.ID] = s.UserID
	return nil
}

func (r *stubSessionRepo) Active(_ context.Context, id, userID string) (bool, error) {
	if r.activeErr != nil {
		return false, r.activeErr
	}
	uid, ok := r.sessions[id]
	return ok && uid == userID, nil
}

func (r *stubSessionRepo) Extend(_ context.Context, id string, _ time.Duration) error {
	if _, ok := r.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *stubSessionRepo) Revoke(_ context.Context, id string) error {
	if r.revokeErr != nil {
		return r.revokeErr
	}
	delete(r.sessions, id)
	return nil
}

// ---------------------------------------------------------------------------
// Profiles
// ---------------------------------------------------------------------------

type stubProfileRepo struct {
	byID      map[string]*domain.Profile
	createErr error
}

func newStubProfileRepo(seed ...*domain.Profile) *stubProfileRepo {
	r := &stubProfileRepo{byID: make(map[string]*domain.Profile)}
	for _, p := range seed {
		r.byID[p.ID] = p
	}
	return r
}

func (r *stubProfileRepo) Create(_ context.Context, p *domain.Profile) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.byID[p.ID]; ok {
		return domain.ErrProfileExists
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProfileRepo) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProfileRepo) ListByRole(_ context.Context, role domain.Role) ([]*domain.Profile, error) {
	var out []*domain.Profile
	for _, p := range r.byID {
		if p.Role == role {
			clone := *p
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubProfileRepo) Update(_ context.Context, id string, upd ports.ProfileUpdate) (*domain.Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	if upd.Username != nil {
		p.Username = *upd.Username
	}
	if upd.Phone != nil {
		p.Phone = *upd.Phone
	}
	clone := *p
	return &clone, nil
}

func (r *stubProfileRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrProfileNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubProfileRepo) CountByRole(_ context.Context) (map[domain.Role]int64, error) {
	out := make(map[domain.Role]int64)
	for _, p := range r.byID {
		out[p.Role]++
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Bookings and events
// ---------------------------------------------------------------------------

type stubBookingRepo struct {
	byID      map[string]*domain.Booking
	profiles  *stubProfileRepo
	createErr error
	created   int
	// honorCancel fails writes on a cancelled context, as the drivers do.
	honorCancel bool
	onCreate    func(*domain.Booking)
}

func newStubBookingRepo(profiles *stubProfileRepo, seed ...*domain.Booking) *stubBookingRepo {
	r := &stubBookingRepo{byID: make(map[string]*domain.Booking), profiles: profiles}
	for _, b := range seed {
		r.byID[b.ID] = b
	}
	return r
}

func (r *stubBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	if r.onCreate != nil {
		r.onCreate(b)
	}
	if r.honorCancel && ctx.Err() != nil {
		return ctx.Err()
	}
	if r.createErr != nil {
		return r.createErr
	}
	clone := *b
	r.byID[b.ID] = &clone
	r.created++
	return nil
}

func (r *stubBookingRepo) FindByID(_ context.Context, id string) (*domain.Booking, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *stubBookingRepo) List(_ context.Context, f ports.BookingFilter) ([]*domain.Booking, int64, error) {
	var out []*domain.Booking
	for _, b := range r.byID {
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if f.AssignedEmployee != "" && b.AssignedEmployee != f.AssignedEmployee {
			continue
		}
		if f.Status != "" && string(b.Status) != f.Status {
			continue
		}
		clone := *b
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.Sort == ports.SortByDateAsc {
			return out[i].Date+out[i].Time < out[j].Date+out[j].Time
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, int64(len(out)), nil
}

func (r *stubBookingRepo) ListDetailed(ctx context.Context, f ports.BookingFilter) ([]*domain.BookingDetail, int64, error) {
	items, total, _ := r.List(ctx, f)
	out := make([]*domain.BookingDetail, 0, len(items))
	for _, b := range items {
		d := &domain.BookingDetail{Booking: *b}
		if p, ok := r.profiles.byID[b.UserID]; ok {
			d.Customer = &domain.ProfileSummary{ID: p.ID, Username: p.Username, Phone: p.Phone}
		}
		if p, ok := r.profiles.byID[b.AssignedEmployee]; ok {
			d.Employee = &domain.ProfileSummary{ID: p.ID, Username: p.Username}
		}
		out = append(out, d)
	}
	return out, total, nil
}

func (r *stubBookingRepo) Update(_ context.Context, id string, upd ports.BookingUpdate) (*domain.Booking, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	if upd.Status != nil {
		b.Status = *upd.Status
	}
	if upd.AssignedEmployee != nil {
		b.AssignedEmployee = *upd.AssignedEmployee
	}
	clone := *b
	return &clone, nil
}

func (r *stubBookingRepo) Stats(_ context.Context) (*domain.BookingStats, error) {
	st := &domain.BookingStats{}
	for _, b := range r.byID {
		st.Total++
		switch b.Status {
		case domain.StatusPending:
			st.Pending++
		case domain.StatusCompleted:
			st.Completed++
		}
		if b.PaymentStatus == domain.PaymentPaid {
			st.Revenue += b.PaymentAmount
		}
	}
	return st, nil
}

type stubEventRepo struct {
	insertErr error
	inserted  []*domain.BookingEvent
}

func (r *stubEventRepo) Insert(_ context.Context, e *domain.BookingEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, e)
	return nil
}

func (r *stubEventRepo) ListByBooking(_ context.Context, id, wizardID string) ([]*domain.BookingEvent, error) {
	var out []*domain.BookingEvent
	for _, e := range r.inserted {
		if e.BookingID == id || (wizardID != "" && e.WizardID == wizardID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubEventRepo) ListByType(_ context.Context, t domain.BookingEventType, limit int) ([]*domain.BookingEvent, error) {
	var out []*domain.BookingEvent
	for i := len(r.inserted) - 1; i >= 0 && len(out) < limit; i-- {
		if r.inserted[i].Type == t {
			out = append(out, r.inserted[i])
		}
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.BookingEvent
}

func (p *recordingPublisher) Publish(ev domain.BookingEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []domain.BookingEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.BookingEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// ---------------------------------------------------------------------------
// Wizard drafts and payment gateway
// ---------------------------------------------------------------------------

type stubDraftStore struct {
	drafts      map[string]*domain.Wizard
	honorCancel bool
}

func newStubDraftStore() *stubDraftStore {
	return &stubDraftStore{drafts: make(map[string]*domain.Wizard)}
}

func (s *stubDraftStore) Save(ctx context.Context, w *domain.Wizard) error {
	if s.honorCancel && ctx.Err() != nil {
		return ctx.Err()
	}
	clone := *w
	clone.Attempts = append([]domain.PaymentAttempt(nil), w.Attempts...)
	s.drafts[w.ID] = &clone
	return nil
}

func (s *stubDraftStore) Get(_ context.Context, id string) (*domain.Wizard, error) {
	w, ok := s.drafts[id]
	if !ok {
		return nil, domain.ErrWizardNotFound
	}
	clone := *w
	clone.Attempts = append([]domain.PaymentAttempt(nil), w.Attempts...)
	return &clone, nil
}

type stubGateway struct {
	chargeFn func(req ports.ChargeRequest) (*ports.ChargeReceipt, error)
	requests []ports.ChargeRequest
}

func (g *stubGateway) Charge(_ context.Context, req ports.ChargeRequest) (*ports.ChargeReceipt, error) {
	g.requests = append(g.requests, req)
	return g.chargeFn(req)
}

func approvingGateway() *stubGateway {
	return &stubGateway{chargeFn: func(req ports.ChargeRequest) (*ports.ChargeReceipt, error) {
		return &ports.ChargeReceipt{
			Code:          ports.ApprovedCode,
			Message:       "RCS_SUCCESS",
			ReferenceID:   req.ReferenceID,
			TransactionID: "tx-" + req.ReferenceID,
			State:         "APPROVED",
		}, nil
	}}
}

func decliningGateway(code, msg string) *stubGateway {
	return &stubGateway{chargeFn: func(req ports.ChargeRequest) (*ports.ChargeReceipt, error) {
		return &ports.ChargeReceipt{Code: code, Message: msg, ReferenceID: req.ReferenceID}, nil
	}}
}
