// Package session holds the client-side authentication state: the
// Controller that tracks who is signed in, and the gates that decide
// whether a view may render for that state.
package session

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
	"github.com/brightnest/cleaning-portal/internal/core/ports"
)

// Controller owns the current authentication state. It is created once per
// client and passed explicitly to whatever needs it.
//
// Store events are handled one at a time in arrival order, and each
// resulting state is delivered to every subscriber before the next event
// is handled.
type Controller struct {
	store ports.SessionStore
	roles ports.RoleResolver
	log   zerolog.Logger

	// handling serializes event processing and delivery.
	handling sync.Mutex

	mu          sync.RWMutex
	state       State
	initialized bool
	closed      bool
	detach      func()
	subs        map[int]func(State)
	nextSub     int
	// pending holds store events that arrived during Initialize.
	pending []ports.SessionEvent
}

func NewController(store ports.SessionStore, roles ports.RoleResolver, log zerolog.Logger) *Controller {
	return &Controller{
		store: store,
		roles: roles,
		log:   log,
		state: Loading(),
		subs:  make(map[int]func(State)),
	}
}

// Initialize starts listening for store changes, reads the stored session
// and resolves its role. Changes reported while it runs are applied after
// the initial state, in order. It runs once; later calls return nil. On
// failure the controller is initialized as signed out.
func (c *Controller) Initialize(ctx context.Context) error {
	c.handling.Lock()
	defer c.handling.Unlock()

	c.mu.Lock()
	done := c.initialized || c.closed || c.detach != nil
	c.mu.Unlock()
	if done {
		return nil
	}

	detach := c.store.OnChange(c.handle)
	c.mu.Lock()
	c.detach = detach
	c.mu.Unlock()

	st := SignedOut()
	sess, err := c.store.CurrentSession(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to read current session")
	} else if sess != nil {
		st = c.resolve(ctx, sess)
	}

	c.mu.Lock()
	c.state = st
	c.initialized = true
	c.mu.Unlock()
	c.deliver(st)

	// Events queued before initialized was set. Later ones wait on
	// handling and run after these.
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, ev := range pending {
		c.apply(ev)
	}
	return err
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Initialized reports whether Initialize has completed.
func (c *Controller) Initialized() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.initialized
}

// Subscribe registers fn for every state change after initialization.
// The returned function must be called to unsubscribe. fn runs on the
// goroutine that caused the change and must not call back into the
// controller.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// SignUp creates an account. The new user is not signed in.
func (c *Controller) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	return c.store.SignUp(ctx, in)
}

// SignIn authenticates with the store. The resulting state arrives through
// the store's signed-in event.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	_, err := c.store.SignIn(ctx, email, password)
	return err
}

// SignOut ends the session. Local state is cleared even if the store call
// fails; the failure is only logged.
func (c *Controller) SignOut(ctx context.Context) {
	if err := c.store.SignOut(ctx); err != nil {
		c.log.Warn().Err(err).Msg("sign out failed, clearing local session anyway")
	}
	c.handle(ports.SessionEvent{Type: ports.SessionSignedOut})
}

// Close stops listening to the store. Events arriving afterwards are
// dropped and subscribers are no longer called.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	detach := c.detach
	c.detach = nil
	c.mu.Unlock()

	if detach != nil {
		detach()
	}
}

func (c *Controller) handle(ev ports.SessionEvent) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if !c.initialized {
		c.pending = append(c.pending, ev)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.handling.Lock()
	defer c.handling.Unlock()
	c.apply(ev)
}

// apply moves to the state ev implies. The caller holds handling.
func (c *Controller) apply(ev ports.SessionEvent) {
	c.mu.RLock()
	closed := c.closed
	current := c.state
	c.mu.RUnlock()
	if closed {
		return
	}

	var next State
	switch ev.Type {
	case ports.SessionSignedIn, ports.SessionTokenRefreshed:
		if ev.Session == nil {
			next = SignedOut()
			break
		}
		if ev.Type == ports.SessionTokenRefreshed && current.RoleResolved && current.UserID() == ev.Session.UserID {
			next = SignedIn(ev.Session, current.Role)
			break
		}
		next = c.resolve(context.Background(), ev.Session)
	default:
		if current.Status == StatusUnauthenticated {
			return
		}
		next = SignedOut()
	}

	c.mu.Lock()
	c.state = next
	c.mu.Unlock()

	c.log.Debug().Str("event", string(ev.Type)).Str("status", next.Status.String()).Msg("session state changed")
	c.deliver(next)
}

// resolve builds the authenticated state for sess. A role lookup failure
// is logged and leaves the role unresolved.
func (c *Controller) resolve(ctx context.Context, sess *domain.Session) State {
	role, err := c.roles.ResolveRole(ctx, sess.UserID)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", sess.UserID).Msg("failed to resolve role")
		return SignedIn(sess, "")
	}
	return SignedIn(sess, role)
}

func (c *Controller) deliver(st State) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	fns := make([]func(State), 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		fns = append(fns, c.subs[id])
	}
	c.mu.RUnlock()

	for _, fn := range fns {
		fn(st)
	}
}
