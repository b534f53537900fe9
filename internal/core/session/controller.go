// Package session tracks who is signed in to one portal session and which
// screen they are looking at.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/brandpreneur/client-portal/internal/core/access"
	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/ports"
)

// Provisioner creates the default client record for an identity. A record
// that already exists must be left untouched and reported as success.
type Provisioner interface {
	Provision(ctx context.Context, identity *domain.Identity) error
}

// State is an immutable view of the controller.
type State struct {
	Identity *domain.Identity `json:"identity"`
	Loading  bool             `json:"loading"`
	Role     access.Role      `json:"role"`
	Nav      Navigation       `json:"navigation"`
}

// Controller follows the auth service's identity notifications and derives
// the visitor's role and navigation from them.
type Controller struct {
	auth        ports.AuthProvider
	router      access.Router
	provisioner Provisioner
	log         zerolog.Logger

	mu          sync.Mutex
	identity    *domain.Identity
	loading     bool
	role        access.Role
	nav         Navigation
	started     bool
	closed      bool
	unsubscribe func()
	listeners   []func(prev, next State)
}

func NewController(auth ports.AuthProvider, router access.Router, provisioner Provisioner, log zerolog.Logger) *Controller {
	return &Controller{
		auth:        auth,
		router:      router,
		provisioner: provisioner,
		log:         log,
		loading:     true,
		role:        access.RoleAnonymous,
		nav:         defaultNavigation(access.RoleAnonymous),
	}
}

// OnChange registers fn to run after every identity notification. It must
// be called before Start.
func (c *Controller) OnChange(fn func(prev, next State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Start subscribes to identity notifications. Calling it again is a no-op.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	unsub := c.auth.OnIdentityChange(c.handle)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		unsub()
		return
	}
	c.unsubscribe = unsub
}

// Close ends the subscription. Notifications arriving afterwards are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.closed = true
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (c *Controller) handle(id *domain.Identity) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	prev := c.stateLocked()

	c.identity = id.Clone()
	c.loading = false
	c.role = c.router.Classify(id)
	if c.role != prev.Role || identityID(id) != identityID(prev.Identity) {
		c.nav = defaultNavigation(c.role)
	}

	next := c.stateLocked()
	listeners := append([]func(prev, next State){}, c.listeners...)
	c.mu.Unlock()

	c.log.Debug().Str("role", string(next.Role)).Str("identity_id", identityID(id)).Msg("identity changed")
	for _, fn := range listeners {
		fn(prev, next)
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{Identity: c.identity.Clone(), Loading: c.loading, Role: c.role, Nav: c.nav}
}

// SignIn asks the auth service to sign in. The new identity arrives through
// the subscription, not the return value.
func (c *Controller) SignIn(ctx context.Context, email, password string) error {
	if err := c.auth.SignIn(ctx, email, password); err != nil {
		return asAuthError("sign in", err)
	}
	return nil
}

// SignUp creates an identity and provisions its default client record. When
// provisioning fails the identity is kept; the returned error wraps
// domain.ErrProvisionFailed.
func (c *Controller) SignUp(ctx context.Context, name, email, password string) error {
	id, err := c.auth.SignUp(ctx, name, email, password)
	if err != nil {
		return asAuthError("sign up", err)
	}
	return c.provision(ctx, id)
}

// SignInWithFederatedProvider completes the provider flow and provisions a
// client record the first time the identity is seen.
func (c *Controller) SignInWithFederatedProvider(ctx context.Context, cred domain.FederatedCredential) error {
	id, err := c.auth.SignInWithFederated(ctx, cred)
	if err != nil {
		return asAuthError("federated sign in", err)
	}
	return c.provision(ctx, id)
}

func (c *Controller) SignOut(ctx context.Context) error {
	if err := c.auth.SignOut(ctx); err != nil {
		return asAuthError("sign out", err)
	}
	return nil
}

func (c *Controller) provision(ctx context.Context, id *domain.Identity) error {
	if c.router.Classify(id) == access.RoleAdmin {
		return nil
	}
	if err := c.provisioner.Provision(ctx, id); err != nil {
		c.log.Warn().Err(err).Str("identity_id", id.ID).Msg("client record provisioning failed, identity kept")
		return fmt.Errorf("%w: %w", domain.ErrProvisionFailed, err)
	}
	return nil
}

// ShowAuthScreen switches between the anonymous screens.
func (c *Controller) ShowAuthScreen(s AuthScreen) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !s.Valid() || c.loading || c.role != access.RoleAnonymous {
		return invalidNavigation(string(s), c.role)
	}
	c.nav.AuthScreen = s
	return nil
}

// ShowPage switches the client's active page.
func (c *Controller) ShowPage(p Page) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !p.Valid() || c.role != access.RoleClient {
		return invalidNavigation(string(p), c.role)
	}
	c.nav.Page = p
	return nil
}

// ShowAdminScreen switches the admin shell's screen.
func (c *Controller) ShowAdminScreen(s AdminScreen) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !s.Valid() || c.role != access.RoleAdmin {
		return invalidNavigation(string(s), c.role)
	}
	c.nav.AdminScreen = s
	return nil
}

func asAuthError(op string, err error) error {
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		return ae
	}
	return domain.NewAuthError(op, err)
}

func identityID(id *domain.Identity) string {
	if id == nil {
		return ""
	}
	return id.ID
}
