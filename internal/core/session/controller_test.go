package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/brandpreneur/client-portal/internal/core/access"
	"github.com/brandpreneur/client-portal/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

// fakeAuth behaves like the auth service: sign-in results are delivered to
// subscribers, never returned.
type fakeAuth struct {
	mu        sync.Mutex
	users     map[string]*domain.Identity // by email
	passwords map[string]string
	subs      map[int]func(*domain.Identity)
	nextSub   int
	signInErr error
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		users:     make(map[string]*domain.Identity),
		passwords: make(map[string]string),
		subs:      make(map[int]func(*domain.Identity)),
	}
}

func (a *fakeAuth) emit(id *domain.Identity) {
	a.mu.Lock()
	subs := make([]func(*domain.Identity), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.mu.Unlock()
	for _, fn := range subs {
		fn(id)
	}
}

func (a *fakeAuth) SignUp(_ context.Context, name, email, password string) (*domain.Identity, error) {
	a.mu.Lock()
	if _, ok := a.users[email]; ok {
		a.mu.Unlock()
		return nil, domain.NewAuthError("sign up", domain.ErrIdentityExists)
	}
	id := &domain.Identity{ID: "uid-" + email, DisplayName: name, Email: email}
	a.users[email] = id
	a.passwords[email] = password
	a.mu.Unlock()
	a.emit(id)
	return id, nil
}

func (a *fakeAuth) SignIn(_ context.Context, email, password string) error {
	a.mu.Lock()
	if a.signInErr != nil {
		err := a.signInErr
		a.mu.Unlock()
		return err
	}
	id, ok := a.users[email]
	if !ok || a.passwords[email] != password {
		a.mu.Unlock()
		return domain.ErrInvalidCredentials
	}
	a.mu.Unlock()
	a.emit(id)
	return nil
}

func (a *fakeAuth) SignInWithFederated(_ context.Context, cred domain.FederatedCredential) (*domain.Identity, error) {
	if cred.Code == "" {
		return nil, errors.New("popup closed by user")
	}
	a.mu.Lock()
	id, ok := a.users["fed@x.com"]
	if !ok {
		id = &domain.Identity{ID: "uid-fed", DisplayName: "Fed User", Email: "fed@x.com"}
		a.users["fed@x.com"] = id
	}
	a.mu.Unlock()
	a.emit(id)
	return id, nil
}

func (a *fakeAuth) SignOut(_ context.Context) error {
	a.emit(nil)
	return nil
}

func (a *fakeAuth) OnIdentityChange(fn func(*domain.Identity)) func() {
	a.mu.Lock()
	n := a.nextSub
	a.nextSub++
	a.subs[n] = fn
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		delete(a.subs, n)
		a.mu.Unlock()
	}
}

func (a *fakeAuth) subscribers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.subs)
}

// stubProvisioner keeps insert-if-absent records like the document store.
type stubProvisioner struct {
	mu      sync.Mutex
	records map[string]domain.ClientRecord
	calls   int
	err     error
}

func newStubProvisioner() *stubProvisioner {
	return &stubProvisioner{records: make(map[string]domain.ClientRecord)}
}

func (p *stubProvisioner) Provision(_ context.Context, id *domain.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return p.err
	}
	if _, ok := p.records[id.ID]; ok {
		return nil
	}
	p.records[id.ID] = domain.ClientRecord{ID: id.ID, Name: id.DisplayName, Email: id.Email}
	return nil
}

const adminEmail = "admin@brandpreneur.co"

func newTestController(auth *fakeAuth, prov *stubProvisioner) *Controller {
	return NewController(auth, access.NewRouter(access.AdminEmail(adminEmail)), prov, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestController_LoadingUntilFirstNotification(t *testing.T) {
	auth := newFakeAuth()
	c := newTestController(auth, newStubProvisioner())
	c.Start()

	if st := c.State(); !st.Loading || st.Identity != nil {
		t.Fatalf("expected loading with no identity, got %+v", st)
	}

	auth.emit(nil)

	st := c.State()
	if st.Loading {
		t.Error("expected loading to end after the first notification")
	}
	if st.Role != access.RoleAnonymous || st.Nav.AuthScreen != ScreenLogin {
		t.Errorf("expected anonymous on login screen, got %+v", st)
	}
}

func TestController_StartIsIdempotentAndCloseUnsubscribes(t *testing.T) {
	auth := newFakeAuth()
	c := newTestController(auth, newStubProvisioner())

	c.Start()
	c.Start()
	if n := auth.subscribers(); n != 1 {
		t.Fatalf("expected a single subscription, got %d", n)
	}

	c.Close()
	c.Close()
	if n := auth.subscribers(); n != 0 {
		t.Errorf("expected subscription torn down, got %d", n)
	}
}

func TestController_IgnoresNotificationsAfterClose(t *testing.T) {
	auth := newFakeAuth()
	c := newTestController(auth, newStubProvisioner())
	var seen []State
	c.OnChange(func(_, next State) { seen = append(seen, next) })
	c.Start()
	handle := c.handle
	c.Close()

	handle(&domain.Identity{ID: "late"})

	if len(seen) != 0 || c.State().Identity != nil {
		t.Error("notification after close must be ignored")
	}
}

// ---------------------------------------------------------------------------
// Auth operations
// ---------------------------------------------------------------------------

func TestController_SignUpProvisionsDefaultRecord(t *testing.T) {
	auth := newFakeAuth()
	prov := newStubProvisioner()
	c := newTestController(auth, prov)
	c.Start()
	auth.emit(nil)

	if err := c.SignUp(context.Background(), "Jane Doe", "jane@x.com", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	rec, ok := prov.records["uid-jane@x.com"]
	if !ok {
		t.Fatal("expected a client record for the new identity")
	}
	if rec.Name != "Jane Doe" || rec.Email != "jane@x.com" {
		t.Errorf("unexpected record %+v", rec)
	}
	st := c.State()
	if st.Role != access.RoleClient || st.Nav.Page != PageProgress {
		t.Errorf("expected client on Progress, got %+v", st)
	}
}

func TestController_SignUpProvisionFailureKeepsIdentity(t *testing.T) {
	auth := newFakeAuth()
	prov := newStubProvisioner()
	prov.err = errors.New("quota exceeded")
	c := newTestController(auth, prov)
	c.Start()

	err := c.SignUp(context.Background(), "Jane Doe", "jane@x.com", "secret1")

	if !errors.Is(err, domain.ErrProvisionFailed) {
		t.Fatalf("expected ErrProvisionFailed, got %v", err)
	}
	if _, ok := auth.users["jane@x.com"]; !ok {
		t.Error("identity must not be rolled back")
	}
	if c.State().Identity == nil {
		t.Error("identity stays signed in after a provisioning failure")
	}
}

func TestController_SignInFailureIsAuthError(t *testing.T) {
	auth := newFakeAuth()
	auth.signInErr = errors.New("auth/network-request-failed")
	c := newTestController(auth, newStubProvisioner())
	c.Start()

	err := c.SignIn(context.Background(), "jane@x.com", "pw")

	var ae *domain.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if ae.Message != "auth/network-request-failed" {
		t.Errorf("expected the service message verbatim, got %q", ae.Message)
	}
}

func TestController_SignUpExistingAccount(t *testing.T) {
	auth := newFakeAuth()
	c := newTestController(auth, newStubProvisioner())
	_ = c.SignUp(context.Background(), "Jane", "jane@x.com", "pw")

	err := c.SignUp(context.Background(), "Jane", "jane@x.com", "pw")

	var ae *domain.AuthError
	if !errors.As(err, &ae) || !errors.Is(err, domain.ErrIdentityExists) {
		t.Errorf("expected AuthError wrapping ErrIdentityExists, got %v", err)
	}
}

func TestController_FederatedSignInIsIdempotent(t *testing.T) {
	auth := newFakeAuth()
	prov := newStubProvisioner()
	c := newTestController(auth, prov)
	c.Start()

	for i := 0; i < 2; i++ {
		if err := c.SignInWithFederatedProvider(context.Background(), domain.FederatedCredential{Code: "code"}); err != nil {
			t.Fatalf("federated sign in %d: %v", i, err)
		}
		_ = c.SignOut(context.Background())
	}

	if len(prov.records) != 1 {
		t.Errorf("expected exactly one client record, got %d", len(prov.records))
	}
}

func TestController_FederatedPopupFailure(t *testing.T) {
	auth := newFakeAuth()
	prov := newStubProvisioner()
	c := newTestController(auth, prov)

	err := c.SignInWithFederatedProvider(context.Background(), domain.FederatedCredential{})

	var ae *domain.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if prov.calls != 0 {
		t.Error("nothing must be provisioned when the provider flow fails")
	}
}

func TestController_AdminIsNotProvisioned(t *testing.T) {
	auth := newFakeAuth()
	prov := newStubProvisioner()
	c := newTestController(auth, prov)
	c.Start()

	if err := c.SignUp(context.Background(), "Agency", adminEmail, "pw"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if len(prov.records) != 0 {
		t.Error("admin identity must not get a client record")
	}
	st := c.State()
	if st.Role != access.RoleAdmin || st.Nav.AdminScreen != AdminDashboard {
		t.Errorf("expected admin dashboard, got %+v", st)
	}
}

func TestController_SignOutReturnsToLogin(t *testing.T) {
	auth := newFakeAuth()
	c := newTestController(auth, newStubProvisioner())
	c.Start()
	_ = c.SignUp(context.Background(), "Jane", "jane@x.com", "pw")
	_ = c.ShowPage(PageAssets)

	if err := c.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out: %v", err)
	}

	st := c.State()
	if st.Identity != nil || st.Role != access.RoleAnonymous || st.Nav != (Navigation{AuthScreen: ScreenLogin}) {
		t.Errorf("expected anonymous login state, got %+v", st)
	}
}

// ---------------------------------------------------------------------------
// Navigation
// ---------------------------------------------------------------------------

func TestController_NavigationIsRoleScoped(t *testing.T) {
	auth := newFakeAuth()
	c := newTestController(auth, newStubProvisioner())
	c.Start()
	auth.emit(nil)

	if err := c.ShowAuthScreen(ScreenSignUp); err != nil {
		t.Fatalf("auth screen: %v", err)
	}
	if err := c.ShowPage(PageContact); !errors.Is(err, domain.ErrInvalidNavigation) {
		t.Errorf("anonymous must not reach client pages, got %v", err)
	}
	if err := c.ShowAdminScreen(AdminUsers); !errors.Is(err, domain.ErrInvalidNavigation) {
		t.Errorf("anonymous must not reach admin screens, got %v", err)
	}

	_ = c.SignUp(context.Background(), "Jane", "jane@x.com", "pw")
	if err := c.ShowPage(PageContact); err != nil {
		t.Errorf("client page: %v", err)
	}
	if err := c.ShowPage("Billing"); !errors.Is(err, domain.ErrInvalidNavigation) {
		t.Errorf("unknown page must be rejected, got %v", err)
	}
	if err := c.ShowAdminScreen(AdminEditor); !errors.Is(err, domain.ErrInvalidNavigation) {
		t.Errorf("client must never reach admin screens, got %v", err)
	}
	if got := c.State().Nav.Page; got != PageContact {
		t.Errorf("expected Contact page, got %q", got)
	}
}

func TestController_OnChangeReportsTransitions(t *testing.T) {
	auth := newFakeAuth()
	c := newTestController(auth, newStubProvisioner())
	var roles []access.Role
	c.OnChange(func(_, next State) { roles = append(roles, next.Role) })
	c.Start()

	auth.emit(nil)
	auth.emit(&domain.Identity{ID: "a", Email: adminEmail})
	auth.emit(nil)

	want := []access.Role{access.RoleAnonymous, access.RoleAdmin, access.RoleAnonymous}
	if len(roles) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(roles))
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Errorf("notification %d: expected %s, got %s", i, want[i], roles[i])
		}
	}
}
