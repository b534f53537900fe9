package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]string
	states map[string]string
}

func newMemTokens() *memTokens {
	return &memTokens{tokens: make(map[string]string), states: make(map[string]string)}
}

func (m *memTokens) SaveToken(_ context.Context, sid, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[sid] = token
	return nil
}

func (m *memTokens) LoadToken(_ context.Context, sid string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[sid], nil
}

func (m *memTokens) DeleteToken(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, sid)
	return nil
}

func (m *memTokens) SaveState(_ context.Context, state, sid string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state] = sid
	return nil
}

func (m *memTokens) ConsumeState(_ context.Context, state string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sid, ok := m.states[state]
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	delete(m.states, state)
	return sid, nil
}

type stubExchanger struct {
	profile *domain.FederatedProfile
	err     error
}

func (s *stubExchanger) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (s *stubExchanger) Exchange(context.Context, string) (*domain.FederatedProfile, error) {
	return s.profile, s.err
}

// subscribe collects notifications on a channel.
func subscribe(c *AuthClient) (<-chan *domain.Identity, func()) {
	ch := make(chan *domain.Identity, 16)
	unsub := c.OnIdentityChange(func(id *domain.Identity) { ch <- id })
	return ch, unsub
}

func awaitIdentity(t *testing.T, ch <-chan *domain.Identity) *domain.Identity {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("no identity notification")
		return nil
	}
}

func TestAuthClient_FirstNotificationSettlesAnonymous(t *testing.T) {
	svc := NewAuthService(newStubIdentityRepo(), "secret", time.Hour)
	c := NewAuthClient("s1", svc, newMemTokens(), nil, discardLogger)

	ch, _ := subscribe(c)

	if id := awaitIdentity(t, ch); id != nil {
		t.Errorf("expected nil identity, got %+v", id)
	}
}

func TestAuthClient_RestoresPersistedSignIn(t *testing.T) {
	svc := NewAuthService(newStubIdentityRepo(), "secret", time.Hour)
	tokens := newMemTokens()
	ctx := context.Background()

	first := NewAuthClient("s1", svc, tokens, nil, discardLogger)
	if _, err := first.SignUp(ctx, "Jane", "jane@x.com", "pass123"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	restarted := NewAuthClient("s1", svc, tokens, nil, discardLogger)
	ch, _ := subscribe(restarted)

	id := awaitIdentity(t, ch)
	if id == nil || id.Email != "jane@x.com" {
		t.Fatalf("expected restored identity, got %+v", id)
	}
}

func TestAuthClient_InvalidTokenIsDiscarded(t *testing.T) {
	svc := NewAuthService(newStubIdentityRepo(), "secret", time.Hour)
	tokens := newMemTokens()
	tokens.tokens["s1"] = "garbage"

	c := NewAuthClient("s1", svc, tokens, nil, discardLogger)
	ch, _ := subscribe(c)

	if id := awaitIdentity(t, ch); id != nil {
		t.Errorf("expected nil identity, got %+v", id)
	}
	if _, ok := tokens.tokens["s1"]; ok {
		t.Error("invalid token should be removed")
	}
}

func TestAuthClient_SignInNotifiesSubscribers(t *testing.T) {
	svc := NewAuthService(newStubIdentityRepo(), "secret", time.Hour)
	ctx := context.Background()
	_, _, _ = svc.Register(ctx, "Jane", "jane@x.com", "pass123")
	tokens := newMemTokens()
	c := NewAuthClient("s1", svc, tokens, nil, discardLogger)
	ch, _ := subscribe(c)
	_ = awaitIdentity(t, ch)

	if err := c.SignIn(ctx, "jane@x.com", "pass123"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if id := awaitIdentity(t, ch); id == nil || id.Email != "jane@x.com" {
		t.Fatalf("expected signed-in identity, got %+v", id)
	}
	if tokens.tokens["s1"] == "" {
		t.Error("token should be persisted")
	}

	if err := c.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if id := awaitIdentity(t, ch); id != nil {
		t.Errorf("expected nil after sign out, got %+v", id)
	}
	if _, ok := tokens.tokens["s1"]; ok {
		t.Error("token should be removed on sign out")
	}
}

func TestAuthClient_SignInFailureCarriesServiceMessage(t *testing.T) {
	svc := NewAuthService(newStubIdentityRepo(), "secret", time.Hour)
	c := NewAuthClient("s1", svc, nil, nil, discardLogger)

	err := c.SignIn(context.Background(), "jane@x.com", "nope")

	var ae *domain.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if ae.Message != domain.ErrInvalidCredentials.Error() {
		t.Errorf("unexpected message %q", ae.Message)
	}
}

func TestAuthClient_FederatedDisabled(t *testing.T) {
	svc := NewAuthService(newStubIdentityRepo(), "secret", time.Hour)
	c := NewAuthClient("s1", svc, nil, nil, discardLogger)

	_, err := c.SignInWithFederated(context.Background(), domain.FederatedCredential{Code: "x"})
	if !errors.Is(err, domain.ErrFederationDisabled) {
		t.Errorf("expected ErrFederationDisabled, got %v", err)
	}
}

func TestAuthClient_FederatedExchangeFailure(t *testing.T) {
	svc := NewAuthService(newStubIdentityRepo(), "secret", time.Hour)
	ex := &stubExchanger{err: errors.New("access_denied")}
	c := NewAuthClient("s1", svc, nil, ex, discardLogger)

	_, err := c.SignInWithFederated(context.Background(), domain.FederatedCredential{Code: "x"})

	var ae *domain.AuthError
	if !errors.As(err, &ae) || ae.Message != "access_denied" {
		t.Errorf("expected AuthError with provider message, got %v", err)
	}
}

func TestAuthClient_CloseStopsNotifications(t *testing.T) {
	svc := NewAuthService(newStubIdentityRepo(), "secret", time.Hour)
	c := NewAuthClient("s1", svc, nil, nil, discardLogger)
	ch, _ := subscribe(c)
	_ = awaitIdentity(t, ch)

	c.Close()
	_, _ = c.SignUp(context.Background(), "Jane", "jane@x.com", "pass123")

	select {
	case id := <-ch:
		t.Errorf("unexpected notification after close: %+v", id)
	default:
	}
}

func TestFederatedFlow_BeginAndResolve(t *testing.T) {
	tokens := newMemTokens()
	flow := NewFederatedFlow(&stubExchanger{}, tokens)
	ctx := context.Background()

	url, err := flow.Begin(ctx, "s1")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	var state string
	for k := range tokens.states {
		state = k
	}
	if url != "https://accounts.example.com/auth?state="+state {
		t.Errorf("unexpected url %q", url)
	}

	sid, err := flow.Resolve(ctx, state)
	if err != nil || sid != "s1" {
		t.Fatalf("expected s1, got %q (err %v)", sid, err)
	}
	if _, err := flow.Resolve(ctx, state); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("state must be single use, got %v", err)
	}
}

func TestFederatedFlow_Disabled(t *testing.T) {
	var flow *FederatedFlow
	if _, err := flow.Begin(context.Background(), "s1"); !errors.Is(err, domain.ErrFederationDisabled) {
		t.Errorf("expected ErrFederationDisabled, got %v", err)
	}
}
