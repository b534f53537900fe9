package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/ports"
)

const restoreTimeout = 10 * time.Second

// AuthClient is the auth service as seen by a single portal session. It keeps
// the session's signed-in identity, persists its token, and notifies
// subscribers of every identity change in order.
type AuthClient struct {
	sessionID string
	svc       *AuthService
	tokens    ports.TokenStore
	exchanger ports.FederatedExchanger
	log       zerolog.Logger

	// emitMu serializes notifications so subscribers see changes in order.
	emitMu sync.Mutex

	mu        sync.Mutex
	identity  *domain.Identity
	settled   bool
	restoring bool
	subs      map[int]func(*domain.Identity)
	nextSub   int
	closed    bool
}

// NewAuthClient binds svc to sessionID. tokens and exchanger may be nil: the
// session then forgets its sign-in on restart, and federated sign-in is
// unavailable.
func NewAuthClient(sessionID string, svc *AuthService, tokens ports.TokenStore, exchanger ports.FederatedExchanger, log zerolog.Logger) *AuthClient {
	return &AuthClient{
		sessionID: sessionID,
		svc:       svc,
		tokens:    tokens,
		exchanger: exchanger,
		log:       log.With().Str("session_id", sessionID).Logger(),
		subs:      make(map[int]func(*domain.Identity)),
	}
}

// OnIdentityChange registers fn. The first subscription starts restoring the
// persisted sign-in in the background; fn receives the outcome once it is
// known, and every change after that.
func (a *AuthClient) OnIdentityChange(fn func(*domain.Identity)) func() {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	n := a.nextSub
	a.nextSub++
	a.subs[n] = fn
	settled, current := a.settled, a.identity.Clone()
	startRestore := !settled && !a.restoring
	if startRestore {
		a.restoring = true
	}
	a.mu.Unlock()

	if settled {
		fn(current)
	}
	if startRestore {
		go a.restore()
	}

	return func() {
		a.mu.Lock()
		delete(a.subs, n)
		a.mu.Unlock()
	}
}

func (a *AuthClient) restore() {
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)
	defer cancel()

	var restored *domain.Identity
	if a.tokens != nil {
		t, err := a.tokens.LoadToken(ctx, a.sessionID)
		if err != nil {
			a.log.Warn().Err(err).Msg("session token unavailable")
		} else if t != "" {
			id, err := a.svc.Verify(ctx, t)
			switch {
			case err == nil:
				restored = id
			case errors.Is(err, domain.ErrInvalidToken):
				_ = a.tokens.DeleteToken(ctx, a.sessionID)
			default:
				a.log.Warn().Err(err).Msg("session token not verified")
			}
		}
	}

	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	if a.settled || a.closed {
		a.mu.Unlock()
		return
	}
	a.identity = restored
	a.settled = true
	subs := a.subscribers()
	a.mu.Unlock()

	for _, fn := range subs {
		fn(restored.Clone())
	}
}

func (a *AuthClient) set(id *domain.Identity) {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.identity = id.Clone()
	a.settled = true
	subs := a.subscribers()
	a.mu.Unlock()

	for _, fn := range subs {
		fn(id.Clone())
	}
}

func (a *AuthClient) subscribers() []func(*domain.Identity) {
	out := make([]func(*domain.Identity), 0, len(a.subs))
	for i := 0; i < a.nextSub; i++ {
		if fn, ok := a.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (a *AuthClient) SignUp(ctx context.Context, name, email, password string) (*domain.Identity, error) {
	token, id, err := a.svc.Register(ctx, name, email, password)
	if err != nil {
		return nil, domain.NewAuthError("sign up", err)
	}
	a.signedIn(ctx, id, token)
	return id.Clone(), nil
}

func (a *AuthClient) SignIn(ctx context.Context, email, password string) error {
	token, id, err := a.svc.Login(ctx, email, password)
	if err != nil {
		return domain.NewAuthError("sign in", err)
	}
	a.signedIn(ctx, id, token)
	return nil
}

func (a *AuthClient) SignInWithFederated(ctx context.Context, cred domain.FederatedCredential) (*domain.Identity, error) {
	if a.exchanger == nil {
		return nil, domain.NewAuthError("federated sign in", domain.ErrFederationDisabled)
	}
	profile, err := a.exchanger.Exchange(ctx, cred.Code)
	if err != nil {
		return nil, domain.NewAuthError("federated sign in", err)
	}
	token, id, err := a.svc.FederatedLogin(ctx, profile)
	if err != nil {
		return nil, domain.NewAuthError("federated sign in", err)
	}
	a.signedIn(ctx, id, token)
	return id.Clone(), nil
}

func (a *AuthClient) SignOut(ctx context.Context) error {
	if a.tokens != nil {
		if err := a.tokens.DeleteToken(ctx, a.sessionID); err != nil {
			a.log.Warn().Err(err).Msg("session token not removed")
		}
	}
	a.set(nil)
	a.log.Info().Msg("signed out")
	return nil
}

func (a *AuthClient) signedIn(ctx context.Context, id *domain.Identity, token string) {
	if a.tokens != nil {
		if err := a.tokens.SaveToken(ctx, a.sessionID, token, a.svc.TokenTTL()); err != nil {
			a.log.Warn().Err(err).Msg("session token not persisted")
		}
	}
	a.set(id)
	a.log.Info().Str("identity_id", id.ID).Msg("signed in")
}

// Close drops all subscribers; later changes are not delivered.
func (a *AuthClient) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.subs = make(map[int]func(*domain.Identity))
}
