package ports

import (
	"context"
	"time"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

// AuthProvider is the auth service as seen by one portal session.
//
// Sign-in operations report only failure; the resulting identity is delivered
// through OnIdentityChange. The first notification after subscribing carries
// the restored identity (or nil) and ends the loading phase.
type AuthProvider interface {
	SignUp(ctx context.Context, name, email, password string) (*domain.Identity, error)
	SignIn(ctx context.Context, email, password string) error
	SignInWithFederated(ctx context.Context, cred domain.FederatedCredential) (*domain.Identity, error)
	SignOut(ctx context.Context) error
	OnIdentityChange(fn func(*domain.Identity)) (unsubscribe func())
}

// FederatedExchanger runs the OAuth-style provider flow.
type FederatedExchanger interface {
	// AuthCodeURL returns the provider consent URL for the given state.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the user's profile.
	Exchange(ctx context.Context, code string) (*domain.FederatedProfile, error)
}

// TokenStore persists the auth token of a portal session between restarts.
type TokenStore interface {
	SaveToken(ctx context.Context, sessionID, token string, ttl time.Duration) error
	LoadToken(ctx context.Context, sessionID string) (string, error)
	DeleteToken(ctx context.Context, sessionID string) error
	// SaveState binds an OAuth state value to a session for the callback.
	SaveState(ctx context.Context, state, sessionID string, ttl time.Duration) error
	// ConsumeState returns and deletes the session bound to state.
	ConsumeState(ctx context.Context, state string) (string, error)
}

// PreferenceStore persists presentation preferences per portal session.
type PreferenceStore interface {
	LoadTheme(ctx context.Context, sessionID string) (domain.Theme, error)
	SaveTheme(ctx context.Context, sessionID string, theme domain.Theme) error
}
