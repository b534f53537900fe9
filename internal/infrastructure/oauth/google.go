// Package oauth implements federated sign-in with Google.
package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// GoogleExchanger implements ports.FederatedExchanger.
type GoogleExchanger struct {
	config *oauth2.Config
}

func NewGoogleExchanger(cfg Config) *GoogleExchanger {
	return &GoogleExchanger{config: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes: []string{
			oauth2api.OpenIDScope,
			oauth2api.UserinfoEmailScope,
			oauth2api.UserinfoProfileScope,
		},
		Endpoint: google.Endpoint,
	}}
}

// AuthCodeURL returns the consent page URL, forcing the account chooser.
func (g *GoogleExchanger) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades code for a token and reads the Google profile.
func (g *GoogleExchanger) Exchange(ctx context.Context, code string) (*domain.FederatedProfile, error) {
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google token exchange: %w", err)
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(g.config.TokenSource(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth2 service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	return profileFromUserinfo(info)
}

func profileFromUserinfo(info *oauth2api.Userinfo) (*domain.FederatedProfile, error) {
	if info.Id == "" || info.Email == "" {
		return nil, fmt.Errorf("google profile is missing id or email")
	}
	if info.VerifiedEmail != nil && !*info.VerifiedEmail {
		return nil, fmt.Errorf("google account email %s is not verified", info.Email)
	}
	return &domain.FederatedProfile{
		Provider:    domain.ProviderGoogle,
		Subject:     info.Id,
		Email:       info.Email,
		DisplayName: info.Name,
	}, nil
}
