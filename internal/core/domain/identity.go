package domain

import "time"

// Identity providers recorded on an identity.
const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

// Identity models an authenticated subject issued by the auth service.
// Only ID, DisplayName and Email are part of the public contract; the rest is
// private to the auth service.
type Identity struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"-"`
	Subject      string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Clone returns a copy the caller may keep without aliasing the source.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// FederatedCredential carries the result of the provider popup flow: the
// authorization code handed back to the callback.
type FederatedCredential struct {
	Code string
}

// FederatedProfile is what the federated provider tells us about the user.
type FederatedProfile struct {
	Provider    string
	Subject     string
	Email       string
	DisplayName string
}
