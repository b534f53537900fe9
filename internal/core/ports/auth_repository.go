package ports

import (
	"context"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

// IdentityRepository persists identities for the auth service.
type IdentityRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	// FindBySubject looks up a federated identity by provider and subject.
	FindBySubject(ctx context.Context, provider, subject string) (*domain.Identity, error)
	// Create stores a new identity and returns it with its assigned ID.
	// A duplicate email yields domain.ErrIdentityExists.
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
}
