package ports

import (
	"context"
	"time"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

// ContactRepository stores contact form submissions.
type ContactRepository interface {
	Insert(ctx context.Context, req *domain.ContactRequest) error
	MarkNotified(ctx context.Context, id string, at time.Time) error
	ListByClient(ctx context.Context, clientID string) ([]*domain.ContactRequest, error)
}

// ContactNotifier tells the agency about a new contact request.
type ContactNotifier interface {
	Notify(ctx context.Context, req *domain.ContactRequest) error
}

// SubmissionGuard suppresses repeated submissions carrying the same key.
type SubmissionGuard interface {
	// Claim returns false when key was already claimed within ttl.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// ContactInput is the contact form as submitted by a client.
type ContactInput struct {
	Project    string
	Subject    string
	Category   domain.ContactCategory
	Details    string
	Attachment *Attachment
	// IdempotencyKey, when set, makes repeated submissions a no-op.
	IdempotencyKey string
}

// Attachment is an optional file sent with a contact request.
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ContactQueue hands stored requests to the notification workers.
type ContactQueue interface {
	Enqueue(req *domain.ContactRequest)
}
