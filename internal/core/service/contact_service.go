package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/editor"
	"github.com/brandpreneur/client-portal/internal/core/ports"
)

const submissionTTL = time.Hour

// ContactService records contact requests from clients and notifies the
// agency about them.
type ContactService struct {
	repo     ports.ContactRepository
	blobs    ports.BlobStore
	guard    ports.SubmissionGuard
	notifier ports.ContactNotifier
	queue    ports.ContactQueue
	logger   zerolog.Logger
	now      func() time.Time
}

func NewContactService(repo ports.ContactRepository, blobs ports.BlobStore, guard ports.SubmissionGuard, notifier ports.ContactNotifier, logger zerolog.Logger) *ContactService {
	return &ContactService{
		repo:     repo,
		blobs:    blobs,
		guard:    guard,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// SetQueue makes Submit hand notifications to q instead of sending them
// inline.
func (s *ContactService) SetQueue(q ports.ContactQueue) { s.queue = q }

// Submit validates and stores a request. With an idempotency key, a repeat
// within an hour fails with domain.ErrDuplicateRequest.
func (s *ContactService) Submit(ctx context.Context, client *domain.ClientRecord, in ports.ContactInput) (*domain.ContactRequest, error) {
	if err := validateContact(in); err != nil {
		return nil, err
	}

	if in.IdempotencyKey != "" && s.guard != nil {
		ok, err := s.guard.Claim(ctx, "contact:"+client.ID+":"+in.IdempotencyKey, submissionTTL)
		if err != nil {
			s.logger.Warn().Err(err).Msg("submission guard unavailable")
		} else if !ok {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Msg("duplicate contact request")
			return nil, domain.ErrDuplicateRequest
		}
	}

	req := &domain.ContactRequest{
		ID:          ulid.Make().String(),
		ClientID:    client.ID,
		ClientName:  client.Name,
		ClientEmail: client.Email,
		Project:     strings.TrimSpace(in.Project),
		Subject:     strings.TrimSpace(in.Subject),
		Category:    in.Category,
		Details:     in.Details,
		CreatedAt:   s.now().UTC(),
	}
	if req.Project == "" {
		req.Project = client.Name
	}

	if a := in.Attachment; a != nil && len(a.Data) > 0 {
		if s.blobs == nil {
			return nil, &domain.UploadError{Path: a.FileName, Err: errors.New("file storage is not configured")}
		}
		path := editor.BlobPath(client.ID, "contact", req.ID, a.FileName)
		url, err := s.blobs.Upload(ctx, path, a.ContentType, a.Data)
		if err != nil {
			return nil, &domain.UploadError{Path: path, Err: err}
		}
		req.AttachmentURL = url
	}

	if err := s.repo.Insert(ctx, req); err != nil {
		return nil, fmt.Errorf("store contact request: %w", err)
	}
	s.logger.Info().Str("request_id", req.ID).Str("client_id", client.ID).Str("category", string(req.Category)).Msg("contact request received")

	queued := *req
	if s.queue != nil {
		s.queue.Enqueue(&queued)
	} else if err := s.Deliver(ctx, &queued); err != nil {
		s.logger.Error().Err(err).Str("request_id", req.ID).Msg("contact notification failed")
	}
	return req, nil
}

// Deliver sends the agency notification for req and marks it notified.
func (s *ContactService) Deliver(ctx context.Context, req *domain.ContactRequest) error {
	if s.notifier == nil {
		return nil
	}
	if err := s.notifier.Notify(ctx, req); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	at := s.now().UTC()
	if err := s.repo.MarkNotified(ctx, req.ID, at); err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	req.NotifiedAt = &at
	return nil
}

// History lists a client's past requests, newest first.
func (s *ContactService) History(ctx context.Context, clientID string) ([]*domain.ContactRequest, error) {
	return s.repo.ListByClient(ctx, clientID)
}

func validateContact(in ports.ContactInput) error {
	switch {
	case strings.TrimSpace(in.Subject) == "":
		return fmt.Errorf("%w: subject is required", domain.ErrInvalidValue)
	case !in.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidValue, in.Category)
	case strings.TrimSpace(in.Details) == "":
		return fmt.Errorf("%w: details are required", domain.ErrInvalidValue)
	}
	return nil
}
