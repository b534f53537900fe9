package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/ports"
)

// ClientService reads and provisions client records.
type ClientService struct {
	store  ports.ClientStore
	logger zerolog.Logger
	newID  func() string
	now    func() time.Time
}

func NewClientService(store ports.ClientStore, logger zerolog.Logger) *ClientService {
	return &ClientService{store: store, logger: logger, newID: uuid.NewString, now: time.Now}
}

// Get returns one record; any failure is a *domain.FetchError.
func (s *ClientService) Get(ctx context.Context, id string) (*domain.ClientRecord, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, &domain.FetchError{ClientID: id, Err: err}
	}
	return rec, nil
}

// List returns every record, newest first.
func (s *ClientService) List(ctx context.Context) ([]*domain.ClientRecord, error) {
	recs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, &domain.FetchError{Err: err}
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	return recs, nil
}

func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("client_id", id).Msg("client record deleted")
	return nil
}

// Provision creates the default record for identity. An existing record is
// left untouched and counts as success.
func (s *ClientService) Provision(ctx context.Context, identity *domain.Identity) error {
	name := identity.DisplayName
	if name == "" {
		name = identity.Email
	}
	now := s.now().UTC()
	rec := &domain.ClientRecord{
		ID:        identity.ID,
		Name:      name,
		Email:     identity.Email,
		Data:      domain.DefaultClientData(s.newID),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.store.Create(ctx, rec)
	if errors.Is(err, domain.ErrClientExists) {
		s.logger.Debug().Str("client_id", identity.ID).Msg("client record already provisioned")
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.Info().Str("client_id", identity.ID).Msg("client record provisioned")
	return nil
}

// Import writes rec as given, replacing any record with the same id. It is
// the restore path for documents exported with `clients show`.
func (s *ClientService) Import(ctx context.Context, rec *domain.ClientRecord) error {
	if err := checkImport(rec); err != nil {
		return err
	}
	now := s.now().UTC()
	rec = rec.Clone()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Data.Progress.Items == nil {
		rec.Data.Progress.Items = make(map[string][]domain.TimelineItem)
	}

	if err := s.store.Set(ctx, rec); err != nil {
		return err
	}
	s.logger.Info().Str("client_id", rec.ID).Msg("client record imported")
	return nil
}

func checkImport(rec *domain.ClientRecord) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", domain.ErrInvalidValue, fmt.Sprintf(format, args...))
	}
	if rec == nil || strings.TrimSpace(rec.ID) == "" {
		return invalid("record id is required")
	}
	for cat, items := range rec.Data.Progress.Items {
		for i, it := range items {
			if !it.Status.Valid() {
				return invalid("items.%s.%d.status %q", cat, i, it.Status)
			}
		}
	}
	for i, p := range rec.Data.Progress.Payments {
		if p.Amount < 0 {
			return invalid("payments.%d.amount must be non-negative", i)
		}
		if !p.Status.Valid() {
			return invalid("payments.%d.status %q", i, p.Status)
		}
	}
	for i, t := range rec.Data.Guidelines.Typography {
		if !t.Type.Valid() {
			return invalid("typography.%d.type %q", i, t.Type)
		}
	}
	for i, l := range rec.Data.Guidelines.Logos {
		if !l.Type.Valid() {
			return invalid("logos.%d.type %q", i, l.Type)
		}
	}
	return nil
}
