package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

type stubClientStore struct {
	mu      sync.Mutex
	records map[string]*domain.ClientRecord
	err     error
}

func newStubClientStore() *stubClientStore {
	return &stubClientStore{records: make(map[string]*domain.ClientRecord)}
}

func (s *stubClientStore) Get(_ context.Context, id string) (*domain.ClientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.records[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return r.Clone(), nil
}

func (s *stubClientStore) Create(_ context.Context, rec *domain.ClientRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.records[rec.ID]; ok {
		return domain.ErrClientExists
	}
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *stubClientStore) Set(_ context.Context, rec *domain.ClientRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *stubClientStore) ReplaceData(_ context.Context, id string, data domain.ClientData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return domain.ErrClientNotFound
	}
	r.Data = data.Clone()
	return nil
}

func (s *stubClientStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *stubClientStore) ListAll(context.Context) ([]*domain.ClientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*domain.ClientRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	return out, nil
}

func TestClientService_ProvisionDefaults(t *testing.T) {
	store := newStubClientStore()
	svc := NewClientService(store, discardLogger)

	err := svc.Provision(context.Background(), &domain.Identity{ID: "uid-jane", DisplayName: "Jane Doe", Email: "jane@x.com"})
	if err != nil {
		t.Fatalf("provision: %v", err)
	}

	rec := store.records["uid-jane"]
	if rec == nil {
		t.Fatal("expected a record keyed by the identity id")
	}
	if rec.Name != "Jane Doe" || rec.Email != "jane@x.com" {
		t.Errorf("unexpected record header %+v", rec)
	}
	items := rec.Data.Progress.Items
	if len(items) != 5 {
		t.Fatalf("expected five preset categories, got %d", len(items))
	}
	for _, c := range domain.DefaultTimelineCategories {
		seq, ok := items[c]
		if !ok || len(seq) != 0 {
			t.Errorf("category %q: expected empty sequence, got %v (present %v)", c, seq, ok)
		}
	}
	typo := rec.Data.Guidelines.Typography
	if len(typo) != 2 {
		t.Fatalf("expected two typography entries, got %d", len(typo))
	}
	var heading, body int
	for _, e := range typo {
		if e.Family != "Inter" {
			t.Errorf("expected Inter, got %q", e.Family)
		}
		switch e.Type {
		case domain.TypographyHeading:
			heading++
		case domain.TypographyBody:
			body++
		}
	}
	if heading != 1 || body != 1 {
		t.Errorf("expected one Heading and one Body, got %d and %d", heading, body)
	}
}

func TestClientService_ProvisionIsIdempotent(t *testing.T) {
	store := newStubClientStore()
	svc := NewClientService(store, discardLogger)
	ctx := context.Background()
	identity := &domain.Identity{ID: "uid-fed", DisplayName: "Fed", Email: "fed@x.com"}

	_ = svc.Provision(ctx, identity)
	store.records["uid-fed"].Data.Progress.NextAction = "edited by admin"

	if err := svc.Provision(ctx, identity); err != nil {
		t.Fatalf("second provision: %v", err)
	}
	if len(store.records) != 1 {
		t.Errorf("expected exactly one record, got %d", len(store.records))
	}
	if store.records["uid-fed"].Data.Progress.NextAction != "edited by admin" {
		t.Error("existing record must not be overwritten")
	}
}

func TestClientService_ProvisionFallsBackToEmailName(t *testing.T) {
	store := newStubClientStore()
	svc := NewClientService(store, discardLogger)

	_ = svc.Provision(context.Background(), &domain.Identity{ID: "u", Email: "anon@x.com"})

	if store.records["u"].Name != "anon@x.com" {
		t.Errorf("expected email as name, got %q", store.records["u"].Name)
	}
}

func TestClientService_GetWrapsFetchError(t *testing.T) {
	store := newStubClientStore()
	store.err = errors.New("timeout")
	svc := NewClientService(store, discardLogger)

	_, err := svc.Get(context.Background(), "c1")

	var fe *domain.FetchError
	if !errors.As(err, &fe) || fe.ClientID != "c1" {
		t.Fatalf("expected FetchError for c1, got %v", err)
	}
	if _, err := svc.List(context.Background()); !errors.As(err, &fe) {
		t.Errorf("List: expected FetchError, got %v", err)
	}
}

func TestClientService_ListNewestFirst(t *testing.T) {
	store := newStubClientStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.records["old"] = &domain.ClientRecord{ID: "old", CreatedAt: base}
	store.records["new"] = &domain.ClientRecord{ID: "new", CreatedAt: base.Add(time.Hour)}
	svc := NewClientService(store, discardLogger)

	recs, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 || recs[0].ID != "new" {
		t.Errorf("expected newest first, got %v", []string{recs[0].ID, recs[1].ID})
	}
}

func TestClientService_ImportReplacesRecord(t *testing.T) {
	store := newStubClientStore()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.records["uid-jane"] = &domain.ClientRecord{ID: "uid-jane", Name: "Old", CreatedAt: created}
	svc := NewClientService(store, discardLogger)
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	rec := &domain.ClientRecord{ID: "uid-jane", Name: "Jane Doe", Email: "jane@x.com", CreatedAt: created}
	rec.Data.Progress.NextAction = "Sign off"
	rec.Data.Progress.Payments = []domain.Payment{{ID: "p1", Item: "Deposit", Amount: 500, Status: domain.PaymentPaid}}

	if err := svc.Import(context.Background(), rec); err != nil {
		t.Fatalf("import: %v", err)
	}

	got := store.records["uid-jane"]
	if got.Name != "Jane Doe" || got.Data.Progress.NextAction != "Sign off" || len(got.Data.Progress.Payments) != 1 {
		t.Errorf("record not replaced: %+v", got)
	}
	if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(now) {
		t.Errorf("unexpected timestamps created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
	if got.Data.Progress.Items == nil {
		t.Error("timeline map should be initialised")
	}
}

func TestClientService_ImportRejectsInvalidRecords(t *testing.T) {
	store := newStubClientStore()
	svc := NewClientService(store, discardLogger)

	bad := []*domain.ClientRecord{
		nil,
		{ID: "  "},
		{ID: "c1", Data: domain.ClientData{Progress: domain.Progress{Payments: []domain.Payment{{Amount: -1, Status: domain.PaymentPaid}}}}},
		{ID: "c1", Data: domain.ClientData{Progress: domain.Progress{Items: map[string][]domain.TimelineItem{"Launch": {{Status: "Someday"}}}}}},
		{ID: "c1", Data: domain.ClientData{Guidelines: domain.Guidelines{Logos: []domain.LogoUsageEntry{{Type: "Neon"}}}}},
	}
	for i, rec := range bad {
		if err := svc.Import(context.Background(), rec); !errors.Is(err, domain.ErrInvalidValue) {
			t.Errorf("case %d: expected ErrInvalidValue, got %v", i, err)
		}
	}
	if len(store.records) != 0 {
		t.Errorf("nothing should be written, got %d records", len(store.records))
	}
}
