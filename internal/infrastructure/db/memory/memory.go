// Package memory provides in-process implementations of the storage ports,
// used for local development without Mongo or Redis and in tests.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

// IdentityRepository implements ports.IdentityRepository.
type IdentityRepository struct {
	mu     sync.Mutex
	byID   map[string]*domain.Identity
	nextID int
}

func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{byID: make(map[string]*domain.Identity)}
}

func (r *IdentityRepository) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == identity.Email {
			return nil, domain.ErrIdentityExists
		}
	}
	r.nextID++
	c := identity.Clone()
	c.ID = "uid-" + strconv.Itoa(r.nextID)
	r.byID[c.ID] = c
	return c.Clone(), nil
}

func (r *IdentityRepository) FindByEmail(_ context.Context, email string) (*domain.Identity, error) {
	return r.find(func(u *domain.Identity) bool { return u.Email == email })
}

func (r *IdentityRepository) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	return r.find(func(u *domain.Identity) bool { return u.ID == id })
}

func (r *IdentityRepository) FindBySubject(_ context.Context, provider, subject string) (*domain.Identity, error) {
	return r.find(func(u *domain.Identity) bool { return u.Provider == provider && u.Subject == subject })
}

func (r *IdentityRepository) find(match func(*domain.Identity) bool) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if match(u) {
			return u.Clone(), nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

// ClientStore implements ports.ClientStore.
type ClientStore struct {
	mu      sync.Mutex
	records map[string]*domain.ClientRecord
}

func NewClientStore(recs ...*domain.ClientRecord) *ClientStore {
	s := &ClientStore{records: make(map[string]*domain.ClientRecord)}
	for _, r := range recs {
		s.records[r.ID] = r.Clone()
	}
	return s
}

func (s *ClientStore) Get(_ context.Context, id string) (*domain.ClientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	return r.Clone(), nil
}

func (s *ClientStore) Create(_ context.Context, rec *domain.ClientRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; ok {
		return domain.ErrClientExists
	}
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *ClientStore) Set(_ context.Context, rec *domain.ClientRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *ClientStore) ReplaceData(_ context.Context, id string, data domain.ClientData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return domain.ErrClientNotFound
	}
	r.Data = data.Clone()
	r.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *ClientStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return domain.ErrClientNotFound
	}
	delete(s.records, id)
	return nil
}

// ListAll returns every record, newest first.
func (s *ClientStore) ListAll(context.Context) ([]*domain.ClientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.ClientRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ContactRepository implements ports.ContactRepository.
type ContactRepository struct {
	mu       sync.Mutex
	requests []*domain.ContactRequest
}

func NewContactRepository() *ContactRepository { return &ContactRepository{} }

func (r *ContactRepository) Insert(_ context.Context, req *domain.ContactRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *req
	r.requests = append(r.requests, &c)
	return nil
}

func (r *ContactRepository) MarkNotified(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.ID == id {
			t := at
			req.NotifiedAt = &t
		}
	}
	return nil
}

// ListByClient returns the client's requests, newest first.
func (r *ContactRepository) ListByClient(_ context.Context, clientID string) ([]*domain.ContactRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.ContactRequest{}
	for i := len(r.requests) - 1; i >= 0; i-- {
		if req := r.requests[i]; req.ClientID == clientID {
			c := *req
			out = append(out, &c)
		}
	}
	return out, nil
}

type expiring struct {
	value   string
	expires time.Time
}

// SessionStore implements ports.TokenStore, ports.PreferenceStore and
// ports.SubmissionGuard with expiring keys.
type SessionStore struct {
	mu   sync.Mutex
	now  func() time.Time
	keys map[string]expiring
}

func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now, keys: make(map[string]expiring)}
}

func (s *SessionStore) put(key, value string, ttl time.Duration) {
	e := expiring{value: value}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.keys[key] = e
}

func (s *SessionStore) get(key string) (string, bool) {
	e, ok := s.keys[key]
	if !ok {
		return "", false
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.keys, key)
		return "", false
	}
	return e.value, true
}

func (s *SessionStore) SaveToken(_ context.Context, sessionID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put("token:"+sessionID, token, ttl)
	return nil
}

func (s *SessionStore) LoadToken(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _ := s.get("token:" + sessionID)
	return v, nil
}

func (s *SessionStore) DeleteToken(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, "token:"+sessionID)
	return nil
}

func (s *SessionStore) SaveState(_ context.Context, state, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put("state:"+state, sessionID, ttl)
	return nil
}

func (s *SessionStore) ConsumeState(_ context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.get("state:" + state)
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	delete(s.keys, "state:"+state)
	return v, nil
}

func (s *SessionStore) LoadTheme(_ context.Context, sessionID string) (domain.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, _ := s.get("theme:" + sessionID)
	return domain.Theme(v), nil
}

func (s *SessionStore) SaveTheme(_ context.Context, sessionID string, theme domain.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put("theme:"+sessionID, string(theme), 0)
	return nil
}

func (s *SessionStore) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.get("dedup:" + key); ok {
		return false, nil
	}
	s.put("dedup:"+key, "1", ttl)
	return true, nil
}

// BlobStore implements ports.BlobStore, keeping file contents in memory.
type BlobStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte
}

func NewBlobStore(baseURL string) *BlobStore {
	return &BlobStore{baseURL: baseURL, objects: make(map[string][]byte)}
}

func (b *BlobStore) Upload(_ context.Context, path, _ string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[path] = append([]byte(nil), data...)
	return b.baseURL + "/" + path, nil
}

// Object returns a stored file.
func (b *BlobStore) Object(path string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[path]
	return data, ok
}
