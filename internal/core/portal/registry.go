package portal

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/brandpreneur/client-portal/internal/core/access"
	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/editor"
	"github.com/brandpreneur/client-portal/internal/core/ports"
	"github.com/brandpreneur/client-portal/internal/core/session"
)

const (
	defaultIdleTTL = 30 * time.Minute
	reapInterval   = time.Minute
)

// Deps are the collaborators shared by every session.
type Deps struct {
	// NewAuth builds the auth client bound to one session id.
	NewAuth       func(sessionID string) ports.AuthProvider
	Router        access.Router
	Provisioner   session.Provisioner
	Clients       ClientDirectory
	Store         ports.ClientStore
	Blobs         ports.BlobStore
	Prefs         ports.PreferenceStore
	Contacts      ContactSubmitter
	EditorOptions []editor.Option
}

// Registry owns all live sessions and evicts the ones left idle.
type Registry struct {
	deps    Deps
	idleTTL time.Duration
	log     zerolog.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	entropy  *ulid.MonotonicEntropy
}

func NewRegistry(deps Deps, idleTTL time.Duration, log zerolog.Logger) *Registry {
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &Registry{
		deps:     deps,
		idleTTL:  idleTTL,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*Session),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// Open returns the live session id, or starts one. A well-formed id that is
// not live is restored under the same id so a persisted sign-in survives a
// restart; any other id is replaced by a fresh one. hint is the theme the
// client prefers when nothing has been persisted yet.
func (r *Registry) Open(ctx context.Context, id string, hint domain.Theme) (*Session, bool) {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		s.touch(r.now())
		return s, false
	}
	if _, err := ulid.ParseStrict(id); err != nil {
		id = ulid.MustNew(ulid.Timestamp(r.now()), r.entropy).String()
	}
	r.mu.Unlock()

	s := r.newSession(ctx, id, hint)

	r.mu.Lock()
	if existing, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		s.close()
		existing.touch(r.now())
		return existing, false
	}
	r.sessions[id] = s
	r.mu.Unlock()

	s.controller.Start()
	r.log.Debug().Str("session_id", id).Msg("session opened")
	return s, true
}

func (r *Registry) newSession(ctx context.Context, id string, hint domain.Theme) *Session {
	log := r.log.With().Str("session_id", id).Logger()
	auth := r.deps.NewAuth(id)

	s := &Session{
		id:       id,
		auth:     auth,
		deps:     &r.deps,
		log:      log,
		theme:    r.initialTheme(ctx, id, hint),
		lastSeen: r.now(),
	}
	s.controller = session.NewController(auth, r.deps.Router, r.deps.Provisioner, log)
	s.controller.OnChange(s.onIdentityChange)
	return s
}

func (r *Registry) initialTheme(ctx context.Context, id string, hint domain.Theme) domain.Theme {
	if r.deps.Prefs != nil {
		t, err := r.deps.Prefs.LoadTheme(ctx, id)
		if err != nil {
			r.log.Warn().Err(err).Str("session_id", id).Msg("theme preference unavailable")
		} else if t.Valid() {
			return t
		}
	}
	if hint.Valid() {
		return hint
	}
	return domain.ThemeLight
}

// Get returns a live session and marks it used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Dispose tears the session down and forgets it.
func (r *Registry) Dispose(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.close()
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reap disposes every session idle for longer than the TTL and returns how
// many were removed.
func (r *Registry) Reap() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var stale []*Session
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.close()
	}
	if len(stale) > 0 {
		r.log.Info().Int("count", len(stale)).Msg("idle sessions evicted")
	}
	return len(stale)
}

// Run reaps idle sessions until ctx is cancelled, then disposes the rest.
func (r *Registry) Run(ctx context.Context) {
	t := time.NewTicker(reapInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-t.C:
			r.Reap()
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range all {
		s.close()
	}
}
