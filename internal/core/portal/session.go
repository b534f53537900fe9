// Package portal holds the server-side state of each presentation session:
// who is signed in, where they are, their theme and the admin's open editor.
package portal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brandpreneur/client-portal/internal/core/access"
	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/editor"
	"github.com/brandpreneur/client-portal/internal/core/ports"
	"github.com/brandpreneur/client-portal/internal/core/session"
)

// ClientDirectory reads and manages client records on behalf of a session.
type ClientDirectory interface {
	// Get fails with *domain.FetchError when the record cannot be retrieved.
	Get(ctx context.Context, id string) (*domain.ClientRecord, error)
	List(ctx context.Context) ([]*domain.ClientRecord, error)
	Delete(ctx context.Context, id string) error
}

// ContactSubmitter records a client's contact request.
type ContactSubmitter interface {
	Submit(ctx context.Context, client *domain.ClientRecord, in ports.ContactInput) (*domain.ContactRequest, error)
}

// Session is one presentation session. The zero value is not usable; sessions
// are created by a Registry.
type Session struct {
	id         string
	controller *session.Controller
	auth       ports.AuthProvider
	deps       *Deps
	log        zerolog.Logger

	mu       sync.Mutex
	theme    domain.Theme
	editor   *editor.Editor
	lastSeen time.Time
	closed   bool
}

func (s *Session) ID() string { return s.id }

// Auth exposes the session's auth client, for the federated callback.
func (s *Session) Auth() ports.AuthProvider { return s.auth }

func (s *Session) Controller() *session.Controller { return s.controller }

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) Theme() domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// ToggleTheme flips the theme and persists the new preference. A failure to
// persist is logged; the toggle still applies to this session.
func (s *Session) ToggleTheme(ctx context.Context) domain.Theme {
	s.mu.Lock()
	s.theme = s.theme.Toggle()
	theme := s.theme
	s.mu.Unlock()

	if s.deps.Prefs != nil {
		if err := s.deps.Prefs.SaveTheme(ctx, s.id, theme); err != nil {
			s.log.Warn().Err(err).Msg("theme preference not persisted")
		}
	}
	return theme
}

// onIdentityChange drops the admin's editor whenever the identity changes.
func (s *Session) onIdentityChange(prev, next session.State) {
	if prev.Identity != nil && next.Identity != nil && prev.Identity.ID == next.Identity.ID && prev.Role == next.Role {
		return
	}
	s.mu.Lock()
	ed := s.editor
	s.editor = nil
	s.mu.Unlock()
	if ed != nil {
		ed.Close()
	}
}

// View builds the model for the current state. Nothing is fetched while the
// session is still loading.
func (s *Session) View(ctx context.Context) View {
	st := s.controller.State()
	v := View{
		SessionID:  s.id,
		Theme:      s.Theme(),
		Loading:    st.Loading,
		Role:       st.Role,
		Identity:   st.Identity,
		Navigation: st.Nav,
	}
	if st.Loading {
		return v
	}

	switch st.Role {
	case access.RoleClient:
		v.Client = s.clientView(ctx, st)
	case access.RoleAdmin:
		v.Admin = s.adminView(ctx, st)
	}
	return v
}

func (s *Session) clientView(ctx context.Context, st session.State) *ClientView {
	cv := &ClientView{Page: st.Nav.Page}
	rec, err := s.deps.Clients.Get(ctx, st.Identity.ID)
	if err != nil {
		s.log.Warn().Err(err).Msg("client document unavailable")
		cv.Error = err.Error()
		return cv
	}

	cv.Name, cv.Email = rec.Name, rec.Email
	switch st.Nav.Page {
	case session.PageProgress:
		cv.Progress = progressView(rec.Data.Progress)
	case session.PageGuidelines:
		g := rec.Data.Guidelines
		cv.Guidelines = &g
	case session.PageAssets:
		a := rec.Data.Assets
		cv.Assets = &a
	}
	return cv
}

func (s *Session) adminView(ctx context.Context, st session.State) *AdminView {
	av := &AdminView{Screen: st.Nav.AdminScreen}

	if st.Nav.AdminScreen == session.AdminEditor {
		s.mu.Lock()
		ed := s.editor
		s.mu.Unlock()
		if ed != nil {
			av.Editor = &EditorView{State: ed.State(), Data: ed.Snapshot()}
			return av
		}
		av.Screen = session.AdminDashboard
	}

	recs, err := s.deps.Clients.List(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("client list unavailable")
		av.Error = err.Error()
		return av
	}
	av.Clients = summarize(recs)
	return av
}

func (s *Session) requireRole(r access.Role) (session.State, error) {
	st := s.controller.State()
	if st.Loading || st.Role != r {
		return st, domain.ErrForbidden
	}
	return st, nil
}

// ListClients backs the admin dashboard and user management screens.
func (s *Session) ListClients(ctx context.Context) ([]ClientSummary, error) {
	if _, err := s.requireRole(access.RoleAdmin); err != nil {
		return nil, err
	}
	recs, err := s.deps.Clients.List(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(recs), nil
}

// OpenEditor loads a client into a new editor, discarding any editor that
// was already open, and switches to the editor screen.
func (s *Session) OpenEditor(ctx context.Context, clientID string) (*editor.Editor, error) {
	if _, err := s.requireRole(access.RoleAdmin); err != nil {
		return nil, err
	}

	ed, err := editor.Open(ctx, clientID, s.deps.Store, s.deps.Blobs, s.log, s.deps.EditorOptions...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	prev := s.editor
	s.editor = ed
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	if err := s.controller.ShowAdminScreen(session.AdminEditor); err != nil {
		return nil, err
	}
	s.log.Info().Str("client_id", clientID).Msg("editor opened")
	return ed, nil
}

// Editor returns the open editor.
func (s *Session) Editor() (*editor.Editor, error) {
	if _, err := s.requireRole(access.RoleAdmin); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editor == nil {
		return nil, domain.ErrEditorClosed
	}
	return s.editor, nil
}

// CloseEditor is "back to clients": unsaved edits are discarded.
func (s *Session) CloseEditor() error {
	if _, err := s.requireRole(access.RoleAdmin); err != nil {
		return err
	}
	return s.ShowAdminScreen(session.AdminDashboard)
}

// ShowAdminScreen switches the admin shell. Leaving the editor screen
// discards the open editor and its unsaved edits; the editor screen itself is
// only reachable while an editor is open.
func (s *Session) ShowAdminScreen(screen session.AdminScreen) error {
	if screen == session.AdminEditor {
		s.mu.Lock()
		open := s.editor != nil
		s.mu.Unlock()
		if !open {
			return fmt.Errorf("%w: no client is open in the editor", domain.ErrInvalidNavigation)
		}
		return s.controller.ShowAdminScreen(screen)
	}

	if err := s.controller.ShowAdminScreen(screen); err != nil {
		return err
	}
	s.discardEditor()
	return nil
}

func (s *Session) discardEditor() {
	s.mu.Lock()
	ed := s.editor
	s.editor = nil
	s.mu.Unlock()
	if ed != nil {
		ed.Close()
		s.log.Debug().Str("client_id", ed.ClientID()).Msg("editor discarded")
	}
}

// DeleteClient removes a client record. The identity is left in the auth
// service.
func (s *Session) DeleteClient(ctx context.Context, clientID string) error {
	if _, err := s.requireRole(access.RoleAdmin); err != nil {
		return err
	}
	if err := s.deps.Clients.Delete(ctx, clientID); err != nil {
		return err
	}

	s.mu.Lock()
	ed := s.editor
	if ed != nil && ed.ClientID() == clientID {
		s.editor = nil
	} else {
		ed = nil
	}
	s.mu.Unlock()
	if ed != nil {
		ed.Close()
		_ = s.controller.ShowAdminScreen(session.AdminUsers)
	}
	s.log.Info().Str("client_id", clientID).Msg("client deleted")
	return nil
}

// SubmitContact sends a contact request. Only a client on the Contact page
// may submit.
func (s *Session) SubmitContact(ctx context.Context, in ports.ContactInput) (*domain.ContactRequest, error) {
	st, err := s.requireRole(access.RoleClient)
	if err != nil {
		return nil, err
	}
	if st.Nav.Page != session.PageContact {
		return nil, domain.ErrInvalidNavigation
	}
	if s.deps.Contacts == nil {
		return nil, errors.New("contact requests are not configured")
	}

	rec, err := s.deps.Clients.Get(ctx, st.Identity.ID)
	if err != nil {
		return nil, err
	}
	return s.deps.Contacts.Submit(ctx, rec, in)
}

// close tears the session down: the editor is discarded and the identity
// subscription ended.
func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ed := s.editor
	s.editor = nil
	s.mu.Unlock()

	if ed != nil {
		ed.Close()
	}
	s.controller.Close()
	if c, ok := s.auth.(interface{ Close() }); ok {
		c.Close()
	}
}
