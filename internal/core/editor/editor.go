package editor

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/ports"
)

// Mode is the editor screen state.
type Mode string

const (
	ModeViewing Mode = "viewing"
	ModeEditing Mode = "editing"
	ModeSaving  Mode = "saving"
)

// Tab selects which section the editor screen shows.
type Tab string

const (
	TabProgress   Tab = "Progress"
	TabGuidelines Tab = "Guidelines"
	TabAssets     Tab = "Assets"
)

func (t Tab) Valid() bool { return t == TabProgress || t == TabGuidelines || t == TabAssets }

// State describes the editor for the presentation layer.
type State struct {
	ClientID    string `json:"client_id"`
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	Mode        Mode   `json:"mode"`
	Tab         Tab    `json:"tab"`
	Busy        bool   `json:"busy"`
	LastError   string `json:"last_error,omitempty"`
}

// Editor owns the working copy of one client's data for the lifetime of an
// admin editing session. Operations are serialized; while a commit or an
// upload is in flight every other call returns domain.ErrBusy.
type Editor struct {
	mu sync.Mutex

	store ports.ClientStore
	blobs ports.BlobStore
	log   zerolog.Logger
	newID func() string

	clientID    string
	clientName  string
	clientEmail string

	// Sections of working are replaced, never mutated in place, so working
	// may share structure with baseline and with data handed to the store.
	baseline domain.ClientData
	working  domain.ClientData

	mode    Mode
	tab     Tab
	busy    bool
	closed  bool
	lastErr error
}

type Option func(*Editor)

// WithIDGenerator overrides the generator used for new list entries and
// uploaded object names.
func WithIDGenerator(fn func() string) Option {
	return func(e *Editor) { e.newID = fn }
}

// Open fetches clientID from the store and starts an editing session on a
// private copy of its data.
func Open(ctx context.Context, clientID string, store ports.ClientStore, blobs ports.BlobStore, log zerolog.Logger, opts ...Option) (*Editor, error) {
	rec, err := store.Get(ctx, clientID)
	if err != nil {
		return nil, &domain.FetchError{ClientID: clientID, Err: err}
	}

	e := &Editor{
		store:       store,
		blobs:       blobs,
		log:         log.With().Str("client_id", clientID).Logger(),
		newID:       uuid.NewString,
		clientID:    rec.ID,
		clientName:  rec.Name,
		clientEmail: rec.Email,
		baseline:    rec.Data.Clone(),
		mode:        ModeViewing,
		tab:         TabProgress,
	}
	e.working = e.baseline
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Editor) ClientID() string { return e.clientID }

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := State{
		ClientID:    e.clientID,
		ClientName:  e.clientName,
		ClientEmail: e.clientEmail,
		Mode:        e.mode,
		Tab:         e.tab,
		Busy:        e.busy,
	}
	if e.lastErr != nil {
		s.LastError = e.lastErr.Error()
	}
	return s
}

// Snapshot returns a deep copy of the working copy.
func (e *Editor) Snapshot() domain.ClientData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.working.Clone()
}

// Get reads the leaf at p from the working copy.
func (e *Editor) Get(p Path) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ref, err := locate(&e.working, p)
	if err != nil {
		return nil, err
	}
	return ref.value(), nil
}

func (e *Editor) SelectTab(t Tab) error {
	if !t.Valid() {
		return fmt.Errorf("%w: tab %q", domain.ErrInvalidNavigation, t)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	e.tab = t
	return nil
}

// SetField replaces the single leaf at p with v.
func (e *Editor) SetField(p Path, v any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}

	if err := setLeaf(&e.working, p, v); err != nil {
		return err
	}
	e.mode = ModeEditing
	return nil
}

// AppendListItem appends item to the end of l and returns the entry's id.
// Typography entries carry no id and yield "".
func (e *Editor) AppendListItem(l List, item any) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return "", err
	}

	id, err := appendItem(&e.working, l, item, e.newID)
	if err != nil {
		return "", err
	}
	e.mode = ModeEditing
	return id, nil
}

// RemoveListItem removes entry index from l.
func (e *Editor) RemoveListItem(l List, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}

	if err := removeItem(&e.working, l, index); err != nil {
		return err
	}
	e.mode = ModeEditing
	return nil
}

// Upload stores data in the blob store and sets the file-backed leaf at p to
// the returned URL. A failed upload leaves the working copy untouched.
func (e *Editor) Upload(ctx context.Context, p Path, fileName, contentType string, data []byte) (string, error) {
	e.mu.Lock()
	if err := e.ready(); err != nil {
		e.mu.Unlock()
		return "", err
	}
	if !p.FileBacked() {
		e.mu.Unlock()
		return "", unresolved(p, "not a file field")
	}
	if _, err := locate(&e.working, p); err != nil {
		e.mu.Unlock()
		return "", err
	}
	objectPath := BlobPath(e.clientID, e.uploadCategory(p), e.newID(), fileName)
	e.busy = true
	e.mu.Unlock()

	url, err := e.blobs.Upload(ctx, objectPath, contentType, data)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false

	if err != nil {
		uerr := &domain.UploadError{Path: p.String(), Err: err}
		e.lastErr = uerr
		e.log.Warn().Err(err).Str("path", p.String()).Str("object", objectPath).Msg("upload failed")
		return "", uerr
	}
	if e.closed {
		return "", domain.ErrEditorClosed
	}
	if err := setLeaf(&e.working, p, url); err != nil {
		return "", err
	}
	e.mode = ModeEditing
	e.lastErr = nil
	return url, nil
}

// Commit replaces the persisted data of the client with the working copy.
// On failure the working copy is kept so the call can be retried.
func (e *Editor) Commit(ctx context.Context) error {
	e.mu.Lock()
	if err := e.ready(); err != nil {
		e.mu.Unlock()
		return err
	}
	data := e.working
	e.mode = ModeSaving
	e.busy = true
	e.mu.Unlock()

	err := e.store.ReplaceData(ctx, e.clientID, data)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false

	if err != nil {
		cerr := &domain.CommitError{ClientID: e.clientID, Err: err}
		e.lastErr = cerr
		e.mode = ModeEditing
		e.log.Warn().Err(err).Msg("commit failed")
		return cerr
	}

	e.baseline = data
	e.lastErr = nil
	e.mode = ModeViewing
	e.log.Info().Msg("client data committed")
	return nil
}

// Close discards the working copy. Later calls return domain.ErrEditorClosed.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.working = domain.ClientData{}
	e.baseline = domain.ClientData{}
}

func (e *Editor) ready() error {
	if e.closed {
		return domain.ErrEditorClosed
	}
	if e.busy {
		return domain.ErrBusy
	}
	return nil
}

func (e *Editor) uploadCategory(p Path) string {
	if p.kind == leafAssetFileURL && inRange(p.index, len(e.working.Assets.Categories)) {
		return e.working.Assets.Categories[p.index].Name
	}
	return "logos"
}

// BlobPath builds the object path for an uploaded file.
func BlobPath(clientID, category, id, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" {
		name = "file"
	}
	return fmt.Sprintf("clients/%s/%s/%s-%s", clientID, slug(category), id, name)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "uncategorized"
	}
	return out
}
