package handler

import (
	"encoding/json"

	"github.com/brandpreneur/client-portal/internal/core/editor"
	"github.com/brandpreneur/client-portal/internal/core/portal"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Session ---

// navigateRequest sets exactly one of its fields.
type navigateRequest struct {
	AuthScreen  string `json:"auth_screen,omitempty"`
	Page        string `json:"page,omitempty"`
	AdminScreen string `json:"admin_screen,omitempty"`
}

// --- Auth ---

type signInRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type signUpRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type federatedResponse struct {
	URL string `json:"url"`
}

// --- Contact ---

// contactRequest is accepted as JSON or as a multipart form carrying an
// optional "attachment" file.
type contactRequest struct {
	Project  string `json:"project"  form:"project"`
	Subject  string `json:"subject"  form:"subject"  validate:"required"`
	Category string `json:"category" form:"category" validate:"required"`
	Details  string `json:"details"  form:"details"  validate:"required"`
}

// --- Editor ---

type openEditorRequest struct {
	ClientID string `json:"client_id" validate:"required"`
}

type tabRequest struct {
	Tab string `json:"tab" validate:"required,oneof=Progress Guidelines Assets"`
}

type fieldRequest struct {
	Section string   `json:"section" validate:"required"`
	Keys    []string `json:"keys"    validate:"required,min=1"`
	Value   any      `json:"value"`
}

type listItemRequest struct {
	Section string          `json:"section" validate:"required"`
	Keys    []string        `json:"keys"    validate:"required,min=1"`
	Item    json.RawMessage `json:"item"    validate:"required"`
}

type removeItemRequest struct {
	Section string   `json:"section" validate:"required"`
	Keys    []string `json:"keys"    validate:"required,min=1"`
	Index   *int     `json:"index"   validate:"required"`
}

type appendItemResponse struct {
	ID     string            `json:"id"`
	Editor portal.EditorView `json:"editor"`
}

type uploadResponse struct {
	URL    string            `json:"url"`
	Editor portal.EditorView `json:"editor"`
}

func editorView(ed *editor.Editor) portal.EditorView {
	return portal.EditorView{State: ed.State(), Data: ed.Snapshot()}
}
