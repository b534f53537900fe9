package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brandpreneur/client-portal/internal/api/metrics"
	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/editor"
)

// EditorHandler exposes the admin's client editor. Every operation answers
// with the editor's state and working copy.
type EditorHandler struct{}

func NewEditorHandler() *EditorHandler {
	return &EditorHandler{}
}

// Open handles POST /v1/admin/editor.
//
// @Summary      Open a client in the editor
// @Description  Any editor already open is discarded with its unsaved edits.
// @Tags         editor
// @Accept       json
// @Produce      json
// @Param        X-Portal-Session  header    string             true  "Session id"
// @Param        body              body      openEditorRequest  true  "Client"
// @Success      201               {object}  portal.EditorView
// @Failure      404               {object}  errorResponse
// @Router       /v1/admin/editor [post]
func (h *EditorHandler) Open(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req openEditorRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ed, err := s.OpenEditor(c.Request().Context(), req.ClientID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, editorView(ed))
}

// Get handles GET /v1/admin/editor.
//
// @Summary      Editor state and working copy
// @Tags         editor
// @Produce      json
// @Param        X-Portal-Session  header    string  true  "Session id"
// @Success      200               {object}  portal.EditorView
// @Failure      409               {object}  errorResponse
// @Router       /v1/admin/editor [get]
func (h *EditorHandler) Get(c echo.Context) error {
	return h.with(c, func(*editor.Editor) error { return nil })
}

// Close handles DELETE /v1/admin/editor ("back to clients").
//
// @Summary      Close the editor, discarding unsaved edits
// @Tags         editor
// @Param        X-Portal-Session  header  string  true  "Session id"
// @Success      204
// @Router       /v1/admin/editor [delete]
func (h *EditorHandler) Close(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := s.CloseEditor(); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SelectTab handles PUT /v1/admin/editor/tab.
//
// @Summary      Switch editor tab
// @Tags         editor
// @Accept       json
// @Produce      json
// @Param        X-Portal-Session  header    string      true  "Session id"
// @Param        body              body      tabRequest  true  "Tab"
// @Success      200               {object}  portal.EditorView
// @Router       /v1/admin/editor/tab [put]
func (h *EditorHandler) SelectTab(c echo.Context) error {
	var req tabRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	return h.with(c, func(ed *editor.Editor) error {
		return ed.SelectTab(editor.Tab(req.Tab))
	})
}

// SetField handles PATCH /v1/admin/editor/fields.
//
// @Summary      Set one field of the working copy
// @Description  keys address the field inside section, e.g. ["payments","0","amount"].
// @Tags         editor
// @Accept       json
// @Produce      json
// @Param        X-Portal-Session  header    string        true  "Session id"
// @Param        body              body      fieldRequest  true  "Field"
// @Success      200               {object}  portal.EditorView
// @Failure      409               {object}  errorResponse
// @Failure      422               {object}  errorResponse
// @Router       /v1/admin/editor/fields [patch]
func (h *EditorHandler) SetField(c echo.Context) error {
	var req fieldRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := editor.ParsePath(req.Section, req.Keys)
	if err != nil {
		return err
	}
	return h.with(c, func(ed *editor.Editor) error {
		return ed.SetField(p, req.Value)
	})
}

// AppendItem handles POST /v1/admin/editor/items.
//
// @Summary      Append an entry to a list
// @Tags         editor
// @Accept       json
// @Produce      json
// @Param        X-Portal-Session  header    string           true  "Session id"
// @Param        body              body      listItemRequest  true  "Entry"
// @Success      201               {object}  appendItemResponse
// @Failure      422               {object}  errorResponse
// @Router       /v1/admin/editor/items [post]
func (h *EditorHandler) AppendItem(c echo.Context) error {
	var req listItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	l, err := editor.ParseList(req.Section, req.Keys)
	if err != nil {
		return err
	}
	item, err := editor.DecodeItem(l, req.Item)
	if err != nil {
		return err
	}

	ed, err := h.editor(c)
	if err != nil {
		return err
	}
	id, err := ed.AppendListItem(l, item)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, appendItemResponse{ID: id, Editor: editorView(ed)})
}

// RemoveItem handles DELETE /v1/admin/editor/items.
//
// @Summary      Remove an entry from a list
// @Tags         editor
// @Accept       json
// @Produce      json
// @Param        X-Portal-Session  header    string             true  "Session id"
// @Param        body              body      removeItemRequest  true  "Entry"
// @Success      200               {object}  portal.EditorView
// @Failure      422               {object}  errorResponse
// @Router       /v1/admin/editor/items [delete]
func (h *EditorHandler) RemoveItem(c echo.Context) error {
	var req removeItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	l, err := editor.ParseList(req.Section, req.Keys)
	if err != nil {
		return err
	}
	return h.with(c, func(ed *editor.Editor) error {
		return ed.RemoveListItem(l, *req.Index)
	})
}

// Upload handles POST /v1/admin/editor/uploads.
//
// @Summary      Upload a file into a file-backed field
// @Description  path is the dot-separated key chain, e.g. "logos.0.image_url".
// @Tags         editor
// @Accept       mpfd
// @Produce      json
// @Param        X-Portal-Session  header    string  true  "Session id"
// @Param        section           formData  string  true  "Section"
// @Param        path              formData  string  true  "Field path"
// @Param        file              formData  file    true  "File"
// @Success      200               {object}  uploadResponse
// @Failure      409               {object}  errorResponse
// @Failure      502               {object}  errorResponse
// @Router       /v1/admin/editor/uploads [post]
func (h *EditorHandler) Upload(c echo.Context) error {
	section, rawPath := c.FormValue("section"), c.FormValue("path")
	if section == "" || rawPath == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "section and path are required")
	}
	p, err := editor.ParsePath(section, strings.Split(rawPath, "."))
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "file is required")
	}
	data, ct, err := readFormFile(fh)
	if err != nil {
		return err
	}

	ed, err := h.editor(c)
	if err != nil {
		return err
	}
	url, err := ed.Upload(c.Request().Context(), p, fh.Filename, ct, data)
	if !errors.Is(err, domain.ErrBusy) {
		metrics.EditorUploadsTotal.WithLabelValues(metrics.Result(err)).Inc()
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, uploadResponse{URL: url, Editor: editorView(ed)})
}

// Commit handles POST /v1/admin/editor/commit.
//
// @Summary      Save the working copy
// @Description  Replaces the client's document in one write. On failure the working copy is kept for a retry.
// @Tags         editor
// @Produce      json
// @Param        X-Portal-Session  header    string  true  "Session id"
// @Success      200               {object}  portal.EditorView
// @Failure      409               {object}  errorResponse
// @Failure      502               {object}  errorResponse
// @Router       /v1/admin/editor/commit [post]
func (h *EditorHandler) Commit(c echo.Context) error {
	return h.with(c, func(ed *editor.Editor) error {
		start := time.Now()
		err := ed.Commit(c.Request().Context())
		switch {
		case errors.Is(err, domain.ErrBusy):
			metrics.EditorCommitsTotal.WithLabelValues("busy").Inc()
		default:
			metrics.EditorCommitsTotal.WithLabelValues(metrics.Result(err)).Inc()
			metrics.EditorCommitDuration.Observe(time.Since(start).Seconds())
		}
		return err
	})
}

func (h *EditorHandler) editor(c echo.Context) (*editor.Editor, error) {
	s, err := ctxSession(c)
	if err != nil {
		return nil, err
	}
	return s.Editor()
}

// with runs op on the open editor and answers with its view.
func (h *EditorHandler) with(c echo.Context, op func(*editor.Editor) error) error {
	ed, err := h.editor(c)
	if err != nil {
		return err
	}
	if err := op(ed); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, editorView(ed))
}
