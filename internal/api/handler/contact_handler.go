package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/brandpreneur/client-portal/internal/api/metrics"
	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/ports"
)

const (
	// IdempotencyHeader makes a retried contact submission a no-op.
	IdempotencyHeader = "Idempotency-Key"

	maxAttachmentBytes = 10 << 20
)

// ContactHistory lists a client's past requests.
type ContactHistory interface {
	History(ctx context.Context, clientID string) ([]*domain.ContactRequest, error)
}

type ContactHandler struct {
	history ContactHistory
}

func NewContactHandler(history ContactHistory) *ContactHandler {
	return &ContactHandler{history: history}
}

// Submit handles POST /v1/contact.
//
// @Summary      Send a contact request to the agency
// @Description  Only available to clients on the Contact page. Accepts JSON or a multipart form with an optional attachment.
// @Tags         contact
// @Accept       json,mpfd
// @Produce      json
// @Param        X-Portal-Session  header    string          true   "Session id"
// @Param        Idempotency-Key   header    string          false  "Makes retries safe"
// @Param        body              body      contactRequest  true   "Request"
// @Success      201               {object}  domain.ContactRequest
// @Failure      403               {object}  errorResponse
// @Failure      409               {object}  errorResponse
// @Failure      422               {object}  errorResponse
// @Router       /v1/contact [post]
func (h *ContactHandler) Submit(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req contactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := ports.ContactInput{
		Project:        req.Project,
		Subject:        req.Subject,
		Category:       domain.ContactCategory(req.Category),
		Details:        req.Details,
		IdempotencyKey: strings.TrimSpace(c.Request().Header.Get(IdempotencyHeader)),
	}
	if in.Attachment, err = readAttachment(c); err != nil {
		return err
	}

	cr, err := s.SubmitContact(c.Request().Context(), in)
	if err != nil {
		return err
	}
	metrics.ContactRequestsTotal.WithLabelValues(string(cr.Category)).Inc()
	return c.JSON(http.StatusCreated, cr)
}

// History handles GET /v1/contact.
//
// @Summary      Past contact requests of the signed-in client
// @Tags         contact
// @Produce      json
// @Param        X-Portal-Session  header    string  true  "Session id"
// @Success      200               {array}   domain.ContactRequest
// @Router       /v1/contact [get]
func (h *ContactHandler) History(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	st := s.Controller().State()
	if st.Identity == nil {
		return domain.ErrForbidden
	}
	reqs, err := h.history.History(c.Request().Context(), st.Identity.ID)
	if err != nil {
		return err
	}
	if reqs == nil {
		reqs = []*domain.ContactRequest{}
	}
	return c.JSON(http.StatusOK, reqs)
}

// readAttachment returns the optional "attachment" part of a multipart form.
func readAttachment(c echo.Context) (*ports.Attachment, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}
	fh, err := c.FormFile("attachment")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid attachment")
	}
	data, ct, err := readFormFile(fh)
	if err != nil {
		return nil, err
	}
	return &ports.Attachment{FileName: fh.Filename, ContentType: ct, Data: data}, nil
}

// readFormFile loads an uploaded part, enforcing maxAttachmentBytes. The
// content type falls back to sniffing when the part does not declare one.
func readFormFile(fh *multipart.FileHeader) ([]byte, string, error) {
	if fh.Size > maxAttachmentBytes {
		return nil, "", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxAttachmentBytes+1))
	if err != nil {
		return nil, "", echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	if len(data) > maxAttachmentBytes {
		return nil, "", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}
	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
