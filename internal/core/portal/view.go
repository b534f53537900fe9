package portal

import (
	"time"

	"github.com/brandpreneur/client-portal/internal/core/access"
	"github.com/brandpreneur/client-portal/internal/core/domain"
	"github.com/brandpreneur/client-portal/internal/core/editor"
	"github.com/brandpreneur/client-portal/internal/core/session"
)

// View is the immutable model handed to the presentation layer. Exactly one
// of Client and Admin is set once the session has settled on that role.
type View struct {
	SessionID  string             `json:"session_id"`
	Theme      domain.Theme       `json:"theme"`
	Loading    bool               `json:"loading"`
	Role       access.Role        `json:"role"`
	Identity   *domain.Identity   `json:"identity,omitempty"`
	Navigation session.Navigation `json:"navigation"`
	Client     *ClientView        `json:"client,omitempty"`
	Admin      *AdminView         `json:"admin,omitempty"`
}

// ClientView carries the active page's slice of the client's document. When
// the document cannot be fetched Error is set and no data is included.
type ClientView struct {
	Name       string             `json:"name,omitempty"`
	Email      string             `json:"email,omitempty"`
	Page       session.Page       `json:"page"`
	Progress   *ProgressView      `json:"progress,omitempty"`
	Guidelines *domain.Guidelines `json:"guidelines,omitempty"`
	Assets     *domain.Assets     `json:"assets,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// ProgressView lists timeline categories in display order.
type ProgressView struct {
	NextAction string             `json:"next_action"`
	Categories []TimelineCategory `json:"categories"`
	Payments   []domain.Payment   `json:"payments"`
}

type TimelineCategory struct {
	Name  string                `json:"name"`
	Items []domain.TimelineItem `json:"items"`
}

type AdminView struct {
	Screen  session.AdminScreen `json:"screen"`
	Clients []ClientSummary     `json:"clients,omitempty"`
	Editor  *EditorView         `json:"editor,omitempty"`
	Error   string              `json:"error,omitempty"`
}

type ClientSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type EditorView struct {
	State editor.State      `json:"state"`
	Data  domain.ClientData `json:"data"`
}

func progressView(p domain.Progress) *ProgressView {
	cats := p.Categories()
	v := &ProgressView{
		NextAction: p.NextAction,
		Categories: make([]TimelineCategory, 0, len(cats)),
		Payments:   p.Payments,
	}
	for _, c := range cats {
		v.Categories = append(v.Categories, TimelineCategory{Name: c, Items: p.Items[c]})
	}
	return v
}

func summarize(recs []*domain.ClientRecord) []ClientSummary {
	out := make([]ClientSummary, 0, len(recs))
	for _, r := range recs {
		out = append(out, ClientSummary{ID: r.ID, Name: r.Name, Email: r.Email, CreatedAt: r.CreatedAt})
	}
	return out
}
