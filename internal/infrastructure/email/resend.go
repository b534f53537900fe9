// Package email sends agency notifications for contact requests via Resend.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

// mdRenderer escapes raw HTML in client-written details.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var contactTemplate = template.Must(template.New("contact").Parse(`<h2>{{.Req.Subject}}</h2>
<p><strong>{{.Req.ClientName}}</strong> &lt;{{.Req.ClientEmail}}&gt;</p>
<table>
<tr><td>Project</td><td>{{.Req.Project}}</td></tr>
<tr><td>Category</td><td>{{.Req.Category}}</td></tr>
<tr><td>Received</td><td>{{.Req.CreatedAt.Format "2006-01-02 15:04 MST"}}</td></tr>
</table>
<div>{{.Details}}</div>
{{if .Req.AttachmentURL}}<p><a href="{{.Req.AttachmentURL}}">Attachment</a></p>{{end}}
`))

type Config struct {
	APIKey string
	From   string
	To     string
}

// ResendNotifier implements ports.ContactNotifier.
type ResendNotifier struct {
	client *resend.Client
	from   string
	to     string
	log    zerolog.Logger
}

func NewResendNotifier(cfg Config, log zerolog.Logger) *ResendNotifier {
	return &ResendNotifier{
		client: resend.NewClient(cfg.APIKey),
		from:   cfg.From,
		to:     cfg.To,
		log:    log,
	}
}

// Notify emails the agency inbox, with the client as reply-to.
func (n *ResendNotifier) Notify(ctx context.Context, req *domain.ContactRequest) error {
	body, err := renderContact(req)
	if err != nil {
		return err
	}

	sent, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: subjectLine(req),
		Html:    body,
		ReplyTo: req.ClientEmail,
	})
	if err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	n.log.Info().Str("message_id", sent.Id).Str("request_id", req.ID).Msg("contact notification sent")
	return nil
}

func subjectLine(req *domain.ContactRequest) string {
	return fmt.Sprintf("[%s] %s: %s", req.Category, req.ClientName, req.Subject)
}

func renderContact(req *domain.ContactRequest) (string, error) {
	var md bytes.Buffer
	if err := mdRenderer.Convert([]byte(req.Details), &md); err != nil {
		return "", fmt.Errorf("render details: %w", err)
	}
	var out bytes.Buffer
	err := contactTemplate.Execute(&out, struct {
		Req     *domain.ContactRequest
		Details template.HTML
	}{Req: req, Details: template.HTML(md.String())})
	if err != nil {
		return "", fmt.Errorf("render contact email: %w", err)
	}
	return out.String(), nil
}
