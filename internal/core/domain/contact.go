package domain

import "time"

// Theme is the presentation color scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ContactCategory classifies a client's request to the agency.
type ContactCategory string

const (
	ContactDesignRevision ContactCategory = "Design Revision"
	ContactContentRequest ContactCategory = "Content Request"
	ContactTechnicalIssue ContactCategory = "Technical Issue"
	ContactBilling        ContactCategory = "Billing Question"
)

func (c ContactCategory) Valid() bool {
	switch c {
	case ContactDesignRevision, ContactContentRequest, ContactTechnicalIssue, ContactBilling:
		return true
	}
	return false
}

// ContactRequest is a question or revision request sent from the Contact page.
type ContactRequest struct {
	ID            string          `json:"id" bson:"_id"`
	ClientID      string          `json:"client_id" bson:"client_id"`
	ClientName    string          `json:"client_name" bson:"client_name"`
	ClientEmail   string          `json:"client_email" bson:"client_email"`
	Project       string          `json:"project" bson:"project"`
	Subject       string          `json:"subject" bson:"subject"`
	Category      ContactCategory `json:"category" bson:"category"`
	Details       string          `json:"details" bson:"details"`
	AttachmentURL string          `json:"attachment_url,omitempty" bson:"attachment_url,omitempty"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	NotifiedAt    *time.Time      `json:"notified_at,omitempty" bson:"notified_at,omitempty"`
}
