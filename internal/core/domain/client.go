package domain

import (
	"sort"
	"time"
)

// TimelineStatus is the state of a single progress timeline item.
type TimelineStatus string

const (
	TimelineNotStarted       TimelineStatus = "Not Started"
	TimelineInProgress       TimelineStatus = "In Progress"
	TimelineAwaitingFeedback TimelineStatus = "Awaiting Feedback"
	TimelineComplete         TimelineStatus = "Complete"
)

// Valid reports whether s is one of the known timeline statuses.
func (s TimelineStatus) Valid() bool {
	switch s {
	case TimelineNotStarted, TimelineInProgress, TimelineAwaitingFeedback, TimelineComplete:
		return true
	}
	return false
}

// PaymentStatus is the billing state of a payment.
type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "Paid"
	PaymentUpcoming PaymentStatus = "Upcoming"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPaid || s == PaymentUpcoming
}

// TypographyType distinguishes the heading face from the body face.
type TypographyType string

const (
	TypographyHeading TypographyType = "Heading"
	TypographyBody    TypographyType = "Body"
)

func (t TypographyType) Valid() bool {
	return t == TypographyHeading || t == TypographyBody
}

// LogoBackground is the background a logo usage example is shown on.
type LogoBackground string

const (
	LogoLight LogoBackground = "light"
	LogoDark  LogoBackground = "dark"
)

func (b LogoBackground) Valid() bool {
	return b == LogoLight || b == LogoDark
}

// DefaultTimelineCategories are the preset progress categories, in display order.
var DefaultTimelineCategories = []string{"Discovery", "Strategy", "Identity", "Website", "Launch"}

// DefaultAssetCategories are the asset folders every new client starts with.
var DefaultAssetCategories = []string{"Vector Logos (AI, EPS, SVG)", "Raster Logos (PNG, JPG)", "Brand Strategy"}

// DefaultTypographyFamily is the brand face used until the agency changes it.
const DefaultTypographyFamily = "Inter"

type TimelineItem struct {
	ID     string         `json:"id" bson:"id"`
	Text   string         `json:"text" bson:"text"`
	Status TimelineStatus `json:"status" bson:"status"`
}

type Payment struct {
	ID      string        `json:"id" bson:"id"`
	Item    string        `json:"item" bson:"item"`
	Amount  float64       `json:"amount" bson:"amount"`
	DueDate string        `json:"due_date" bson:"due_date"`
	Status  PaymentStatus `json:"status" bson:"status"`
}

// ColorEntry holds four independently edited representations of one color.
// Nothing checks that they denote the same color.
type ColorEntry struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
	Hex  string `json:"hex" bson:"hex"`
	RGB  string `json:"rgb" bson:"rgb"`
	CMYK string `json:"cmyk" bson:"cmyk"`
}

type TypographyEntry struct {
	Type        TypographyType `json:"type" bson:"type"`
	Family      string         `json:"family" bson:"family"`
	PreviewText string         `json:"preview_text" bson:"preview_text"`
}

type LogoUsageEntry struct {
	ID          string         `json:"id" bson:"id"`
	ImageURL    string         `json:"image_url" bson:"image_url"`
	Description string         `json:"description" bson:"description"`
	Type        LogoBackground `json:"type" bson:"type"`
}

type AssetFile struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
	URL  string `json:"url" bson:"url"`
}

type AssetCategory struct {
	ID    string      `json:"id" bson:"id"`
	Name  string      `json:"name" bson:"name"`
	Files []AssetFile `json:"files" bson:"files"`
}

// Progress is the project-tracking section of a client's document.
type Progress struct {
	NextAction string                    `json:"next_action" bson:"next_action"`
	Items      map[string][]TimelineItem `json:"items" bson:"items"`
	Payments   []Payment                 `json:"payments" bson:"payments"`
}

// Guidelines is the brand-book section of a client's document.
type Guidelines struct {
	Colors     []ColorEntry      `json:"colors" bson:"colors"`
	Typography []TypographyEntry `json:"typography" bson:"typography"`
	Logos      []LogoUsageEntry  `json:"logos" bson:"logos"`
}

// Assets is the downloadable-files section of a client's document.
type Assets struct {
	Categories []AssetCategory `json:"categories" bson:"categories"`
}

// ClientData is the nested per-client document edited by the admin.
type ClientData struct {
	Progress   Progress   `json:"progress" bson:"progress"`
	Guidelines Guidelines `json:"guidelines" bson:"guidelines"`
	Assets     Assets     `json:"assets" bson:"assets"`
}

// ClientRecord is the persisted document, keyed by the owning identity's id.
type ClientRecord struct {
	ID        string     `json:"id" bson:"_id"`
	Name      string     `json:"name" bson:"name"`
	Email     string     `json:"email" bson:"email"`
	Data      ClientData `json:"data" bson:"data"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// Clone deep-copies the record.
func (r *ClientRecord) Clone() *ClientRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Data = r.Data.Clone()
	return &c
}

// Clone returns a full deep copy; no slice or map is shared with d.
func (d ClientData) Clone() ClientData {
	return ClientData{
		Progress:   d.Progress.Clone(),
		Guidelines: d.Guidelines.Clone(),
		Assets:     d.Assets.Clone(),
	}
}

func (p Progress) Clone() Progress {
	out := Progress{
		NextAction: p.NextAction,
		Payments:   cloneSlice(p.Payments),
	}
	if p.Items != nil {
		out.Items = make(map[string][]TimelineItem, len(p.Items))
		for k, v := range p.Items {
			out.Items[k] = cloneSlice(v)
		}
	}
	return out
}

// Categories lists the timeline categories: presets first in their fixed
// order, then any others alphabetically.
func (p Progress) Categories() []string {
	out := make([]string, 0, len(p.Items))
	seen := make(map[string]bool, len(p.Items))
	for _, c := range DefaultTimelineCategories {
		if _, ok := p.Items[c]; ok {
			out = append(out, c)
			seen[c] = true
		}
	}
	var extra []string
	for c := range p.Items {
		if !seen[c] {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func (g Guidelines) Clone() Guidelines {
	return Guidelines{
		Colors:     cloneSlice(g.Colors),
		Typography: cloneSlice(g.Typography),
		Logos:      cloneSlice(g.Logos),
	}
}

func (a Assets) Clone() Assets {
	if a.Categories == nil {
		return Assets{}
	}
	cats := make([]AssetCategory, len(a.Categories))
	for i, c := range a.Categories {
		cats[i] = AssetCategory{ID: c.ID, Name: c.Name, Files: cloneSlice(c.Files)}
	}
	return Assets{Categories: cats}
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// DefaultClientData returns the document provisioned for a new client.
// newID generates the ids of the preset list entries.
func DefaultClientData(newID func() string) ClientData {
	items := make(map[string][]TimelineItem, len(DefaultTimelineCategories))
	for _, c := range DefaultTimelineCategories {
		items[c] = []TimelineItem{}
	}

	cats := make([]AssetCategory, 0, len(DefaultAssetCategories))
	for _, name := range DefaultAssetCategories {
		cats = append(cats, AssetCategory{ID: newID(), Name: name, Files: []AssetFile{}})
	}

	return ClientData{
		Progress: Progress{
			Items:    items,
			Payments: []Payment{},
		},
		Guidelines: Guidelines{
			Colors: []ColorEntry{},
			Typography: []TypographyEntry{
				{Type: TypographyHeading, Family: DefaultTypographyFamily, PreviewText: "This is a primary headline."},
				{Type: TypographyBody, Family: DefaultTypographyFamily, PreviewText: "This is for body copy. It's chosen for readability and should be used for paragraphs and longer text content."},
			},
			Logos: []LogoUsageEntry{},
		},
		Assets: Assets{Categories: cats},
	}
}
