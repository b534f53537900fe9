package editor

import (
	"errors"
	"testing"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

func TestParsePath_Valid(t *testing.T) {
	cases := []struct {
		section string
		keys    []string
		want    Path
	}{
		{"progress", []string{"next_action"}, NextAction()},
		{"progress", []string{"items", "Website", "2", "status"}, TimelineStatus("Website", 2)},
		{"progress", []string{"payments", "0", "due_date"}, PaymentDueDate(0)},
		{"guidelines", []string{"colors", "3", "cmyk"}, ColorCMYK(3)},
		{"guidelines", []string{"typography", "1", "preview_text"}, TypographyPreview(1)},
		{"guidelines", []string{"logos", "0", "image_url"}, LogoImageURL(0)},
		{"assets", []string{"categories", "1", "name"}, AssetCategoryName(1)},
		{"assets", []string{"categories", "1", "files", "4", "url"}, AssetFileURL(1, 4)},
	}

	for _, tc := range cases {
		got, err := ParsePath(tc.section, tc.keys)
		if err != nil {
			t.Errorf("%s %v: unexpected error %v", tc.section, tc.keys, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s %v: expected %s, got %s", tc.section, tc.keys, tc.want, got)
		}
		if got.Section() != Section(tc.section) {
			t.Errorf("%s: section reported as %q", got, got.Section())
		}
	}
}

func TestParsePath_Rejects(t *testing.T) {
	cases := []struct {
		section string
		keys    []string
		reason  string
	}{
		{"billing", []string{"next_action"}, "unknown section"},
		{"progress", nil, "empty path"},
		{"progress", []string{"payments", "x", "item"}, "malformed index"},
		{"progress", []string{"payments", "-1", "item"}, "malformed index"},
		{"progress", []string{"payments", "0", "currency"}, "no such field"},
		{"guidelines", []string{"colors", "0"}, "no such field"},
		{"assets", []string{"categories", "0", "files", "y", "url"}, "malformed index"},
		{"assets", []string{"next_action"}, "no such field"},
	}

	for _, tc := range cases {
		_, err := ParsePath(tc.section, tc.keys)
		var pe *domain.PathError
		if !errors.As(err, &pe) {
			t.Errorf("%s %v: expected PathError, got %v", tc.section, tc.keys, err)
			continue
		}
		if pe.Reason != tc.reason {
			t.Errorf("%s %v: expected reason %q, got %q", tc.section, tc.keys, tc.reason, pe.Reason)
		}
	}
}

func TestPath_FileBacked(t *testing.T) {
	if !LogoImageURL(0).FileBacked() || !AssetFileURL(0, 0).FileBacked() {
		t.Error("logo image and asset file url must be file backed")
	}
	if AssetFileName(0, 0).FileBacked() || NextAction().FileBacked() {
		t.Error("plain text leaves must not be file backed")
	}
}

func TestParseList(t *testing.T) {
	cases := []struct {
		section string
		keys    []string
		want    List
	}{
		{"progress", []string{"payments"}, Payments()},
		{"progress", []string{"items", "Strategy"}, Timeline("Strategy")},
		{"guidelines", []string{"typography"}, Typography()},
		{"assets", []string{"categories", "2", "files"}, AssetFiles(2)},
	}
	for _, tc := range cases {
		got, err := ParseList(tc.section, tc.keys)
		if err != nil || got != tc.want {
			t.Errorf("%s %v: expected %s, got %s (err %v)", tc.section, tc.keys, tc.want, got, err)
		}
	}

	var pe *domain.PathError
	if _, err := ParseList("guidelines", []string{"payments"}); !errors.As(err, &pe) {
		t.Errorf("expected PathError for a list in the wrong section, got %v", err)
	}
}

func TestDecodeItem(t *testing.T) {
	item, err := DecodeItem(Payments(), []byte(`{"item":"Deposit","amount":500,"due_date":"2024-09-01","status":"Upcoming"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	p, ok := item.(domain.Payment)
	if !ok || p.Item != "Deposit" || p.Amount != 500 {
		t.Errorf("unexpected item %#v", item)
	}

	if _, err := DecodeItem(Payments(), []byte(`{"item":"Deposit","amont":500}`)); !errors.Is(err, domain.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for unknown field, got %v", err)
	}
	if _, err := DecodeItem(Colors(), []byte(`not json`)); !errors.Is(err, domain.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for malformed json, got %v", err)
	}
}
