package editor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

type listKind int

const (
	listInvalid listKind = iota
	listTimeline
	listPayments
	listColors
	listTypography
	listLogos
	listAssetCategories
	listAssetFiles
)

// List addresses an ordered sequence inside a ClientData document.
type List struct {
	kind     listKind
	category string
	index    int
}

func Timeline(category string) List { return List{kind: listTimeline, category: category} }
func Payments() List                { return List{kind: listPayments} }
func Colors() List                  { return List{kind: listColors} }
func Typography() List              { return List{kind: listTypography} }
func Logos() List                   { return List{kind: listLogos} }
func AssetCategories() List         { return List{kind: listAssetCategories} }
func AssetFiles(category int) List  { return List{kind: listAssetFiles, index: category} }

func (l List) Section() Section {
	switch l.kind {
	case listTimeline, listPayments:
		return SectionProgress
	case listColors, listTypography, listLogos:
		return SectionGuidelines
	case listAssetCategories, listAssetFiles:
		return SectionAssets
	}
	return ""
}

func (l List) String() string {
	switch l.kind {
	case listTimeline:
		return "items." + l.category
	case listPayments:
		return "payments"
	case listColors:
		return "colors"
	case listTypography:
		return "typography"
	case listLogos:
		return "logos"
	case listAssetCategories:
		return "categories"
	case listAssetFiles:
		return fmt.Sprintf("categories.%d.files", l.index)
	}
	return "<invalid>"
}

// ParseList is the list counterpart of ParsePath.
func ParseList(section string, keys []string) (List, error) {
	bad := func(reason string) (List, error) {
		return List{}, &domain.PathError{Section: section, Path: strings.Join(keys, "."), Reason: reason}
	}

	if !Section(section).valid() {
		return bad("unknown section")
	}

	switch Section(section) {
	case SectionProgress:
		switch {
		case len(keys) == 1 && keys[0] == "payments":
			return Payments(), nil
		case len(keys) == 2 && keys[0] == "items":
			return Timeline(keys[1]), nil
		}
	case SectionGuidelines:
		if len(keys) == 1 {
			switch keys[0] {
			case "colors":
				return Colors(), nil
			case "typography":
				return Typography(), nil
			case "logos":
				return Logos(), nil
			}
		}
	case SectionAssets:
		switch {
		case len(keys) == 1 && keys[0] == "categories":
			return AssetCategories(), nil
		case len(keys) == 3 && keys[0] == "categories" && keys[2] == "files":
			c, ok := parseIndex(keys[1])
			if !ok {
				return bad("malformed index")
			}
			return AssetFiles(c), nil
		}
	}

	return bad("no such list")
}

// DecodeItem decodes a JSON entry for list l into the matching domain type.
// Unknown fields are rejected.
func DecodeItem(l List, raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var (
		item any
		err  error
	)
	switch l.kind {
	case listTimeline:
		item, err = decodeAs[domain.TimelineItem](dec)
	case listPayments:
		item, err = decodeAs[domain.Payment](dec)
	case listColors:
		item, err = decodeAs[domain.ColorEntry](dec)
	case listTypography:
		item, err = decodeAs[domain.TypographyEntry](dec)
	case listLogos:
		item, err = decodeAs[domain.LogoUsageEntry](dec)
	case listAssetCategories:
		item, err = decodeAs[domain.AssetCategory](dec)
	case listAssetFiles:
		item, err = decodeAs[domain.AssetFile](dec)
	default:
		return nil, &domain.PathError{Section: string(l.Section()), Path: l.String(), Reason: "no such list"}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidValue, err)
	}
	return item, nil
}

func decodeAs[T any](dec *json.Decoder) (any, error) {
	var v T
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
