package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

// Section names one of the three top-level parts of a ClientData document.
type Section string

const (
	SectionProgress   Section = "progress"
	SectionGuidelines Section = "guidelines"
	SectionAssets     Section = "assets"
)

func (s Section) valid() bool {
	return s == SectionProgress || s == SectionGuidelines || s == SectionAssets
}

type leafKind int

const (
	leafInvalid leafKind = iota
	leafNextAction
	leafTimelineText
	leafTimelineStatus
	leafPaymentItem
	leafPaymentAmount
	leafPaymentDueDate
	leafPaymentStatus
	leafColorName
	leafColorHex
	leafColorRGB
	leafColorCMYK
	leafTypographyType
	leafTypographyFamily
	leafTypographyPreview
	leafLogoImageURL
	leafLogoDescription
	leafLogoType
	leafAssetCategoryName
	leafAssetFileName
	leafAssetFileURL
)

type valueKind int

const (
	textValue valueKind = iota
	numberValue
)

// leafInfo describes one addressable scalar.
type leafInfo struct {
	section Section
	value   valueKind
	// allowed returns false for text outside an enum; nil means free text.
	allowed func(string) bool
	file    bool
}

var leaves = map[leafKind]leafInfo{
	leafNextAction:        {section: SectionProgress},
	leafTimelineText:      {section: SectionProgress},
	leafTimelineStatus:    {section: SectionProgress, allowed: func(s string) bool { return domain.TimelineStatus(s).Valid() }},
	leafPaymentItem:       {section: SectionProgress},
	leafPaymentAmount:     {section: SectionProgress, value: numberValue},
	leafPaymentDueDate:    {section: SectionProgress},
	leafPaymentStatus:     {section: SectionProgress, allowed: func(s string) bool { return domain.PaymentStatus(s).Valid() }},
	leafColorName:         {section: SectionGuidelines},
	leafColorHex:          {section: SectionGuidelines},
	leafColorRGB:          {section: SectionGuidelines},
	leafColorCMYK:         {section: SectionGuidelines},
	leafTypographyType:    {section: SectionGuidelines, allowed: func(s string) bool { return domain.TypographyType(s).Valid() }},
	leafTypographyFamily:  {section: SectionGuidelines},
	leafTypographyPreview: {section: SectionGuidelines},
	leafLogoImageURL:      {section: SectionGuidelines, file: true},
	leafLogoDescription:   {section: SectionGuidelines},
	leafLogoType:          {section: SectionGuidelines, allowed: func(s string) bool { return domain.LogoBackground(s).Valid() }},
	leafAssetCategoryName: {section: SectionAssets},
	leafAssetFileName:     {section: SectionAssets},
	leafAssetFileURL:      {section: SectionAssets, file: true},
}

// Path addresses a single scalar leaf inside a ClientData document. The zero
// value is invalid; build paths with the constructors below or ParsePath.
type Path struct {
	kind     leafKind
	category string
	index    int
	file     int
}

// Section reports which section the leaf lives in.
func (p Path) Section() Section { return leaves[p.kind].section }

// FileBacked reports whether the leaf holds the URL of an uploaded file.
func (p Path) FileBacked() bool { return leaves[p.kind].file }

func (p Path) String() string {
	switch p.kind {
	case leafNextAction:
		return "next_action"
	case leafTimelineText:
		return fmt.Sprintf("items.%s.%d.text", p.category, p.index)
	case leafTimelineStatus:
		return fmt.Sprintf("items.%s.%d.status", p.category, p.index)
	case leafPaymentItem:
		return fmt.Sprintf("payments.%d.item", p.index)
	case leafPaymentAmount:
		return fmt.Sprintf("payments.%d.amount", p.index)
	case leafPaymentDueDate:
		return fmt.Sprintf("payments.%d.due_date", p.index)
	case leafPaymentStatus:
		return fmt.Sprintf("payments.%d.status", p.index)
	case leafColorName:
		return fmt.Sprintf("colors.%d.name", p.index)
	case leafColorHex:
		return fmt.Sprintf("colors.%d.hex", p.index)
	case leafColorRGB:
		return fmt.Sprintf("colors.%d.rgb", p.index)
	case leafColorCMYK:
		return fmt.Sprintf("colors.%d.cmyk", p.index)
	case leafTypographyType:
		return fmt.Sprintf("typography.%d.type", p.index)
	case leafTypographyFamily:
		return fmt.Sprintf("typography.%d.family", p.index)
	case leafTypographyPreview:
		return fmt.Sprintf("typography.%d.preview_text", p.index)
	case leafLogoImageURL:
		return fmt.Sprintf("logos.%d.image_url", p.index)
	case leafLogoDescription:
		return fmt.Sprintf("logos.%d.description", p.index)
	case leafLogoType:
		return fmt.Sprintf("logos.%d.type", p.index)
	case leafAssetCategoryName:
		return fmt.Sprintf("categories.%d.name", p.index)
	case leafAssetFileName:
		return fmt.Sprintf("categories.%d.files.%d.name", p.index, p.file)
	case leafAssetFileURL:
		return fmt.Sprintf("categories.%d.files.%d.url", p.index, p.file)
	}
	return "<invalid>"
}

func NextAction() Path { return Path{kind: leafNextAction} }
func TimelineText(category string, i int) Path {
	return Path{kind: leafTimelineText, category: category, index: i}
}
func TimelineStatus(category string, i int) Path {
	return Path{kind: leafTimelineStatus, category: category, index: i}
}
func PaymentItem(i int) Path       { return Path{kind: leafPaymentItem, index: i} }
func PaymentAmount(i int) Path     { return Path{kind: leafPaymentAmount, index: i} }
func PaymentDueDate(i int) Path    { return Path{kind: leafPaymentDueDate, index: i} }
func PaymentStatus(i int) Path     { return Path{kind: leafPaymentStatus, index: i} }
func ColorName(i int) Path         { return Path{kind: leafColorName, index: i} }
func ColorHex(i int) Path          { return Path{kind: leafColorHex, index: i} }
func ColorRGB(i int) Path          { return Path{kind: leafColorRGB, index: i} }
func ColorCMYK(i int) Path         { return Path{kind: leafColorCMYK, index: i} }
func TypographyType(i int) Path    { return Path{kind: leafTypographyType, index: i} }
func TypographyFamily(i int) Path  { return Path{kind: leafTypographyFamily, index: i} }
func TypographyPreview(i int) Path { return Path{kind: leafTypographyPreview, index: i} }
func LogoImageURL(i int) Path      { return Path{kind: leafLogoImageURL, index: i} }
func LogoDescription(i int) Path   { return Path{kind: leafLogoDescription, index: i} }
func LogoType(i int) Path          { return Path{kind: leafLogoType, index: i} }
func AssetCategoryName(c int) Path { return Path{kind: leafAssetCategoryName, index: c} }
func AssetFileName(c, f int) Path  { return Path{kind: leafAssetFileName, index: c, file: f} }
func AssetFileURL(c, f int) Path   { return Path{kind: leafAssetFileURL, index: c, file: f} }

// ParsePath turns an untyped key chain, as sent by the presentation layer,
// into a Path. Unknown keys and malformed indices are rejected here, before
// any document is touched; whether the indices exist is checked on use.
func ParsePath(section string, keys []string) (Path, error) {
	bad := func(reason string) (Path, error) {
		return Path{}, &domain.PathError{Section: section, Path: strings.Join(keys, "."), Reason: reason}
	}

	if !Section(section).valid() {
		return bad("unknown section")
	}
	if len(keys) == 0 {
		return bad("empty path")
	}

	switch Section(section) {
	case SectionProgress:
		switch {
		case len(keys) == 1 && keys[0] == "next_action":
			return NextAction(), nil
		case len(keys) == 4 && keys[0] == "items":
			i, ok := parseIndex(keys[2])
			if !ok {
				return bad("malformed index")
			}
			switch keys[3] {
			case "text":
				return TimelineText(keys[1], i), nil
			case "status":
				return TimelineStatus(keys[1], i), nil
			}
		case len(keys) == 3 && keys[0] == "payments":
			i, ok := parseIndex(keys[1])
			if !ok {
				return bad("malformed index")
			}
			switch keys[2] {
			case "item":
				return PaymentItem(i), nil
			case "amount":
				return PaymentAmount(i), nil
			case "due_date":
				return PaymentDueDate(i), nil
			case "status":
				return PaymentStatus(i), nil
			}
		}

	case SectionGuidelines:
		if len(keys) != 3 {
			break
		}
		i, ok := parseIndex(keys[1])
		if !ok {
			return bad("malformed index")
		}
		switch keys[0] + "." + keys[2] {
		case "colors.name":
			return ColorName(i), nil
		case "colors.hex":
			return ColorHex(i), nil
		case "colors.rgb":
			return ColorRGB(i), nil
		case "colors.cmyk":
			return ColorCMYK(i), nil
		case "typography.type":
			return TypographyType(i), nil
		case "typography.family":
			return TypographyFamily(i), nil
		case "typography.preview_text":
			return TypographyPreview(i), nil
		case "logos.image_url":
			return LogoImageURL(i), nil
		case "logos.description":
			return LogoDescription(i), nil
		case "logos.type":
			return LogoType(i), nil
		}

	case SectionAssets:
		if keys[0] != "categories" || len(keys) < 3 {
			break
		}
		c, ok := parseIndex(keys[1])
		if !ok {
			return bad("malformed index")
		}
		if len(keys) == 3 && keys[2] == "name" {
			return AssetCategoryName(c), nil
		}
		if len(keys) == 5 && keys[2] == "files" {
			f, ok := parseIndex(keys[3])
			if !ok {
				return bad("malformed index")
			}
			switch keys[4] {
			case "name":
				return AssetFileName(c, f), nil
			case "url":
				return AssetFileURL(c, f), nil
			}
		}
	}

	return bad("no such field")
}

func parseIndex(s string) (int, bool) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
