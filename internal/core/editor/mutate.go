package editor

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

// leafRef points at exactly one of a text or a number leaf.
type leafRef struct {
	text *string
	num  *float64
}

func (r leafRef) value() any {
	if r.num != nil {
		return *r.num
	}
	return *r.text
}

func unresolved(p Path, reason string) error {
	return &domain.PathError{Section: string(p.Section()), Path: p.String(), Reason: reason}
}

func inRange(i, n int) bool { return i >= 0 && i < n }

// cloneSection replaces section s of d with a private deep copy so it can be
// mutated in place without touching any snapshot that shares it.
func cloneSection(d *domain.ClientData, s Section) {
	switch s {
	case SectionProgress:
		d.Progress = d.Progress.Clone()
	case SectionGuidelines:
		d.Guidelines = d.Guidelines.Clone()
	case SectionAssets:
		d.Assets = d.Assets.Clone()
	}
}

// locate resolves p against d. Every intermediate container must exist.
func locate(d *domain.ClientData, p Path) (leafRef, error) {
	switch p.kind {
	case leafNextAction:
		return leafRef{text: &d.Progress.NextAction}, nil

	case leafTimelineText, leafTimelineStatus:
		items, ok := d.Progress.Items[p.category]
		if !ok {
			return leafRef{}, unresolved(p, "unknown timeline category")
		}
		if !inRange(p.index, len(items)) {
			return leafRef{}, unresolved(p, "no timeline item at this index")
		}
		it := &items[p.index]
		if p.kind == leafTimelineText {
			return leafRef{text: &it.Text}, nil
		}
		return leafRef{text: (*string)(&it.Status)}, nil

	case leafPaymentItem, leafPaymentAmount, leafPaymentDueDate, leafPaymentStatus:
		if !inRange(p.index, len(d.Progress.Payments)) {
			return leafRef{}, unresolved(p, "no payment at this index")
		}
		pm := &d.Progress.Payments[p.index]
		switch p.kind {
		case leafPaymentItem:
			return leafRef{text: &pm.Item}, nil
		case leafPaymentAmount:
			return leafRef{num: &pm.Amount}, nil
		case leafPaymentDueDate:
			return leafRef{text: &pm.DueDate}, nil
		default:
			return leafRef{text: (*string)(&pm.Status)}, nil
		}

	case leafColorName, leafColorHex, leafColorRGB, leafColorCMYK:
		if !inRange(p.index, len(d.Guidelines.Colors)) {
			return leafRef{}, unresolved(p, "no color at this index")
		}
		c := &d.Guidelines.Colors[p.index]
		switch p.kind {
		case leafColorName:
			return leafRef{text: &c.Name}, nil
		case leafColorHex:
			return leafRef{text: &c.Hex}, nil
		case leafColorRGB:
			return leafRef{text: &c.RGB}, nil
		default:
			return leafRef{text: &c.CMYK}, nil
		}

	case leafTypographyType, leafTypographyFamily, leafTypographyPreview:
		if !inRange(p.index, len(d.Guidelines.Typography)) {
			return leafRef{}, unresolved(p, "no typography entry at this index")
		}
		ty := &d.Guidelines.Typography[p.index]
		switch p.kind {
		case leafTypographyType:
			return leafRef{text: (*string)(&ty.Type)}, nil
		case leafTypographyFamily:
			return leafRef{text: &ty.Family}, nil
		default:
			return leafRef{text: &ty.PreviewText}, nil
		}

	case leafLogoImageURL, leafLogoDescription, leafLogoType:
		if !inRange(p.index, len(d.Guidelines.Logos)) {
			return leafRef{}, unresolved(p, "no logo at this index")
		}
		lg := &d.Guidelines.Logos[p.index]
		switch p.kind {
		case leafLogoImageURL:
			return leafRef{text: &lg.ImageURL}, nil
		case leafLogoDescription:
			return leafRef{text: &lg.Description}, nil
		default:
			return leafRef{text: (*string)(&lg.Type)}, nil
		}

	case leafAssetCategoryName, leafAssetFileName, leafAssetFileURL:
		if !inRange(p.index, len(d.Assets.Categories)) {
			return leafRef{}, unresolved(p, "no asset category at this index")
		}
		cat := &d.Assets.Categories[p.index]
		if p.kind == leafAssetCategoryName {
			return leafRef{text: &cat.Name}, nil
		}
		if !inRange(p.file, len(cat.Files)) {
			return leafRef{}, unresolved(p, "no file at this index")
		}
		f := &cat.Files[p.file]
		if p.kind == leafAssetFileName {
			return leafRef{text: &f.Name}, nil
		}
		return leafRef{text: &f.URL}, nil
	}

	return leafRef{}, unresolved(p, "invalid path")
}

// coerce checks v against the leaf's type and returns it in storable form.
func coerce(p Path, v any) (any, error) {
	ls, ok := leaves[p.kind]
	if !ok {
		return nil, unresolved(p, "invalid path")
	}

	if ls.value == numberValue {
		n, ok := toNumber(v)
		if !ok || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidValue, p)
		}
		return n, nil
	}

	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be text", domain.ErrInvalidValue, p)
	}
	if ls.allowed != nil && !ls.allowed(s) {
		return nil, fmt.Errorf("%w: %q is not allowed for %s", domain.ErrInvalidValue, s, p)
	}
	return s, nil
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// setLeaf replaces the leaf at p in d, cloning p's section first.
// On error d is left as it was.
func setLeaf(d *domain.ClientData, p Path, v any) error {
	val, err := coerce(p, v)
	if err != nil {
		return err
	}

	next := *d
	cloneSection(&next, p.Section())
	ref, err := locate(&next, p)
	if err != nil {
		return err
	}
	if ref.num != nil {
		*ref.num = val.(float64)
	} else {
		*ref.text = val.(string)
	}

	*d = next
	return nil
}

// appendItem appends item to l and returns its id. Ids always come from
// newID; one carried by item is discarded. On error d is left as it was.
func appendItem(d *domain.ClientData, l List, item any, newID func() string) (string, error) {
	next := *d
	cloneSection(&next, l.Section())

	var id string
	switch l.kind {
	case listTimeline:
		it, ok := item.(domain.TimelineItem)
		if !ok {
			return "", wrongItem(l, item)
		}
		items, exists := next.Progress.Items[l.category]
		if !exists {
			return "", &domain.PathError{Section: string(SectionProgress), Path: l.String(), Reason: "unknown timeline category"}
		}
		if it.Status == "" {
			it.Status = domain.TimelineNotStarted
		}
		if !it.Status.Valid() {
			return "", fmt.Errorf("%w: timeline status %q", domain.ErrInvalidValue, it.Status)
		}
		it.ID = newID()
		next.Progress.Items[l.category] = append(items, it)
		id = it.ID

	case listPayments:
		pm, ok := item.(domain.Payment)
		if !ok {
			return "", wrongItem(l, item)
		}
		if pm.Amount < 0 || math.IsNaN(pm.Amount) || math.IsInf(pm.Amount, 0) {
			return "", fmt.Errorf("%w: payment amount must be a non-negative number", domain.ErrInvalidValue)
		}
		if pm.Status == "" {
			pm.Status = domain.PaymentUpcoming
		}
		if !pm.Status.Valid() {
			return "", fmt.Errorf("%w: payment status %q", domain.ErrInvalidValue, pm.Status)
		}
		pm.ID = newID()
		next.Progress.Payments = append(next.Progress.Payments, pm)
		id = pm.ID

	case listColors:
		c, ok := item.(domain.ColorEntry)
		if !ok {
			return "", wrongItem(l, item)
		}
		c.ID = newID()
		next.Guidelines.Colors = append(next.Guidelines.Colors, c)
		id = c.ID

	case listTypography:
		ty, ok := item.(domain.TypographyEntry)
		if !ok {
			return "", wrongItem(l, item)
		}
		if !ty.Type.Valid() {
			return "", fmt.Errorf("%w: typography type %q", domain.ErrInvalidValue, ty.Type)
		}
		next.Guidelines.Typography = append(next.Guidelines.Typography, ty)

	case listLogos:
		lg, ok := item.(domain.LogoUsageEntry)
		if !ok {
			return "", wrongItem(l, item)
		}
		if lg.Type == "" {
			lg.Type = domain.LogoLight
		}
		if !lg.Type.Valid() {
			return "", fmt.Errorf("%w: logo type %q", domain.ErrInvalidValue, lg.Type)
		}
		lg.ID = newID()
		next.Guidelines.Logos = append(next.Guidelines.Logos, lg)
		id = lg.ID

	case listAssetCategories:
		cat, ok := item.(domain.AssetCategory)
		if !ok {
			return "", wrongItem(l, item)
		}
		cat.ID = newID()
		files := make([]domain.AssetFile, 0, len(cat.Files))
		for _, f := range cat.Files {
			f.ID = newID()
			files = append(files, f)
		}
		cat.Files = files
		next.Assets.Categories = append(next.Assets.Categories, cat)
		id = cat.ID

	case listAssetFiles:
		f, ok := item.(domain.AssetFile)
		if !ok {
			return "", wrongItem(l, item)
		}
		if !inRange(l.index, len(next.Assets.Categories)) {
			return "", &domain.PathError{Section: string(SectionAssets), Path: l.String(), Reason: "no asset category at this index"}
		}
		cat := &next.Assets.Categories[l.index]
		f.ID = newID()
		cat.Files = append(cat.Files, f)
		id = f.ID

	default:
		return "", &domain.PathError{Section: string(l.Section()), Path: l.String(), Reason: "no such list"}
	}

	*d = next
	return id, nil
}

// removeItem deletes entry index of l; later entries shift down by one.
func removeItem(d *domain.ClientData, l List, index int) error {
	next := *d
	cloneSection(&next, l.Section())

	var err error
	switch l.kind {
	case listTimeline:
		items, ok := next.Progress.Items[l.category]
		if !ok {
			return &domain.PathError{Section: string(SectionProgress), Path: l.String(), Reason: "unknown timeline category"}
		}
		next.Progress.Items[l.category], err = removeAt(items, index, l)
	case listPayments:
		next.Progress.Payments, err = removeAt(next.Progress.Payments, index, l)
	case listColors:
		next.Guidelines.Colors, err = removeAt(next.Guidelines.Colors, index, l)
	case listTypography:
		next.Guidelines.Typography, err = removeAt(next.Guidelines.Typography, index, l)
	case listLogos:
		next.Guidelines.Logos, err = removeAt(next.Guidelines.Logos, index, l)
	case listAssetCategories:
		next.Assets.Categories, err = removeAt(next.Assets.Categories, index, l)
	case listAssetFiles:
		if !inRange(l.index, len(next.Assets.Categories)) {
			return &domain.PathError{Section: string(SectionAssets), Path: l.String(), Reason: "no asset category at this index"}
		}
		cat := &next.Assets.Categories[l.index]
		cat.Files, err = removeAt(cat.Files, index, l)
	default:
		return &domain.PathError{Section: string(l.Section()), Path: l.String(), Reason: "no such list"}
	}
	if err != nil {
		return err
	}

	*d = next
	return nil
}

func removeAt[T any](s []T, i int, l List) ([]T, error) {
	if !inRange(i, len(s)) {
		return s, &domain.IndexError{List: l.String(), Index: i, Len: len(s)}
	}
	return append(s[:i], s[i+1:]...), nil
}

func wrongItem(l List, item any) error {
	return fmt.Errorf("%w: %T cannot be added to %s", domain.ErrInvalidValue, item, l)
}
