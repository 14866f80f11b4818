package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cardpilot/cardpilot/internal/actionctx"
	"github.com/cardpilot/cardpilot/pkg/models"
)

// defaultStatusColor is used when a statusBadge value has no mapping. An
// unmapped raw value is a rendering question, never an error.
const defaultStatusColor = "neutral"

// Resolve interprets a configuration against an action context and returns
// the render plan. Resolution is pure given the injected clock: the same
// (config, context) pair always yields an identical plan, and fields with
// no resolvable value are omitted entirely rather than rendered blank.
func (e *Engine) Resolve(cfg *models.ModalConfig, actx *actionctx.Context) *models.RenderPlan {
	plan := &models.RenderPlan{
		ModalConfigID: cfg.ID,
		Title:         cfg.Title,
		Icon:          cfg.Icon,
		Layout:        cfg.Layout,
	}

	for _, sec := range cfg.Sections {
		rendered := models.RenderedSection{
			ID:         sec.ID,
			Title:      sec.Title,
			Layout:     sec.Layout,
			Background: sec.Background,
			Fields:     []models.RenderedField{},
		}
		for _, f := range sec.Fields {
			if rf, ok := e.resolveField(f, actx); ok {
				rendered.Fields = append(rendered.Fields, rf)
			}
		}
		plan.Sections = append(plan.Sections, rendered)
	}

	if cfg.PrimaryButton != nil {
		plan.PrimaryButton = &models.RenderedButton{
			Title:  cfg.PrimaryButton.Title,
			Style:  cfg.PrimaryButton.Style,
			Action: cfg.PrimaryButton.Action,
		}
	}
	if cfg.SecondaryButton != nil {
		plan.SecondaryButton = &models.RenderedButton{
			Title:  cfg.SecondaryButton.Title,
			Style:  cfg.SecondaryButton.Style,
			Action: cfg.SecondaryButton.Action,
		}
	}

	return plan
}

// resolveField applies the per-type contract. The second return value is
// false when the field is omitted from the layout.
func (e *Engine) resolveField(f models.FieldConfig, actx *actionctx.Context) (models.RenderedField, bool) {
	rf := models.RenderedField{ID: f.ID, Label: f.Label, Type: f.Type}

	switch f.Type {
	case models.FieldText, models.FieldMultilineText:
		s, ok := actx.String(f.ContextKey)
		if !ok {
			return rf, false
		}
		rf.Value = s
		rf.Copyable = f.Copyable

	case models.FieldBadge:
		s, ok := actx.String(f.ContextKey)
		if !ok {
			return rf, false
		}
		rf.Value = s
		rf.Copyable = f.Copyable

	case models.FieldStatusBadge:
		s, ok := actx.String(f.ContextKey)
		if !ok {
			return rf, false
		}
		rf.Value = s
		rf.Color = defaultStatusColor
		if color, mapped := f.ColorMapping[s]; mapped {
			rf.Color = color
		}

	case models.FieldDate, models.FieldDateTime:
		t, ok := actx.Date(f.ContextKey)
		if !ok {
			return rf, false
		}
		rf.Value = e.formatDate(t, f.DateStyle, f.Type == models.FieldDateTime)

	case models.FieldCurrency:
		n, ok := actx.Number(f.ContextKey)
		if !ok {
			return rf, false
		}
		code := ""
		if f.CurrencyStyle != nil {
			code = f.CurrencyStyle.Code
			rf.Emphasis = f.CurrencyStyle.Emphasis
		}
		rf.Value = formatCurrency(n, code)

	case models.FieldLink:
		u, ok := actx.URL(f.ContextKey)
		if !ok {
			// Absent URL means no field at all, never a dead link.
			return rf, false
		}
		rf.URL = u.String()
		rf.Value = f.Label

	case models.FieldButton:
		rf.Action = f.Action

	case models.FieldImage:
		u, ok := actx.URL(f.ContextKey)
		if !ok {
			return rf, false
		}
		rf.URL = u.String()
		rf.ImageState = models.ImageLoading

	default:
		return rf, false
	}

	return rf, true
}

// formatDate renders a timestamp per the configured style; dateTime fields
// append the clock time.
func (e *Engine) formatDate(t time.Time, style models.DateStyle, withTime bool) string {
	var out string
	switch style {
	case models.DateStyleRelative:
		out = relativeDate(e.deps.Clock.Now(), t)
	case models.DateStyleFull:
		out = t.Format("Monday, January 2, 2006")
	default: // short is the default style
		out = t.Format("Jan 2, 2006")
	}
	if withTime && style != models.DateStyleRelative {
		out += " at " + t.Format("3:04 PM")
	}
	return out
}

// relativeDate renders t against now in coarse human buckets.
func relativeDate(now, t time.Time) string {
	d := now.Sub(t)
	future := d < 0
	if future {
		d = -d
	}

	var phrase string
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		phrase = plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		phrase = plural(int(d.Hours()), "hour")
	case d < 48*time.Hour:
		if future {
			return "tomorrow"
		}
		return "yesterday"
	default:
		phrase = plural(int(d.Hours()/24), "day")
	}

	if future {
		return "in " + phrase
	}
	return phrase + " ago"
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// formatCurrency renders an amount with its currency symbol and grouped
// thousands. Unknown codes fall back to "CODE amount".
func formatCurrency(amount float64, code string) string {
	decimals := 2
	if code == "JPY" {
		decimals = 0
	}

	negative := amount < 0
	if negative {
		amount = -amount
	}

	fixed := strconv.FormatFloat(amount, 'f', decimals, 64)
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	grouped := groupThousands(intPart)
	if fracPart != "" {
		grouped += "." + fracPart
	}
	if negative {
		grouped = "-" + grouped
	}

	if symbol, ok := currencySymbols[code]; ok {
		return symbol + grouped
	}
	if code != "" {
		return code + " " + grouped
	}
	return grouped
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
