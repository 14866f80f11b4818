// Package ui renders a resolved plan as indented text for the reference
// CLI. The production clients paint the same plan with their own toolkits.
package ui

import (
	"fmt"
	"strings"

	"github.com/cardpilot/cardpilot/pkg/models"
)

// RenderPlanText formats a render plan for terminal output.
func RenderPlanText(plan *models.RenderPlan) string {
	var b strings.Builder

	if plan.Fallback != nil {
		fmt.Fprintf(&b, "[notice] %s (action: %s)\n", plan.Fallback.Message, plan.Fallback.ActionID)
		return b.String()
	}

	fmt.Fprintf(&b, "=== %s ===\n", plan.Title)
	if plan.Icon != nil {
		fmt.Fprintf(&b, "icon: %s\n", plan.Icon.Name)
	}

	for _, sec := range plan.Sections {
		if sec.Title != "" {
			fmt.Fprintf(&b, "\n[%s] %s (%s)\n", sec.ID, sec.Title, sec.Layout)
		} else {
			fmt.Fprintf(&b, "\n[%s] (%s)\n", sec.ID, sec.Layout)
		}
		for _, f := range sec.Fields {
			b.WriteString("  " + formatField(f) + "\n")
		}
	}

	if plan.PrimaryButton != nil {
		fmt.Fprintf(&b, "\n(%s) %s -> %s\n", plan.PrimaryButton.Style, plan.PrimaryButton.Title, plan.PrimaryButton.Action.Type)
	}
	if plan.SecondaryButton != nil {
		fmt.Fprintf(&b, "(%s) %s -> %s\n", plan.SecondaryButton.Style, plan.SecondaryButton.Title, plan.SecondaryButton.Action.Type)
	}

	return b.String()
}

func formatField(f models.RenderedField) string {
	label := f.Label
	if label == "" {
		label = f.ID
	}
	switch f.Type {
	case models.FieldStatusBadge:
		return fmt.Sprintf("%s: %s [%s]", label, f.Value, f.Color)
	case models.FieldBadge:
		suffix := ""
		if f.Copyable {
			suffix = " (copyable)"
		}
		return fmt.Sprintf("%s: %s%s", label, f.Value, suffix)
	case models.FieldLink:
		return fmt.Sprintf("%s -> %s", label, f.URL)
	case models.FieldImage:
		return fmt.Sprintf("%s: image %s (%s)", label, f.URL, f.ImageState)
	case models.FieldButton:
		return fmt.Sprintf("%s [button: %s]", label, f.Action.Type)
	default:
		return fmt.Sprintf("%s: %s", label, f.Value)
	}
}
