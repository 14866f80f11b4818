package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cardpilot/cardpilot/pkg/models"
)

func TestRenderPlanText(t *testing.T) {
	plan := &models.RenderPlan{
		ModalConfigID: "track_package_modal",
		Title:         "Track Package",
		Icon:          &models.Icon{Name: "shippingbox"},
		Sections: []models.RenderedSection{{
			ID:     "details",
			Title:  "Shipment",
			Layout: models.LayoutVertical,
			Fields: []models.RenderedField{
				{ID: "number", Label: "Tracking Number", Type: models.FieldText, Value: "1Z999AA10123456784"},
				{ID: "status", Label: "Status", Type: models.FieldStatusBadge, Value: "delivered", Color: "green"},
				{ID: "carrier", Label: "Carrier", Type: models.FieldBadge, Value: "UPS", Copyable: true},
				{ID: "site", Label: "Carrier Site", Type: models.FieldLink, URL: "https://ups.example.com"},
			},
		}},
		PrimaryButton: &models.RenderedButton{
			Title:  "Track",
			Style:  models.StylePrimary,
			Action: models.ButtonAction{Type: models.ActionOpenURL, ContextKey: "trackingUrl"},
		},
	}

	out := RenderPlanText(plan)

	assert.Contains(t, out, "=== Track Package ===")
	assert.Contains(t, out, "icon: shippingbox")
	assert.Contains(t, out, "[details] Shipment (vertical)")
	assert.Contains(t, out, "Tracking Number: 1Z999AA10123456784")
	assert.Contains(t, out, "Status: delivered [green]")
	assert.Contains(t, out, "Carrier: UPS (copyable)")
	assert.Contains(t, out, "Carrier Site -> https://ups.example.com")
	assert.Contains(t, out, "(primary) Track -> open_url")
}

func TestRenderPlanTextFallback(t *testing.T) {
	plan := &models.RenderPlan{
		Fallback: &models.FallbackNotice{
			ActionID: "warp_drive",
			Message:  "This action isn't available in this version yet.",
		},
	}

	out := RenderPlanText(plan)
	assert.Equal(t, "[notice] This action isn't available in this version yet. (action: warp_drive)\n", out)
}
