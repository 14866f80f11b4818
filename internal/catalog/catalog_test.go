package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardpilot/cardpilot/internal/mocks"
	"github.com/cardpilot/cardpilot/pkg/models"
)

func trackConfig() *models.ModalConfig {
	return &models.ModalConfig{
		ID:    "track_package_modal",
		Title: "Track Package",
		Sections: []models.Section{{
			ID:     "details",
			Layout: models.LayoutVertical,
			Fields: []models.FieldConfig{
				{ID: "tracking_number", Type: models.FieldBadge, ContextKey: "trackingNumber"},
				{ID: "status", Type: models.FieldStatusBadge, ContextKey: "deliveryStatus"},
			},
		}},
		PrimaryButton: &models.ButtonConfig{
			Title: "Track", Style: models.StylePrimary,
			Action: models.ButtonAction{Type: models.ActionOpenURL, ContextKey: "trackingUrl"},
		},
	}
}

func configSource() *mocks.MockConfigSource {
	return &mocks.MockConfigSource{Configs: map[string]*models.ModalConfig{
		"track_package_modal": trackConfig(),
	}}
}

func TestLoadAndLookup(t *testing.T) {
	doc := &models.ActionCatalogDoc{
		SchemaVersion: "1.0.0",
		Actions: []models.ActionDefinition{
			{
				ID:                  "track_package",
				Category:            "shipping",
				RequiredContextKeys: []string{"trackingNumber"},
				OptionalContextKeys: []string{"deliveryStatus"},
				ModalConfigID:       "track_package_modal",
			},
			{
				ID:            "accept_offer",
				Category:      "commerce",
				ModalConfigID: "accept_offer_modal",
			},
		},
	}

	cat, err := Load(doc, configSource())
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())

	def, ok := cat.Lookup("track_package")
	require.True(t, ok)
	assert.Equal(t, "track_package_modal", def.ModalConfigID)

	// Ids are case-sensitive.
	_, ok = cat.Lookup("Track_Package")
	assert.False(t, ok)

	assert.Equal(t, []string{"accept_offer", "track_package"}, cat.AllIDs())
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	doc := &models.ActionCatalogDoc{
		Actions: []models.ActionDefinition{
			{ID: "track_package", ModalConfigID: "track_package_modal"},
			{ID: "track_package", ModalConfigID: "track_package_modal"},
		},
	}
	_, err := Load(doc, configSource())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate action id")
}

func TestLoadRejectsUncoveredRequiredKey(t *testing.T) {
	doc := &models.ActionCatalogDoc{
		Actions: []models.ActionDefinition{{
			ID:                  "track_package",
			RequiredContextKeys: []string{"trackingNumber", "signature"},
			ModalConfigID:       "track_package_modal",
		}},
	}
	_, err := Load(doc, configSource())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
	assert.Contains(t, err.Error(), "track_package_modal")
}

func TestLoadAllowsUnresolvedConfigInBundle(t *testing.T) {
	// An action whose configuration is not in this bundle degrades to the
	// engine's logged fallback; it is not a load failure.
	doc := &models.ActionCatalogDoc{
		Actions: []models.ActionDefinition{{
			ID:                  "book_appointment",
			RequiredContextKeys: []string{"slotId"},
			ModalConfigID:       "book_appointment_modal",
		}},
	}
	cat, err := Load(doc, configSource())
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	catalogYAML := `
schema_version: "1.0.0"
actions:
  - id: track_package
    category: shipping
    required_context_keys: [trackingNumber]
    modal_config_id: track_package_modal
`
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0644))

	cat, err := LoadFile(path, configSource())
	require.NoError(t, err)
	assert.Equal(t, []string{"track_package"}, cat.AllIDs())
}
