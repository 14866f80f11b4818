package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardpilot/cardpilot/internal/actionctx"
	"github.com/cardpilot/cardpilot/internal/interfaces"
	"github.com/cardpilot/cardpilot/internal/mocks"
	"github.com/cardpilot/cardpilot/pkg/models"
)

func fieldEngine(clock interfaces.Clock) *Engine {
	return New(Deps{
		Catalog: &mocks.MockCatalogSource{},
		Configs: &mocks.MockConfigSource{},
		Clock:   clock,
		Diag:    &mocks.MockDiagSink{},
	})
}

func resolveOne(t *testing.T, e *Engine, f models.FieldConfig, payload map[string]any) (models.RenderedField, bool) {
	t.Helper()
	return e.resolveField(f, actionctx.New(payload, nil))
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		code   string
		want   string
	}{
		{"usd", 42.5, "USD", "$42.50"},
		{"usd grouped", 1234567.89, "USD", "$1,234,567.89"},
		{"eur", 99.99, "EUR", "€99.99"},
		{"gbp negative", -12.3, "GBP", "-£12.30"},
		{"jpy no decimals", 1500, "JPY", "¥1,500"},
		{"unknown code", 10, "CHF", "CHF 10.00"},
		{"no code", 7.25, "", "7.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCurrency(tt.amount, tt.code))
		})
	}
}

func TestRelativeDate(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", now.Add(-30 * time.Second), "just now"},
		{"minutes ago", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"one hour ago", now.Add(-1 * time.Hour), "1 hour ago"},
		{"yesterday", now.Add(-30 * time.Hour), "yesterday"},
		{"days ago", now.Add(-72 * time.Hour), "3 days ago"},
		{"in minutes", now.Add(10 * time.Minute), "in 10 minutes"},
		{"tomorrow", now.Add(30 * time.Hour), "tomorrow"},
		{"in days", now.Add(96 * time.Hour), "in 4 days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relativeDate(now, tt.t))
		})
	}
}

func TestDateFieldStyles(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	e := fieldEngine(mocks.FixedClock{Time: now})
	when := time.Date(2025, 3, 8, 15, 30, 0, 0, time.UTC)

	short, ok := resolveOne(t, e, models.FieldConfig{
		ID: "d", Type: models.FieldDate, ContextKey: "when",
	}, map[string]any{"when": when})
	require.True(t, ok)
	assert.Equal(t, "Mar 8, 2025", short.Value)

	full, ok := resolveOne(t, e, models.FieldConfig{
		ID: "d", Type: models.FieldDate, ContextKey: "when", DateStyle: models.DateStyleFull,
	}, map[string]any{"when": when})
	require.True(t, ok)
	assert.Equal(t, "Saturday, March 8, 2025", full.Value)

	relative, ok := resolveOne(t, e, models.FieldConfig{
		ID: "d", Type: models.FieldDate, ContextKey: "when", DateStyle: models.DateStyleRelative,
	}, map[string]any{"when": when})
	require.True(t, ok)
	assert.Equal(t, "yesterday", relative.Value)

	withTime, ok := resolveOne(t, e, models.FieldConfig{
		ID: "d", Type: models.FieldDateTime, ContextKey: "when",
	}, map[string]any{"when": when})
	require.True(t, ok)
	assert.Equal(t, "Mar 8, 2025 at 3:30 PM", withTime.Value)

	// Relative dateTime never appends the clock time.
	relTime, ok := resolveOne(t, e, models.FieldConfig{
		ID: "d", Type: models.FieldDateTime, ContextKey: "when", DateStyle: models.DateStyleRelative,
	}, map[string]any{"when": when})
	require.True(t, ok)
	assert.Equal(t, "yesterday", relTime.Value)
}

func TestCurrencyFieldEmphasis(t *testing.T) {
	e := fieldEngine(nil)

	rf, ok := resolveOne(t, e, models.FieldConfig{
		ID: "amount", Type: models.FieldCurrency, ContextKey: "total",
		CurrencyStyle: &models.CurrencyStyle{Code: "USD", Emphasis: true},
	}, map[string]any{"total": 129.99})
	require.True(t, ok)
	assert.Equal(t, "$129.99", rf.Value)
	assert.True(t, rf.Emphasis)
}

func TestLinkFieldOmittedWhenURLAbsent(t *testing.T) {
	e := fieldEngine(nil)
	cfg := models.FieldConfig{ID: "site", Label: "Visit Site", Type: models.FieldLink, ContextKey: "siteUrl"}

	_, ok := resolveOne(t, e, cfg, map[string]any{"siteUrl": "not a url"})
	assert.False(t, ok)

	rf, ok := resolveOne(t, e, cfg, map[string]any{"siteUrl": "https://example.com/help"})
	require.True(t, ok)
	assert.Equal(t, "https://example.com/help", rf.URL)
	assert.Equal(t, "Visit Site", rf.Value)
}

func TestImageFieldStartsLoading(t *testing.T) {
	e := fieldEngine(nil)
	cfg := models.FieldConfig{ID: "photo", Type: models.FieldImage, ContextKey: "photoUrl"}

	_, ok := resolveOne(t, e, cfg, nil)
	assert.False(t, ok)

	rf, ok := resolveOne(t, e, cfg, map[string]any{"photoUrl": "https://cdn.example.com/p.png"})
	require.True(t, ok)
	assert.Equal(t, models.ImageLoading, rf.ImageState)
}

func TestButtonFieldCarriesAction(t *testing.T) {
	e := fieldEngine(nil)
	action := &models.ButtonAction{Type: models.ActionCopy, ContextKey: "code"}

	rf, ok := resolveOne(t, e, models.FieldConfig{
		ID: "copy_code", Type: models.FieldButton, Action: action,
	}, nil)
	require.True(t, ok)
	assert.Equal(t, action, rf.Action)
}

func TestResolveKeepsEmptySections(t *testing.T) {
	e := fieldEngine(nil)
	plan := e.Resolve(&models.ModalConfig{
		ID: "m", Title: "Empty",
		Sections: []models.Section{{
			ID: "s", Layout: models.LayoutVertical,
			Fields: []models.FieldConfig{
				{ID: "gone", Type: models.FieldText, ContextKey: "missing"},
			},
		}},
	}, actionctx.New(nil, nil))

	require.Len(t, plan.Sections, 1)
	assert.Empty(t, plan.Sections[0].Fields)
	assert.NotNil(t, plan.Sections[0].Fields)
}
