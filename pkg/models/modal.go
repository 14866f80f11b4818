package models

// FieldType is the closed set of field renderings the engine understands.
type FieldType string

const (
	FieldText          FieldType = "text"
	FieldMultilineText FieldType = "multilineText"
	FieldBadge         FieldType = "badge"
	FieldStatusBadge   FieldType = "statusBadge"
	FieldDate          FieldType = "date"
	FieldDateTime      FieldType = "dateTime"
	FieldCurrency      FieldType = "currency"
	FieldLink          FieldType = "link"
	FieldButton        FieldType = "button"
	FieldImage         FieldType = "image"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldMultilineText, FieldBadge, FieldStatusBadge,
		FieldDate, FieldDateTime, FieldCurrency, FieldLink, FieldButton, FieldImage:
		return true
	}
	return false
}

// SectionLayout controls how fields within a section are arranged.
type SectionLayout string

const (
	LayoutVertical   SectionLayout = "vertical"
	LayoutHorizontal SectionLayout = "horizontal"
	LayoutGrid       SectionLayout = "grid"
)

// Valid reports whether l is a known section layout.
func (l SectionLayout) Valid() bool {
	switch l {
	case LayoutVertical, LayoutHorizontal, LayoutGrid:
		return true
	}
	return false
}

// SectionBackground names the backing treatment of a section.
type SectionBackground string

const (
	BackgroundNone  SectionBackground = "none"
	BackgroundCard  SectionBackground = "card"
	BackgroundGlass SectionBackground = "glass"
)

// Valid reports whether b is a known section background.
func (b SectionBackground) Valid() bool {
	switch b {
	case BackgroundNone, BackgroundCard, BackgroundGlass, "":
		return true
	}
	return false
}

// DateStyle selects how date and dateTime fields are formatted.
type DateStyle string

const (
	DateStyleRelative DateStyle = "relative"
	DateStyleShort    DateStyle = "short"
	DateStyleFull     DateStyle = "full"
)

// Valid reports whether s is a known date style. Empty means the default.
func (s DateStyle) Valid() bool {
	switch s {
	case DateStyleRelative, DateStyleShort, DateStyleFull, "":
		return true
	}
	return false
}

// ButtonStyle names the visual treatment of a button.
type ButtonStyle string

const (
	StylePrimary     ButtonStyle = "primary"
	StyleSecondary   ButtonStyle = "secondary"
	StyleDestructive ButtonStyle = "destructive"
	StyleLink        ButtonStyle = "link"
)

// Valid reports whether s is a known button style.
func (s ButtonStyle) Valid() bool {
	switch s {
	case StylePrimary, StyleSecondary, StyleDestructive, StyleLink:
		return true
	}
	return false
}

// ButtonActionType tags the ButtonAction variant.
type ButtonActionType string

const (
	ActionOpenURL ButtonActionType = "open_url"
	ActionCopy    ButtonActionType = "copy"
	ActionSubmit  ButtonActionType = "submit"
	ActionShare   ButtonActionType = "share"
	ActionDismiss ButtonActionType = "dismiss"
)

// ButtonAction is a tagged variant; which optional fields must be present
// depends on Type. open_url, copy and share resolve ContextKey; submit
// carries a ServiceCall; dismiss carries nothing.
type ButtonAction struct {
	Type        ButtonActionType `yaml:"type" json:"type"`
	ContextKey  string           `yaml:"context_key,omitempty" json:"context_key,omitempty"`
	ServiceCall *ServiceCallSpec `yaml:"service_call,omitempty" json:"service_call,omitempty"`
}

// ServiceCallSpec describes a backend-bound submit action. The endpoint is
// an opaque string resolved by the host application's transport.
type ServiceCallSpec struct {
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	Method   string `yaml:"method" json:"method"`
	// RequestMapping maps outgoing parameter names to context keys.
	RequestMapping map[string]string `yaml:"request_mapping,omitempty" json:"request_mapping,omitempty"`
	// ResponseMapping maps context-extension keys to dotted response paths.
	ResponseMapping map[string]string `yaml:"response_mapping,omitempty" json:"response_mapping,omitempty"`
}

// CurrencyStyle configures currency fields.
type CurrencyStyle struct {
	Code     string `yaml:"code" json:"code"`
	Emphasis bool   `yaml:"emphasis,omitempty" json:"emphasis,omitempty"`
}

// Icon is a symbolic icon reference; rendering is the client toolkit's job.
type Icon struct {
	Name  string `yaml:"name" json:"name"`
	Size  int    `yaml:"size,omitempty" json:"size,omitempty"`
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// FieldConfig declares one field of a modal section. ContextKey names the
// lookup into the Action Context and is not guaranteed present at render
// time.
type FieldConfig struct {
	ID            string            `yaml:"id" json:"id"`
	Label         string            `yaml:"label,omitempty" json:"label,omitempty"`
	Type          FieldType         `yaml:"type" json:"type"`
	ContextKey    string            `yaml:"context_key,omitempty" json:"context_key,omitempty"`
	Copyable      bool              `yaml:"copyable,omitempty" json:"copyable,omitempty"`
	ColorMapping  map[string]string `yaml:"color_mapping,omitempty" json:"color_mapping,omitempty"`
	DateStyle     DateStyle         `yaml:"date_style,omitempty" json:"date_style,omitempty"`
	CurrencyStyle *CurrencyStyle    `yaml:"currency_style,omitempty" json:"currency_style,omitempty"`
	// Action is set for button fields only.
	Action *ButtonAction `yaml:"action,omitempty" json:"action,omitempty"`
}

// Section is an ordered group of fields with a layout and background.
type Section struct {
	ID         string            `yaml:"id" json:"id"`
	Title      string            `yaml:"title,omitempty" json:"title,omitempty"`
	Layout     SectionLayout     `yaml:"layout" json:"layout"`
	Background SectionBackground `yaml:"background,omitempty" json:"background,omitempty"`
	Fields     []FieldConfig     `yaml:"fields" json:"fields"`
}

// ButtonConfig declares a modal-level button.
type ButtonConfig struct {
	Title  string       `yaml:"title" json:"title"`
	Style  ButtonStyle  `yaml:"style" json:"style"`
	Action ButtonAction `yaml:"action" json:"action"`
}

// ModalConfig is the declarative description of one interactive flow,
// keyed by the modal_config_id referenced from the action catalog.
type ModalConfig struct {
	ID              string        `yaml:"id" json:"id"`
	Title           string        `yaml:"title" json:"title"`
	Icon            *Icon         `yaml:"icon,omitempty" json:"icon,omitempty"`
	Layout          string        `yaml:"layout,omitempty" json:"layout,omitempty"`
	Sections        []Section     `yaml:"sections" json:"sections"`
	PrimaryButton   *ButtonConfig `yaml:"primary_button,omitempty" json:"primary_button,omitempty"`
	SecondaryButton *ButtonConfig `yaml:"secondary_button,omitempty" json:"secondary_button,omitempty"`
}

// ContextKeys returns the set of context keys referenced by the
// configuration's fields and buttons, including service-call request
// mappings. Used for the catalog self-consistency check.
func (c *ModalConfig) ContextKeys() map[string]bool {
	keys := make(map[string]bool)
	addAction := func(a *ButtonAction) {
		if a == nil {
			return
		}
		if a.ContextKey != "" {
			keys[a.ContextKey] = true
		}
		if a.ServiceCall != nil {
			for _, k := range a.ServiceCall.RequestMapping {
				keys[k] = true
			}
		}
	}
	for _, sec := range c.Sections {
		for _, f := range sec.Fields {
			if f.ContextKey != "" {
				keys[f.ContextKey] = true
			}
			addAction(f.Action)
		}
	}
	if c.PrimaryButton != nil {
		addAction(&c.PrimaryButton.Action)
	}
	if c.SecondaryButton != nil {
		addAction(&c.SecondaryButton.Action)
	}
	return keys
}
