package models

// ImageState is the observable lifecycle of an image field.
type ImageState string

const (
	ImageLoading ImageState = "loading"
	ImageLoaded  ImageState = "loaded"
	ImageFailed  ImageState = "failed"
)

// RenderedField is one resolved field of a render plan. Value holds the
// display string for textual types; URL is set for link and image fields.
type RenderedField struct {
	ID         string        `json:"id"`
	Label      string        `json:"label,omitempty"`
	Type       FieldType     `json:"type"`
	Value      string        `json:"value,omitempty"`
	Color      string        `json:"color,omitempty"`
	Copyable   bool          `json:"copyable,omitempty"`
	Emphasis   bool          `json:"emphasis,omitempty"`
	URL        string        `json:"url,omitempty"`
	ImageState ImageState    `json:"image_state,omitempty"`
	Action     *ButtonAction `json:"action,omitempty"`
}

// RenderedSection is a section with its unresolvable fields already omitted.
type RenderedSection struct {
	ID         string            `json:"id"`
	Title      string            `json:"title,omitempty"`
	Layout     SectionLayout     `json:"layout"`
	Background SectionBackground `json:"background,omitempty"`
	Fields     []RenderedField   `json:"fields"`
}

// RenderedButton is a modal-level button of a render plan.
type RenderedButton struct {
	Title  string       `json:"title"`
	Style  ButtonStyle  `json:"style"`
	Action ButtonAction `json:"action"`
}

// FallbackNotice is the lightweight, non-blocking substitute presented when
// no modal configuration is registered for a resolved action.
type FallbackNotice struct {
	ActionID string `json:"action_id"`
	Message  string `json:"message"`
}

// RenderPlan is the deterministic output of resolving a modal configuration
// against one Action Context. Clients interpret the plan with their own
// rendering toolkit; the plan carries no per-action bespoke logic.
type RenderPlan struct {
	ModalConfigID   string            `json:"modal_config_id,omitempty"`
	Title           string            `json:"title,omitempty"`
	Icon            *Icon             `json:"icon,omitempty"`
	Layout          string            `json:"layout,omitempty"`
	Sections        []RenderedSection `json:"sections,omitempty"`
	PrimaryButton   *RenderedButton   `json:"primary_button,omitempty"`
	SecondaryButton *RenderedButton   `json:"secondary_button,omitempty"`
	Fallback        *FallbackNotice   `json:"fallback,omitempty"`
}

// Clone returns a deep copy of the plan. Field slices are copied so a
// returned plan never aliases mutable state; ButtonAction pointers are
// shared, they come from the immutable configuration.
func (p *RenderPlan) Clone() *RenderPlan {
	if p == nil {
		return nil
	}
	out := *p
	if p.Sections != nil {
		out.Sections = make([]RenderedSection, len(p.Sections))
		for i, sec := range p.Sections {
			out.Sections[i] = sec
			out.Sections[i].Fields = make([]RenderedField, len(sec.Fields))
			copy(out.Sections[i].Fields, sec.Fields)
		}
	}
	if p.Icon != nil {
		icon := *p.Icon
		out.Icon = &icon
	}
	if p.PrimaryButton != nil {
		btn := *p.PrimaryButton
		out.PrimaryButton = &btn
	}
	if p.SecondaryButton != nil {
		btn := *p.SecondaryButton
		out.SecondaryButton = &btn
	}
	if p.Fallback != nil {
		notice := *p.Fallback
		out.Fallback = &notice
	}
	return &out
}

// BannerState reflects a service call invocation inside the modal body.
type BannerState string

const (
	BannerLoading BannerState = "loading"
	BannerSuccess BannerState = "success"
	BannerError   BannerState = "error"
)

// Banner is the in-modal reflection of a submit action's progress.
type Banner struct {
	State   BannerState       `json:"state"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceRequest is the transport-agnostic request built from a
// ServiceCallSpec's request mapping.
type ServiceRequest struct {
	Endpoint string            `json:"endpoint"`
	Method   string            `json:"method"`
	Params   map[string]string `json:"params"`
}

// ServiceResponse is what the transport collaborator hands back.
type ServiceResponse struct {
	StatusCode int    `json:"status_code"`
	Body       []byte `json:"body,omitempty"`
}
