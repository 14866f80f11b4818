package models

// ActionDefinition declares one action the backend may emit on a card.
// Definitions are immutable once published; an id is never reused for a
// different semantic meaning.
type ActionDefinition struct {
	ID                  string   `yaml:"id" json:"id"`
	Category            string   `yaml:"category" json:"category"`
	RequiredContextKeys []string `yaml:"required_context_keys" json:"required_context_keys"`
	OptionalContextKeys []string `yaml:"optional_context_keys,omitempty" json:"optional_context_keys,omitempty"`
	ModalConfigID       string   `yaml:"modal_config_id" json:"modal_config_id"`
	SupersededBy        string   `yaml:"superseded_by,omitempty" json:"superseded_by,omitempty"`
}

// ActionCatalogDoc is the on-disk shape of the published action catalog.
type ActionCatalogDoc struct {
	SchemaVersion string             `yaml:"schema_version" json:"schema_version"`
	Actions       []ActionDefinition `yaml:"actions" json:"actions"`
}

// ClientMapping is the per-client coverage artifact extracted from one
// client surface: the set of action ids that client has wired to a flow.
type ClientMapping struct {
	Client        string   `yaml:"client" json:"client"`
	MappedActions []string `yaml:"mapped_actions" json:"mapped_actions"`
}
