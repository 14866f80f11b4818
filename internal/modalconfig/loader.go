// Package modalconfig loads and validates modal configuration documents.
// A malformed configuration is rejected at load time with an error naming
// the offending field; nothing malformed ever reaches render time.
package modalconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cardpilot/cardpilot/pkg/models"
)

// ConfigError describes a load-time validation failure. FieldID is empty
// when the problem is at the configuration or section level.
type ConfigError struct {
	ConfigID string
	FieldID  string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.FieldID != "" {
		return fmt.Sprintf("modal config %s: field %s: %s", e.ConfigID, e.FieldID, e.Reason)
	}
	return fmt.Sprintf("modal config %s: %s", e.ConfigID, e.Reason)
}

// wellFormedKey rejects empty keys and path-traversal characters in dotted
// context keys.
func wellFormedKey(key string) bool {
	if key == "" {
		return false
	}
	if strings.Contains(key, "..") || strings.ContainsAny(key, "/\\ \t") {
		return false
	}
	if strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
		return false
	}
	return true
}

func validateAction(cfgID, fieldID string, a *models.ButtonAction) error {
	fail := func(reason string) error {
		return &ConfigError{ConfigID: cfgID, FieldID: fieldID, Reason: reason}
	}
	switch a.Type {
	case models.ActionOpenURL, models.ActionCopy, models.ActionShare:
		if !wellFormedKey(a.ContextKey) {
			return fail(fmt.Sprintf("%s action requires a well-formed context_key", a.Type))
		}
	case models.ActionSubmit:
		if a.ServiceCall == nil {
			return fail("submit action requires a service_call")
		}
		if a.ServiceCall.Endpoint == "" {
			return fail("service_call endpoint must not be empty")
		}
		if a.ServiceCall.Method == "" {
			return fail("service_call method must not be empty")
		}
		for param, key := range a.ServiceCall.RequestMapping {
			if param == "" || !wellFormedKey(key) {
				return fail(fmt.Sprintf("request_mapping entry %q -> %q is malformed", param, key))
			}
		}
		for key, path := range a.ServiceCall.ResponseMapping {
			if path == "" || !wellFormedKey(key) {
				return fail(fmt.Sprintf("response_mapping entry %q -> %q is malformed", key, path))
			}
		}
	case models.ActionDismiss:
		// Carries nothing.
	default:
		return fail(fmt.Sprintf("unknown button action type: %q", a.Type))
	}
	return nil
}

// Validate checks a modal configuration against the schema contract.
func Validate(cfg *models.ModalConfig) error {
	fail := func(fieldID, reason string) error {
		return &ConfigError{ConfigID: cfg.ID, FieldID: fieldID, Reason: reason}
	}

	if cfg.ID == "" {
		return fail("", "id must not be empty")
	}
	if len(cfg.Sections) == 0 {
		return fail("", "at least one section is required")
	}

	seenSections := make(map[string]bool)
	seenFields := make(map[string]bool)
	for _, sec := range cfg.Sections {
		if sec.ID == "" {
			return fail("", "section id must not be empty")
		}
		if seenSections[sec.ID] {
			return fail("", fmt.Sprintf("duplicate section id: %s", sec.ID))
		}
		seenSections[sec.ID] = true
		if !sec.Layout.Valid() {
			return fail("", fmt.Sprintf("section %s: unknown layout %q", sec.ID, sec.Layout))
		}
		if !sec.Background.Valid() {
			return fail("", fmt.Sprintf("section %s: unknown background %q", sec.ID, sec.Background))
		}

		for _, f := range sec.Fields {
			if f.ID == "" {
				return fail("", fmt.Sprintf("section %s: field id must not be empty", sec.ID))
			}
			if seenFields[f.ID] {
				return fail(f.ID, "duplicate field id")
			}
			seenFields[f.ID] = true
			if !f.Type.Valid() {
				return fail(f.ID, fmt.Sprintf("unknown field type: %q", f.Type))
			}
			if f.Type == models.FieldButton {
				if f.Action == nil {
					return fail(f.ID, "button field requires an action")
				}
				if err := validateAction(cfg.ID, f.ID, f.Action); err != nil {
					return err
				}
			} else if !wellFormedKey(f.ContextKey) {
				return fail(f.ID, fmt.Sprintf("context_key %q is not well-formed", f.ContextKey))
			}
			if f.ColorMapping != nil && len(f.ColorMapping) == 0 {
				return fail(f.ID, "color_mapping must not be empty when declared")
			}
			if !f.DateStyle.Valid() {
				return fail(f.ID, fmt.Sprintf("unknown date_style: %q", f.DateStyle))
			}
		}
	}

	for name, btn := range map[string]*models.ButtonConfig{
		"primary_button":   cfg.PrimaryButton,
		"secondary_button": cfg.SecondaryButton,
	} {
		if btn == nil {
			continue
		}
		if btn.Title == "" {
			return fail("", name+": title must not be empty")
		}
		if !btn.Style.Valid() {
			return fail("", fmt.Sprintf("%s: unknown style %q", name, btn.Style))
		}
		if err := validateAction(cfg.ID, name, &btn.Action); err != nil {
			return err
		}
	}

	return nil
}

// LoadFromFile reads and validates one modal configuration document.
func LoadFromFile(path string) (*models.ModalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read modal config: %w", err)
	}
	return Parse(data)
}

// Parse unmarshals and validates a modal configuration document.
func Parse(data []byte) (*models.ModalConfig, error) {
	var cfg models.ModalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse modal config YAML: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Store is the read-only registry of validated modal configurations a
// client bundle ships with.
type Store struct {
	mu   sync.RWMutex
	byID map[string]*models.ModalConfig
}

// NewStore creates an empty configuration store.
func NewStore() *Store {
	return &Store{byID: make(map[string]*models.ModalConfig)}
}

// Add validates cfg and registers it. Duplicate ids are rejected.
func (s *Store) Add(cfg *models.ModalConfig) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[cfg.ID]; exists {
		return &ConfigError{ConfigID: cfg.ID, Reason: "duplicate modal config id"}
	}
	s.byID[cfg.ID] = cfg
	return nil
}

// LoadDir loads every .yaml/.yml document in dir into the store.
func (s *Store) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read config directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		cfg, err := LoadFromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("%s: %w", entry.Name(), err)
		}
		if err := s.Add(cfg); err != nil {
			return fmt.Errorf("%s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Load returns the configuration registered under id, if any.
func (s *Store) Load(id string) (*models.ModalConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.byID[id]
	return cfg, ok
}

// IDs returns all registered configuration ids, sorted.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
