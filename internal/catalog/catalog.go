// Package catalog holds the master registry of every action the backend
// can emit. The catalog is the single source of truth: it is validated and
// frozen at load time, and loading fails outright on duplicate ids or on an
// action whose declared keys are not covered by its modal configuration.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cardpilot/cardpilot/internal/interfaces"
	"github.com/cardpilot/cardpilot/pkg/models"
)

// Catalog is the read-only action registry.
type Catalog struct {
	byID map[string]*models.ActionDefinition
	ids  []string
}

// Load validates a catalog document against the configuration bundle.
// Duplicate ids are fatal. For every action whose modal configuration
// resolves in this bundle, required_context_keys must be a subset of the
// keys the configuration references; a violation is fatal. Actions whose
// configuration is absent from the bundle are allowed: those degrade to the
// engine's logged fallback at runtime.
func Load(doc *models.ActionCatalogDoc, configs interfaces.ConfigSource) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]*models.ActionDefinition, len(doc.Actions))}

	for i := range doc.Actions {
		def := &doc.Actions[i]
		if def.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: action id must not be empty", i)
		}
		if _, dup := c.byID[def.ID]; dup {
			return nil, fmt.Errorf("duplicate action id: %s", def.ID)
		}
		if def.ModalConfigID == "" {
			return nil, fmt.Errorf("action %s: modal_config_id must not be empty", def.ID)
		}

		if configs != nil {
			if cfg, ok := configs.Load(def.ModalConfigID); ok {
				referenced := cfg.ContextKeys()
				for _, key := range def.RequiredContextKeys {
					if !referenced[key] {
						return nil, fmt.Errorf(
							"action %s: required context key %q is not referenced by modal config %s",
							def.ID, key, def.ModalConfigID)
					}
				}
			}
		}

		c.byID[def.ID] = def
		c.ids = append(c.ids, def.ID)
	}

	sort.Strings(c.ids)
	return c, nil
}

// LoadFile reads a catalog YAML document and validates it against configs.
func LoadFile(path string, configs interfaces.ConfigSource) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var doc models.ActionCatalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}
	return Load(&doc, configs)
}

// Lookup returns the definition for an action id, if cataloged. Ids are
// case-sensitive.
func (c *Catalog) Lookup(actionID string) (*models.ActionDefinition, bool) {
	def, ok := c.byID[actionID]
	return def, ok
}

// AllIDs returns every cataloged action id, sorted.
func (c *Catalog) AllIDs() []string {
	ids := make([]string, len(c.ids))
	copy(ids, c.ids)
	return ids
}

// Len returns the number of cataloged actions.
func (c *Catalog) Len() int { return len(c.ids) }

var _ interfaces.CatalogSource = (*Catalog)(nil)
