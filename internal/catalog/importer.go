package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cardpilot/cardpilot/internal/interfaces"
	"github.com/cardpilot/cardpilot/pkg/models"
)

// Importer persists catalog snapshots and modal configurations into the
// local store for the offline tooling.
type Importer struct {
	db *sql.DB
}

// NewImporter creates an importer over an open store connection.
func NewImporter(db *sql.DB) *Importer {
	return &Importer{db: db}
}

// ImportCatalog writes the catalog into the store. The catalog is
// append-mostly: an id that was previously imported may only disappear when
// some surviving definition names it in superseded_by. Anything else is a
// breaking change and the import is rejected.
func (im *Importer) ImportCatalog(c *Catalog) error {
	superseded := make(map[string]bool)
	for _, id := range c.ids {
		if def := c.byID[id]; def.SupersededBy != "" {
			superseded[id] = true
		}
	}

	rows, err := im.db.Query("SELECT id, superseded_by FROM actions")
	if err != nil {
		return fmt.Errorf("failed to read existing actions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, supersededBy string
		if err := rows.Scan(&id, &supersededBy); err != nil {
			return fmt.Errorf("failed to scan action row: %w", err)
		}
		if _, stillPresent := c.byID[id]; !stillPresent && supersededBy == "" {
			return fmt.Errorf("action %s was removed from the catalog without a superseding id", id)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate actions: %w", err)
	}

	tx, err := im.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, id := range c.ids {
		def := c.byID[id]
		jsonContent, err := json.Marshal(def)
		if err != nil {
			return fmt.Errorf("failed to marshal action %s: %w", id, err)
		}
		_, err = tx.Exec(`
			INSERT INTO actions (id, category, required_keys, optional_keys, modal_config_id, superseded_by, json_content)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				category = excluded.category,
				required_keys = excluded.required_keys,
				optional_keys = excluded.optional_keys,
				modal_config_id = excluded.modal_config_id,
				superseded_by = excluded.superseded_by,
				json_content = excluded.json_content,
				updated_at = strftime('%s', 'now')
		`,
			def.ID, def.Category,
			strings.Join(def.RequiredContextKeys, ","),
			strings.Join(def.OptionalContextKeys, ","),
			def.ModalConfigID, def.SupersededBy,
			string(jsonContent),
		)
		if err != nil {
			return fmt.Errorf("failed to insert action %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// ImportConfigs writes the validated configuration bundle into the store.
func (im *Importer) ImportConfigs(configs interfaces.ConfigSource) error {
	tx, err := im.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, id := range configs.IDs() {
		cfg, _ := configs.Load(id)
		jsonContent, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal modal config %s: %w", id, err)
		}
		_, err = tx.Exec(`
			INSERT INTO modal_configs (id, title, json_content)
			VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				json_content = excluded.json_content,
				updated_at = strftime('%s', 'now')
		`, cfg.ID, cfg.Title, string(jsonContent))
		if err != nil {
			return fmt.Errorf("failed to insert modal config %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// StoredAction reads one imported action definition back from the store.
func (im *Importer) StoredAction(actionID string) (*models.ActionDefinition, error) {
	var jsonContent string
	err := im.db.QueryRow("SELECT json_content FROM actions WHERE id = ?", actionID).Scan(&jsonContent)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("action not found: %s", actionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query action: %w", err)
	}
	var def models.ActionDefinition
	if err := json.Unmarshal([]byte(jsonContent), &def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action: %w", err)
	}
	return &def, nil
}
