// Package registry syncs the published action catalog from the backend
// publishing service into the local store. The catalog is append-mostly: a
// sync that drops a previously imported id without superseding it is
// rejected as a breaking change.
package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/cardpilot/cardpilot/internal/catalog"
	"github.com/cardpilot/cardpilot/pkg/models"
)

// Client talks to the catalog publishing service.
type Client struct {
	db         *sql.DB
	baseURL    string
	httpClient *http.Client
}

// SyncStatus is the bookkeeping row for the last catalog sync.
type SyncStatus struct {
	LastSync     time.Time
	TotalActions int
	Status       string
	Error        string
}

// NewClient creates a sync client. When token is non-empty, requests carry
// it as an OAuth2 bearer credential.
func NewClient(db *sql.DB, baseURL, token string) *Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), src)
		httpClient.Timeout = 30 * time.Second
	}
	return &Client{
		db:         db,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SyncCatalog fetches the published definitions and imports them. The
// snapshot is validated with the same rules as a file load (duplicate ids
// are fatal) before anything is written.
func (c *Client) SyncCatalog(ctx context.Context) (*catalog.Catalog, error) {
	c.updateSyncStatus("syncing", "", 0)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/actions", nil)
	if err != nil {
		c.updateSyncStatus("failed", err.Error(), 0)
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.updateSyncStatus("failed", err.Error(), 0)
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errMsg := fmt.Sprintf("publishing service returned status %d", resp.StatusCode)
		c.updateSyncStatus("failed", errMsg, 0)
		return nil, fmt.Errorf("%s", errMsg)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.updateSyncStatus("failed", err.Error(), 0)
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}

	var doc models.ActionCatalogDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		c.updateSyncStatus("failed", err.Error(), 0)
		return nil, fmt.Errorf("failed to parse catalog response: %w", err)
	}

	// Config consistency is a bundle-time concern; the sync validates the
	// catalog document itself.
	cat, err := catalog.Load(&doc, nil)
	if err != nil {
		c.updateSyncStatus("failed", err.Error(), 0)
		return nil, fmt.Errorf("published catalog is invalid: %w", err)
	}

	if err := catalog.NewImporter(c.db).ImportCatalog(cat); err != nil {
		c.updateSyncStatus("failed", err.Error(), 0)
		return nil, fmt.Errorf("failed to import catalog: %w", err)
	}

	c.updateSyncStatus("success", "", cat.Len())
	return cat, nil
}

func (c *Client) updateSyncStatus(status, errorMsg string, total int) {
	c.db.Exec(`
		UPDATE catalog_sync
		SET sync_status = ?,
			sync_error = ?,
			total_actions = ?,
			last_sync = strftime('%s', 'now'),
			updated_at = strftime('%s', 'now')
		WHERE id = 1
	`, status, errorMsg, total)
}

// Status returns the last sync bookkeeping.
func (c *Client) Status() (*SyncStatus, error) {
	var lastSync sql.NullInt64
	var total int
	var statusStr, errorStr string

	err := c.db.QueryRow(`
		SELECT last_sync, COALESCE(total_actions, 0),
		       COALESCE(sync_status, 'never'), COALESCE(sync_error, '')
		FROM catalog_sync WHERE id = 1
	`).Scan(&lastSync, &total, &statusStr, &errorStr)
	if err == sql.ErrNoRows {
		return &SyncStatus{Status: "never"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync status: %w", err)
	}

	status := &SyncStatus{
		TotalActions: total,
		Status:       statusStr,
		Error:        errorStr,
	}
	if lastSync.Valid && lastSync.Int64 > 0 {
		status.LastSync = time.Unix(lastSync.Int64, 0)
	}
	return status, nil
}
