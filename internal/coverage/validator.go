// Package coverage cross-checks every client surface against the master
// action catalog. It runs offline, reads only published artifacts and
// recomputes its report from scratch on every run; an action mapped on two
// of three clients is still a coverage failure.
package coverage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/cardpilot/cardpilot/pkg/models"
)

// Report is the derived coverage artifact.
type Report struct {
	TotalCatalogActions int                 `json:"total_catalog_actions"`
	PerClientMapped     map[string][]string `json:"per_client_mapped"`
	PerClientMissing    map[string][]string `json:"per_client_missing"`
}

// Complete reports whether every client covers the full catalog.
func (r *Report) Complete() bool {
	for _, missing := range r.PerClientMissing {
		if len(missing) > 0 {
			return false
		}
	}
	return true
}

// MissingTotal counts missing mappings across all clients.
func (r *Report) MissingTotal() int {
	total := 0
	for _, missing := range r.PerClientMissing {
		total += len(missing)
	}
	return total
}

// Validate diffs each client's mapped set against the catalog ids. Clients
// are processed in parallel; the inputs are read-only so no coordination
// beyond result collection is needed.
func Validate(ctx context.Context, catalogIDs []string, clients map[string][]string) (*Report, error) {
	report := &Report{
		TotalCatalogActions: len(catalogIDs),
		PerClientMapped:     make(map[string][]string, len(clients)),
		PerClientMissing:    make(map[string][]string, len(clients)),
	}

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)

	for name, mapped := range clients {
		name, mapped := name, mapped
		g.Go(func() error {
			mappedSet := make(map[string]bool, len(mapped))
			for _, id := range mapped {
				mappedSet[id] = true
			}

			var missing, covered []string
			for _, id := range catalogIDs {
				if mappedSet[id] {
					covered = append(covered, id)
				} else {
					missing = append(missing, id)
				}
			}
			sort.Strings(missing)
			sort.Strings(covered)

			mu.Lock()
			report.PerClientMapped[name] = covered
			report.PerClientMissing[name] = missing
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

// LoadClientMapping reads one per-client mapping artifact.
func LoadClientMapping(path string) (*models.ClientMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client mapping: %w", err)
	}
	var mapping models.ClientMapping
	if err := yaml.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse client mapping YAML: %w", err)
	}
	if mapping.Client == "" {
		return nil, fmt.Errorf("%s: client name must not be empty", filepath.Base(path))
	}
	return &mapping, nil
}

// LoadClientDir reads every mapping artifact in dir, keyed by client name.
func LoadClientDir(dir string) (map[string][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping directory: %w", err)
	}

	clients := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		mapping, err := LoadClientMapping(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := clients[mapping.Client]; dup {
			return nil, fmt.Errorf("duplicate client mapping: %s", mapping.Client)
		}
		clients[mapping.Client] = mapping.MappedActions
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("no client mapping artifacts found in %s", dir)
	}
	return clients, nil
}
