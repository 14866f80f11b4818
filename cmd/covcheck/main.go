// covcheck gates catalog changes: it fails (exit 1) when any client surface
// is missing a mapping for any cataloged action. No partial credit.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/cardpilot/cardpilot/internal/catalog"
	"github.com/cardpilot/cardpilot/internal/config"
	"github.com/cardpilot/cardpilot/internal/coverage"
	"github.com/cardpilot/cardpilot/internal/modalconfig"
)

var (
	configPath  string
	catalogPath string
	configDir   string
	mappingDir  string
	jsonOutput  bool
)

func init() {
	flag.StringVar(&configPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&catalogPath, "catalog", "", "Path to the action catalog YAML (overrides config)")
	flag.StringVar(&configDir, "configs", "", "Directory of modal configuration YAMLs (overrides config)")
	flag.StringVar(&mappingDir, "clients", "", "Directory of per-client mapping YAMLs (overrides config)")
	flag.BoolVar(&jsonOutput, "json", false, "Print a machine-readable report")
}

func main() {
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if catalogPath == "" {
		catalogPath = cfg.CatalogPath
	}
	if configDir == "" {
		configDir = cfg.ConfigDir
	}
	if mappingDir == "" {
		mappingDir = cfg.MappingDir
	}

	store := modalconfig.NewStore()
	if err := store.LoadDir(configDir); err != nil {
		log.Fatalf("Modal configurations: %v", err)
	}
	cat, err := catalog.LoadFile(catalogPath, store)
	if err != nil {
		log.Fatalf("Catalog: %v", err)
	}
	clients, err := coverage.LoadClientDir(mappingDir)
	if err != nil {
		log.Fatalf("Client mappings: %v", err)
	}

	report, err := coverage.Validate(context.Background(), cat.AllIDs(), clients)
	if err != nil {
		log.Fatalf("Validation: %v", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
	} else {
		printReport(report)
	}

	if !report.Complete() {
		os.Exit(1)
	}
}

func printReport(report *coverage.Report) {
	names := make([]string, 0, len(report.PerClientMapped))
	for name := range report.PerClientMapped {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("Catalog actions: %d\n", report.TotalCatalogActions)
	for _, name := range names {
		mapped := len(report.PerClientMapped[name])
		missing := report.PerClientMissing[name]
		if len(missing) == 0 {
			fmt.Printf("✓ %s: %d/%d\n", name, mapped, report.TotalCatalogActions)
			continue
		}
		fmt.Printf("✗ %s: %d/%d, missing:\n", name, mapped, report.TotalCatalogActions)
		for _, id := range missing {
			fmt.Printf("    %s\n", id)
		}
	}

	if report.Complete() {
		fmt.Println("Full coverage.")
	} else {
		fmt.Printf("Coverage gap: %d missing mapping(s).\n", report.MissingTotal())
	}
}
