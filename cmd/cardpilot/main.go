package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cardpilot/cardpilot/internal/actionctx"
	"github.com/cardpilot/cardpilot/internal/catalog"
	"github.com/cardpilot/cardpilot/internal/config"
	"github.com/cardpilot/cardpilot/internal/db"
	"github.com/cardpilot/cardpilot/internal/diag"
	"github.com/cardpilot/cardpilot/internal/engine"
	"github.com/cardpilot/cardpilot/internal/interfaces"
	"github.com/cardpilot/cardpilot/internal/modalconfig"
	"github.com/cardpilot/cardpilot/internal/registry"
	"github.com/cardpilot/cardpilot/internal/servicecall"
	"github.com/cardpilot/cardpilot/internal/transport"
	"github.com/cardpilot/cardpilot/internal/ui"
)

var (
	version = "1.0.0"

	configPath  string
	catalogPath string
	configDir   string
	contextPath string
	doLoad      bool
	doSync      bool
	previewID   string
	showVersion bool
)

func init() {
	flag.StringVar(&configPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&catalogPath, "catalog", "", "Path to the action catalog YAML (overrides config)")
	flag.StringVar(&configDir, "configs", "", "Directory of modal configuration YAMLs (overrides config)")
	flag.StringVar(&contextPath, "context", "", "YAML file with a sample action payload for -preview")
	flag.BoolVar(&doLoad, "load", false, "Validate and import the catalog and modal configurations")
	flag.BoolVar(&doSync, "sync", false, "Sync the published catalog from the registry")
	flag.StringVar(&previewID, "preview", "", "Resolve the named action and print its render plan")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Printf("cardpilot v%s\n", version)
		return
	}

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

	logger := initLogger(cfg.LogLevel)

	switch {
	case doLoad:
		if err := loadArtifacts(cfg, logger); err != nil {
			log.Fatalf("Load failed: %v", err)
		}
	case doSync:
		if err := syncCatalog(cfg); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
	case previewID != "":
		if err := preview(cfg, logger, previewID); err != nil {
			log.Fatalf("Preview failed: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func initLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// loadBundle validates the modal configuration bundle and the catalog
// against it. Any inconsistency is fatal here so it can never reach a user.
func loadBundle() (*modalconfig.Store, *catalog.Catalog, error) {
	store := modalconfig.NewStore()
	if err := store.LoadDir(configDir); err != nil {
		return nil, nil, fmt.Errorf("modal configurations: %w", err)
	}
	cat, err := catalog.LoadFile(catalogPath, store)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: %w", err)
	}
	return store, cat, nil
}

func loadArtifacts(cfg *config.Config, logger *slog.Logger) error {
	store, cat, err := loadBundle()
	if err != nil {
		return err
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer database.Close()

	importer := catalog.NewImporter(database.Conn())
	if err := importer.ImportCatalog(cat); err != nil {
		return err
	}
	if err := importer.ImportConfigs(store); err != nil {
		return err
	}

	logger.Info("artifacts imported",
		slog.Int("actions", cat.Len()),
		slog.Int("modal_configs", len(store.IDs())),
	)
	fmt.Printf("✓ Imported %d action(s) and %d modal configuration(s)\n", cat.Len(), len(store.IDs()))
	return nil
}

func syncCatalog(cfg *config.Config) error {
	if cfg.RegistryURL == "" {
		return fmt.Errorf("registry_url is not configured")
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer database.Close()

	client := registry.NewClient(database.Conn(), cfg.RegistryURL, cfg.RegistryToken)
	cat, err := client.SyncCatalog(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("✓ Synced %d action(s) from %s\n", cat.Len(), cfg.RegistryURL)
	return nil
}

func preview(cfg *config.Config, logger *slog.Logger, actionID string) error {
	store, cat, err := loadBundle()
	if err != nil {
		return err
	}

	payload := map[string]any{}
	if contextPath != "" {
		data, err := os.ReadFile(contextPath)
		if err != nil {
			return fmt.Errorf("failed to read context file: %w", err)
		}
		if err := yaml.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("failed to parse context file: %w", err)
		}
	}

	eng := engine.New(engine.Deps{
		Catalog:   cat,
		Configs:   store,
		Executor:  servicecall.New(transport.NewHTTP(cfg.RegistryURL), logger),
		Opener:    terminalOpener{},
		Clipboard: terminalClipboard{},
		Sharer:    terminalSharer{},
		Logger:    logger,
		Diag:      diag.NewLogger(cfg.DiagnosticLog, logger),
	})

	instance := eng.Present(actionID, actionctx.New(payload, nil))
	fmt.Print(ui.RenderPlanText(instance.Plan()))
	return nil
}

// Terminal stand-ins for the platform collaborators.

type terminalOpener struct{}

func (terminalOpener) OpenURL(u *url.URL) error {
	fmt.Printf("[open] %s\n", u)
	return nil
}

type terminalClipboard struct{}

func (terminalClipboard) Copy(text string) error {
	fmt.Printf("[copy] %s\n", text)
	return nil
}

type terminalSharer struct{}

func (terminalSharer) Share(text string) error {
	fmt.Printf("[share] %s\n", text)
	return nil
}

var _ interfaces.URLOpener = terminalOpener{}
