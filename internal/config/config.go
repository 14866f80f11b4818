package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration for the local tooling.
type Config struct {
	DBPath        string `yaml:"db_path"`
	CatalogPath   string `yaml:"catalog_path"`
	ConfigDir     string `yaml:"config_dir"`
	MappingDir    string `yaml:"mapping_dir"`
	DiagnosticLog string `yaml:"diagnostic_log"`
	RegistryURL   string `yaml:"registry_url,omitempty"`
	RegistryToken string `yaml:"registry_token,omitempty"`
	LogLevel      string `yaml:"log_level"`
}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	base := filepath.Join(homeDir, ".cardpilot")
	return &Config{
		DBPath:        filepath.Join(base, "cardpilot.db"),
		CatalogPath:   filepath.Join(base, "catalog.yaml"),
		ConfigDir:     filepath.Join(base, "modals"),
		MappingDir:    filepath.Join(base, "mappings"),
		DiagnosticLog: filepath.Join(base, "diagnostics.jsonl"),
		RegistryURL:   "",
		LogLevel:      "info",
	}
}

// Load reads configuration from file, creating it with defaults if absent.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".cardpilot", "config.yaml")
}
