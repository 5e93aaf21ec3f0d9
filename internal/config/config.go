package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for configuration when --config is not given.
const DefaultPath = ".changelog.yaml"

// Config holds all changelog configuration.
type Config struct {
	// Input and version labels
	Project ProjectConfig `yaml:"project"`

	// Output document
	Render RenderConfig `yaml:"render"`

	// Target-version symbol catalog
	Catalog CatalogConfig `yaml:"catalog"`

	// Render run ledger
	History HistoryConfig `yaml:"history"`

	// File watcher
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ProjectConfig names the change set and the versions it spans.
type ProjectConfig struct {
	Changes     string `yaml:"changes"` // YAML or JSON change set
	FromVersion string `yaml:"from_version"`
	ToVersion   string `yaml:"to_version"`
}

// RenderConfig configures the rendered document.
type RenderConfig struct {
	Output   string `yaml:"output"`
	Template string `yaml:"template"` // empty = built-in template
}

// CatalogConfig configures the symbol catalog.
type CatalogConfig struct {
	// Symbol list (.yaml/.json) or SQLite database (.db/.sqlite/.sqlite3).
	Path string `yaml:"path"`
}

// HistoryConfig configures the render run ledger.
type HistoryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	DatabasePath string `yaml:"database_path"`
}

// WatchConfig configures the file watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	File   string `yaml:"file"`   // empty = stderr

	// Categories switches individual log categories off, e.g. {watch: false}.
	Categories map[string]bool `yaml:"categories"`
}

// IsCategoryEnabled reports whether category should log. Anything not
// listed in Categories is on.
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	enabled, listed := c.Categories[category]
	return !listed || enabled
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Project: ProjectConfig{
			Changes: "changes.yaml",
		},

		Render: RenderConfig{
			Output: "changelog.md",
		},

		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: ".changelog/history.db",
		},

		Watch: WatchConfig{
			Debounce: "500ms",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
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
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("CHANGELOG_CHANGES"); path != "" {
		c.Project.Changes = path
	}
	if path := os.Getenv("CHANGELOG_CATALOG"); path != "" {
		c.Catalog.Path = path
	}
	if path := os.Getenv("CHANGELOG_OUTPUT"); path != "" {
		c.Render.Output = path
	}
	if path := os.Getenv("CHANGELOG_HISTORY_DB"); path != "" {
		c.History.DatabasePath = path
	}
	if level := os.Getenv("CHANGELOG_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetDebounce returns the watch debounce interval as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// ValidLevels lists the accepted logging levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// ValidFormats lists the accepted logging formats.
var ValidFormats = []string{"json", "text"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Project.Changes == "" {
		return fmt.Errorf("change set path not configured (set project.changes or CHANGELOG_CHANGES)")
	}
	if c.Render.Output == "" {
		return fmt.Errorf("output path not configured (set render.output or CHANGELOG_OUTPUT)")
	}
	if c.History.Enabled && c.History.DatabasePath == "" {
		return fmt.Errorf("history is enabled but history.database_path is empty")
	}
	if c.Watch.Debounce != "" {
		if d, err := time.ParseDuration(c.Watch.Debounce); err != nil || d <= 0 {
			return fmt.Errorf("invalid watch debounce: %q", c.Watch.Debounce)
		}
	}
	if !contains(ValidLevels, c.Logging.Level) {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	if !contains(ValidFormats, c.Logging.Format) {
		return fmt.Errorf("invalid logging format: %s (valid: %v)", c.Logging.Format, ValidFormats)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
