// Package config holds tool configuration for aictx: YAML file under
// .aictx/, environment overrides, and range validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Path is the configuration file location relative to the workspace root.
const Path = ".aictx/config.yaml"

// Config controls generation behavior that is not dictated by the workspace
// itself.
type Config struct {
	// MaxBackups is the bounded backup retention count.
	// Default: 10, Range: 1-50
	MaxBackups int `yaml:"max_backups"`

	// DocsCacheTTLHours is how long fetched framework documentation stays
	// fresh before a refetch is needed.
	// Default: 24, Range: 1-168 (1 week)
	DocsCacheTTLHours int `yaml:"docs_cache_ttl_hours"`

	// DocsEnabled controls whether cached official framework docs
	// contribute instructions during generation.
	// Default: true
	DocsEnabled bool `yaml:"docs_enabled"`

	// TestCommand overrides the package.json test script for `aictx test`.
	// Empty means "use the workspace's test script".
	TestCommand string `yaml:"test_command"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxBackups:        10,
		DocsCacheTTLHours: 24,
		DocsEnabled:       true,
	}
}

// Load reads the configuration for a workspace: defaults, overlaid by the
// YAML file if present, overlaid by environment variables. A missing file is
// not an error; a malformed one is.
func Load(workspaceRoot string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(workspaceRoot, filepath.FromSlash(Path)))
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("malformed %s: %w", Path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to read %s: %w", Path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays AICTX_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("AICTX_MAX_BACKUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxBackups = n
		}
	}
	if v := os.Getenv("AICTX_DOCS_CACHE_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DocsCacheTTLHours = n
		}
	}
	if v := os.Getenv("AICTX_DOCS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.DocsEnabled = b
		}
	}
	if v := os.Getenv("AICTX_TEST_COMMAND"); v != "" {
		c.TestCommand = v
	}
}

// Validate range-checks the configuration.
func (c *Config) Validate() error {
	if c.MaxBackups < 1 || c.MaxBackups > 50 {
		return fmt.Errorf("max_backups must be between 1 and 50, got %d", c.MaxBackups)
	}
	if c.DocsCacheTTLHours < 1 || c.DocsCacheTTLHours > 168 {
		return fmt.Errorf("docs_cache_ttl_hours must be between 1 and 168, got %d", c.DocsCacheTTLHours)
	}
	return nil
}
