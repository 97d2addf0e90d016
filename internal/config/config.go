package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds gather's runtime options.
type Config struct {
	// LogLevel sets logging verbosity (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// IncludeExtensions is the default extension allow-list for scans.
	// nil means every extension is collected.
	IncludeExtensions []string `yaml:"include_extensions"`

	// ExcludeExtensions is the default extension deny-list.
	ExcludeExtensions []string `yaml:"exclude_extensions"`

	// ExcludeDirNames is the default set of directory names pruned during
	// scans.
	ExcludeDirNames []string `yaml:"exclude_dir_names"`

	// DisambiguateCollisions enables stable hash suffixes when two
	// originals flatten to the same storage name. Off by default so
	// existing workspace layouts are never silently renamed.
	DisambiguateCollisions bool `yaml:"disambiguate_collisions"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "info",
		IncludeExtensions: nil,
		ExcludeExtensions: []string{".exe", ".dll", ".so", ".dylib", ".bin"},
		ExcludeDirNames: []string{
			".git", ".hg", ".svn", "node_modules", "__pycache__",
			".venv", "venv", "target", "dist", "build",
		},
		DisambiguateCollisions: false,
	}
}

// LoadConfig loads configuration from the given path. A missing file yields
// defaults without error; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Unmarshal into a raw map first so we can tell "key absent" apart from
	// "key present with an empty value" for the list fields.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if _, exists := rawMap["include_extensions"]; exists {
		cfg.IncludeExtensions = fileCfg.IncludeExtensions
	}
	if _, exists := rawMap["exclude_extensions"]; exists {
		cfg.ExcludeExtensions = fileCfg.ExcludeExtensions
	}
	if _, exists := rawMap["exclude_dir_names"]; exists {
		cfg.ExcludeDirNames = fileCfg.ExcludeDirNames
	}
	if _, exists := rawMap["disambiguate_collisions"]; exists {
		cfg.DisambiguateCollisions = fileCfg.DisambiguateCollisions
	}

	return cfg, nil
}

// LoadFromHome loads config.yaml from the gather home directory.
func LoadFromHome(home string) (*Config, error) {
	return LoadConfig(filepath.Join(home, "config.yaml"))
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}
	return nil
}
