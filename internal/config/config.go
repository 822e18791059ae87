// Package config handles repository configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Config represents repository configuration stored in .flatrec/config.json.
type Config struct {
	LogLevel string `json:"log_level,omitempty"` // zerolog level name: debug, info, warn, error
	Cache    bool   `json:"cache,omitempty"`     // Keep parsed lines between calls
}

const (
	RepoDir      = ".flatrec"
	ConfigFile   = "config.json"
	RegistryFile = "stores.json"
	SchemasDir   = "schemas"
)

// DefaultLogLevel is used when no level is configured anywhere.
const DefaultLogLevel = "warn"

// RepoPath returns the path to the .flatrec directory from a root path.
func RepoPath(root string) string {
	return filepath.Join(root, RepoDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, RepoDir, ConfigFile)
}

// RegistryPath returns the path to stores.json from a root path.
func RegistryPath(root string) string {
	return filepath.Join(root, RepoDir, RegistryFile)
}

// SchemasPath returns the path to the schemas directory from a root path.
func SchemasPath(root string) string {
	return filepath.Join(root, RepoDir, SchemasDir)
}

// IsRepository checks if the given path contains a flatrec repository.
func IsRepository(root string) bool {
	info, err := os.Stat(RepoPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a flatrec repository.
// Returns the repository root path or an error if not found.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a flatrec repository (no %s directory found)", RepoDir)
		}
		abs = parent
	}
}

// Load reads configuration from the repository at the given root.
// A missing config file yields the zero Config.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := ValidateLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes configuration to the repository at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ValidateLogLevel checks that level is a zerolog level name.
func ValidateLogLevel(level string) error {
	if level == "" {
		return nil // Empty falls back to the default
	}
	if _, err := zerolog.ParseLevel(level); err != nil {
		return fmt.Errorf("invalid log_level: %s", level)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
