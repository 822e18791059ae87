// Package config handles repository and global configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/flat/config.yml.
type GlobalConfig struct {
	RootPath string `yaml:"root_path,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "flat"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Environment variables read by the CLI (also loadable from a .env file).
const (
	EnvRoot     = "FLATREC_ROOT"
	EnvLogLevel = "FLATREC_LOG_LEVEL"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/flat/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.RootPath != "" {
		cfg.RootPath = ExpandPath(cfg.RootPath)
	}
	if err := ValidateLogLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetRootPath returns the default repository root.
// FLATREC_ROOT takes precedence over the global config.
func GetRootPath() string {
	if root := os.Getenv(EnvRoot); root != "" {
		return ExpandPath(root)
	}
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.RootPath
}

// ErrRootPathNotExist is returned when the configured root path doesn't exist.
var ErrRootPathNotExist = errors.New("root_path does not exist")

// ValidateRootPath returns the configured root path after checking it exists.
// An unconfigured root path returns "" and no error.
func ValidateRootPath() (string, error) {
	path := GetRootPath()
	if path == "" {
		return "", nil
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrRootPathNotExist, path)
	}
	return path, nil
}

// ResolveLogLevel picks the effective log level: an explicit flag value,
// then FLATREC_LOG_LEVEL, then the repository config, then the global config.
func ResolveLogLevel(flag string, repo *Config) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(EnvLogLevel); env != "" {
		return env
	}
	if repo != nil && repo.LogLevel != "" {
		return repo.LogLevel
	}
	if cfg, err := LoadGlobalConfig(); err == nil && cfg.LogLevel != "" {
		return cfg.LogLevel
	}
	return DefaultLogLevel
}

// HelpfulConfigMessage returns a helpful message when no repository is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No flatrec repository found.

Run 'flat init' to create one here, or create %s to set a default root:
  mkdir -p %s
  echo 'root_path: /path/to/your/records' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
