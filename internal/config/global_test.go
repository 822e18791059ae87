package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// setupGlobalConfig points XDG_CONFIG_HOME at a temp dir and writes content
// as the global config. Empty content leaves the file absent.
func setupGlobalConfig(t *testing.T, content string) string {
	t.Helper()
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv(EnvRoot, "")
	t.Setenv(EnvLogLevel, "")

	path := filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
	if content != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create config dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write global config: %v", err)
		}
	}
	return path
}

func TestGlobalConfigPath_XDG(t *testing.T) {
	path := setupGlobalConfig(t, "")
	if got := GlobalConfigPath(); got != path {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, path)
	}
}

func TestLoadGlobalConfig_Missing(t *testing.T) {
	setupGlobalConfig(t, "")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.RootPath != "" || cfg.LogLevel != "" {
		t.Errorf("LoadGlobalConfig() = %+v, want empty", cfg)
	}
}

func TestLoadGlobalConfig_Values(t *testing.T) {
	setupGlobalConfig(t, "root_path: /data/records\nlog_level: info\n")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.RootPath != "/data/records" {
		t.Errorf("RootPath = %q, want %q", cfg.RootPath, "/data/records")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoadGlobalConfig_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	setupGlobalConfig(t, "root_path: ~/records\n")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if want := filepath.Join(home, "records"); cfg.RootPath != want {
		t.Errorf("RootPath = %q, want %q", cfg.RootPath, want)
	}
}

func TestLoadGlobalConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "root_path: [unclosed\n"},
		{"bad log level", "log_level: loud\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupGlobalConfig(t, tt.content)
			if _, err := LoadGlobalConfig(); err == nil {
				t.Error("LoadGlobalConfig() expected error")
			}
		})
	}
}

func TestLoadGlobalConfig_Cached(t *testing.T) {
	path := setupGlobalConfig(t, "root_path: /first\n")

	if _, err := LoadGlobalConfig(); err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if err := os.WriteFile(path, []byte("root_path: /second\n"), 0644); err != nil {
		t.Fatalf("Failed to rewrite config: %v", err)
	}

	cfg, _ := LoadGlobalConfig()
	if cfg.RootPath != "/first" {
		t.Errorf("cached RootPath = %q, want %q", cfg.RootPath, "/first")
	}

	ResetGlobalConfigCache()
	cfg, _ = LoadGlobalConfig()
	if cfg.RootPath != "/second" {
		t.Errorf("reloaded RootPath = %q, want %q", cfg.RootPath, "/second")
	}
}

func TestGetRootPath_EnvOverrides(t *testing.T) {
	setupGlobalConfig(t, "root_path: /from/config\n")

	if got := GetRootPath(); got != "/from/config" {
		t.Errorf("GetRootPath() = %q, want %q", got, "/from/config")
	}

	t.Setenv(EnvRoot, "/from/env")
	if got := GetRootPath(); got != "/from/env" {
		t.Errorf("GetRootPath() = %q, want %q", got, "/from/env")
	}
}

func TestValidateRootPath(t *testing.T) {
	existing := t.TempDir()

	tests := []struct {
		name    string
		root    string
		want    string
		wantErr error
	}{
		{"unset", "", "", nil},
		{"exists", existing, existing, nil},
		{"missing", filepath.Join(existing, "nope"), "", ErrRootPathNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupGlobalConfig(t, "")
			t.Setenv(EnvRoot, tt.root)

			got, err := ValidateRootPath()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateRootPath() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateRootPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		flag   string
		env    string
		repo   *Config
		global string
		want   string
	}{
		{"default", "", "", nil, "", DefaultLogLevel},
		{"global", "", "", nil, "log_level: error\n", "error"},
		{"repo beats global", "", "", &Config{LogLevel: "info"}, "log_level: error\n", "info"},
		{"env beats repo", "", "debug", &Config{LogLevel: "info"}, "", "debug"},
		{"flag beats env", "trace", "debug", &Config{LogLevel: "info"}, "", "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupGlobalConfig(t, tt.global)
			t.Setenv(EnvLogLevel, tt.env)

			if got := ResolveLogLevel(tt.flag, tt.repo); got != tt.want {
				t.Errorf("ResolveLogLevel() = %q, want %q", got, tt.want)
			}
		})
	}
}
