package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/matsen/flatrec/internal/config"
)

// StoreConfig defines a single store's configuration.
type StoreConfig struct {
	SchemaPath string `json:"schema"`        // Relative path to schema file
	Dir        string `json:"dir,omitempty"` // Directory for store files (default: .flatrec/)
}

// StoreRegistry is the configuration file format for stores.json.
type StoreRegistry struct {
	Stores map[string]*StoreConfig `json:"stores"`
}

// Names returns the registered store names in sorted order.
func (r *StoreRegistry) Names() []string {
	names := make([]string, 0, len(r.Stores))
	for name := range r.Stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadRegistry loads the store registry from a repository root.
// If the registry file doesn't exist, returns an empty registry.
func LoadRegistry(repoRoot string) (*StoreRegistry, error) {
	data, err := os.ReadFile(config.RegistryPath(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return &StoreRegistry{Stores: make(map[string]*StoreConfig)}, nil
		}
		return nil, fmt.Errorf("reading registry: %w", err)
	}

	var registry StoreRegistry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}

	if registry.Stores == nil {
		registry.Stores = make(map[string]*StoreConfig)
	}

	return &registry, nil
}

// SaveRegistry saves the store registry to a repository root.
func SaveRegistry(repoRoot string, registry *StoreRegistry) error {
	if err := os.MkdirAll(config.RepoPath(repoRoot), 0755); err != nil {
		return fmt.Errorf("creating %s directory: %w", config.RepoDir, err)
	}

	data, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	if err := os.WriteFile(config.RegistryPath(repoRoot), data, 0644); err != nil {
		return fmt.Errorf("writing registry: %w", err)
	}

	return nil
}

// Register records s in the registry of the repository at repoRoot. Paths
// under the repository are stored relative to it.
func Register(repoRoot string, s *Store) error {
	registry, err := LoadRegistry(repoRoot)
	if err != nil {
		return err
	}

	relSchemaPath, err := filepath.Rel(repoRoot, s.SchemaPath)
	if err != nil {
		relSchemaPath = s.SchemaPath
	}

	// Omit the directory when it is the default .flatrec/
	var relDir string
	if filepath.Clean(s.Dir) != config.RepoPath(repoRoot) {
		relDir, err = filepath.Rel(repoRoot, s.Dir)
		if err != nil {
			relDir = s.Dir
		}
	}

	registry.Stores[s.Name] = &StoreConfig{
		SchemaPath: relSchemaPath,
		Dir:        relDir,
	}

	return SaveRegistry(repoRoot, registry)
}

// ListStores returns information about all registered stores.
func ListStores(repoRoot string, opts ...Option) ([]StoreInfo, error) {
	registry, err := LoadRegistry(repoRoot)
	if err != nil {
		return nil, err
	}

	var stores []StoreInfo
	for _, name := range registry.Names() {
		cfg := registry.Stores[name]

		s, err := OpenStore(repoRoot, name, opts...)
		if err != nil {
			// Store might be corrupted, include partial info
			stores = append(stores, StoreInfo{
				Name:       name,
				SchemaPath: cfg.SchemaPath,
				Error:      err.Error(),
			})
			continue
		}

		info, err := s.Info()
		if err != nil {
			stores = append(stores, StoreInfo{
				Name:       name,
				SchemaPath: cfg.SchemaPath,
				Error:      err.Error(),
			})
			continue
		}

		stores = append(stores, *info)
	}

	return stores, nil
}
