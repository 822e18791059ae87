package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/matsen/flatrec/internal/config"
	"github.com/matsen/flatrec/internal/schema"
	"github.com/matsen/flatrec/internal/store"
)

var storeInitSchemaPath string
var storeInitDir string

// StoreInitResult is the response for store init command.
type StoreInitResult struct {
	Name       string `json:"name"`
	DataPath   string `json:"data_path"`
	DBPath     string `json:"db_path"`
	SchemaPath string `json:"schema_path"`
}

func init() {
	storeCmd.AddCommand(storeInitCmd)
	storeInitCmd.Flags().StringVarP(&storeInitSchemaPath, "schema", "s", "", "Path to schema file (required)")
	storeInitCmd.Flags().StringVarP(&storeInitDir, "dir", "d", "", "Directory for store files (default: .flatrec/)")
	storeInitCmd.MarkFlagRequired("schema")
}

var storeInitCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Initialize a new store",
	Long: `Initialize a new store with a schema file.

Creates an empty data file (<name>.txt), a SQLite mirror (<name>.db), and
registers the store in .flatrec/stores.json. An existing data file is kept.

Schema file (YAML or JSON):
  name: people
  fields:
    - name: name        # position 0 is the header
      position: 0
      pattern: "[a-z]+"
    - name: age
      position: 1
      pattern: "[0-9]+"
      default: "0"

Example:
  flat store init people --schema .flatrec/schemas/people.yml`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreInit,
}

// validStoreName matches valid store names (alphanumeric + underscore, must start with letter or underscore).
var validStoreName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func runStoreInit(cmd *cobra.Command, args []string) error {
	storeName := args[0]

	if !validStoreName.MatchString(storeName) {
		exitWithError(ExitError, "invalid store name %q: must be alphanumeric with underscores, starting with letter or underscore", storeName)
	}

	repoRoot := mustFindRepository()

	registry, err := store.LoadRegistry(repoRoot)
	if err != nil {
		exitWithError(ExitError, "loading registry: %v", err)
	}
	if _, exists := registry.Stores[storeName]; exists {
		exitWithError(ExitError, "store %q already exists", storeName)
	}

	schemaPath := storeInitSchemaPath
	if !filepath.IsAbs(schemaPath) {
		schemaPath = filepath.Join(repoRoot, schemaPath)
	}
	if _, err := os.Stat(schemaPath); os.IsNotExist(err) {
		exitWithError(ExitError, "schema file not found: %s", storeInitSchemaPath)
	}

	sch, err := schema.ParseFile(schemaPath)
	if err != nil {
		exitWithError(ExitDataError, "invalid schema: %v", err)
	}

	// The SQLite table is named after the store.
	if sch.Name() != storeName {
		if sch, err = sch.Rename(storeName); err != nil {
			exitWithError(ExitDataError, "invalid schema: %v", err)
		}
	}

	dir := storeInitDir
	if dir == "" {
		dir = config.RepoPath(repoRoot)
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(repoRoot, dir)
	}

	s := store.NewStore(storeName, sch, dir, schemaPath, storeOptions(mustLoadConfig(repoRoot))...)
	if err := s.Init(repoRoot); err != nil {
		exitOnError(err, "initializing store")
	}

	result := StoreInitResult{
		Name:       storeName,
		DataPath:   s.DataPath(),
		DBPath:     s.DBPath(),
		SchemaPath: storeInitSchemaPath,
	}

	if humanOutput {
		fmt.Printf("Created store '%s':\n", storeName)
		fmt.Printf("  Data:   %s\n", result.DataPath)
		fmt.Printf("  DB:     %s\n", result.DBPath)
		fmt.Printf("  Schema: %s\n", result.SchemaPath)
	} else {
		outputJSON(result)
	}

	return nil
}
