package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/flatrec/internal/config"
	"github.com/matsen/flatrec/internal/store"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new flatrec repository",
	Long: `Initialize a new flatrec repository in the current directory.

Creates:
  .flatrec/
  ├── config.json     # Default config
  ├── stores.json     # Empty store registry
  └── schemas/        # Schema files for stores`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if config.IsRepository(root) {
		exitWithError(ExitError, "directory already contains a flatrec repository")
	}

	if err := os.MkdirAll(config.SchemasPath(root), 0755); err != nil {
		exitWithError(ExitError, "creating %s directory: %v", config.RepoDir, err)
	}

	cfg := &config.Config{LogLevel: config.DefaultLogLevel}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "writing config: %v", err)
	}

	if err := store.SaveRegistry(root, &store.StoreRegistry{Stores: map[string]*store.StoreConfig{}}); err != nil {
		exitWithError(ExitError, "writing registry: %v", err)
	}

	logger.Debug().Str("root", root).Msg("repository initialized")

	if humanOutput {
		fmt.Printf("Initialized flatrec repository in %s\n", config.RepoPath(root))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.RepoPath(root)})
	}
	return nil
}
