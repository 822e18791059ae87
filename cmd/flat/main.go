// Package main provides the flat CLI entry point.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matsen/flatrec/internal/config"
	"github.com/matsen/flatrec/internal/store"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// logLevelFlag overrides every configured log level when set
var logLevelFlag string

// logger is configured before any command runs
var logger = zerolog.Nop()

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flat",
	Short: "Schema-validated records in plain text files",
	Long: `flat keeps records in plain text files, one record per line, with
fields separated by ':' and validated against a schema.

Core features:
  - Stores: schema-checked entities addressed by their header value
  - Lines: direct line-level reads, searches and edits on any text file
  - SQLite mirror of each store for ad-hoc SQL queries

The text file is the source of truth and stays git-friendly.
All commands output JSON by default for agent integration.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Version = Version
}

// setup loads .env and builds the logger. The repository config is used
// for the log level when the command runs inside a repository.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	var repoCfg *config.Config
	if start, err := getStartingDirectory(); err == nil {
		if root, err := config.FindRepository(start); err == nil {
			repoCfg, _ = config.Load(root)
		}
	}

	levelStr := config.ResolveLogLevel(logLevelFlag, repoCfg)
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level %q", levelStr)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	return nil
}

// getStartingDirectory returns the directory to start searching for a repository.
// Checks FLATREC_ROOT and the global root_path first, then the current directory.
func getStartingDirectory() (string, error) {
	root, err := config.ValidateRootPath()
	if err != nil {
		return "", err
	}
	if root != "" {
		return root, nil
	}
	return os.Getwd()
}

// mustFindRepository finds and validates the repository, exits on error.
// Returns the repository root path.
func mustFindRepository() string {
	start, err := getStartingDirectory()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	repoRoot, err := config.FindRepository(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return repoRoot
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// storeOptions returns the store options implied by the repository config.
func storeOptions(cfg *config.Config) []store.Option {
	opts := []store.Option{store.WithLogger(logger)}
	if cfg.Cache {
		opts = append(opts, store.WithCache())
	}
	return opts
}

// mustOpenStore opens a registered store, exits on error.
func mustOpenStore(repoRoot, name string) *store.Store {
	s, err := store.OpenStore(repoRoot, name, storeOptions(mustLoadConfig(repoRoot))...)
	if err != nil {
		exitOnError(err, "opening store %q", name)
	}
	return s
}
