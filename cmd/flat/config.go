package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/flatrec/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Get or set repository configuration values",
	Long: `Get or set values in .flatrec/config.json.

Keys:
  log-level  Log level for commands run in this repository (debug, info, warn, error)
  cache      Keep parsed data files in memory between operations (true, false)`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show all configuration or a single value",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

// normalizeKey accepts both log-level and log_level spellings.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	if len(args) == 0 {
		if humanOutput {
			fmt.Printf("log-level: %s\n", cfg.LogLevel)
			fmt.Printf("cache:     %t\n", cfg.Cache)
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	var value string
	switch normalizeKey(args[0]) {
	case "log-level":
		value = cfg.LogLevel
	case "cache":
		value = strconv.FormatBool(cfg.Cache)
	default:
		exitWithError(ExitError, "unknown configuration key: %s", args[0])
	}

	if humanOutput {
		fmt.Println(value)
	} else {
		outputJSON(map[string]string{normalizeKey(args[0]): value})
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	key, value := args[0], args[1]

	switch normalizeKey(key) {
	case "log-level":
		if err := config.ValidateLogLevel(value); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
		cfg.LogLevel = value
	case "cache":
		b, err := strconv.ParseBool(value)
		if err != nil {
			exitWithError(ExitConfigError, "invalid cache value %q: want true or false", value)
		}
		cfg.Cache = b
	default:
		exitWithError(ExitError, "unknown configuration key: %s", key)
	}

	if err := cfg.Save(repoRoot); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}
