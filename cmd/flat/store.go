package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Schema-validated record stores",
	Long: `Manage stores of schema-validated entities kept in plain text files.

Each store has a schema (YAML or JSON) listing its fields by position. The
field at position 0 is the header: it identifies the entity and must be
unique. Every entity is one line of the store's .txt file with its values
joined by ':'. The text file is the source of truth; 'flat store sync'
mirrors it into SQLite for 'flat store query'.`,
}

func init() {
	rootCmd.AddCommand(storeCmd)
}

// parseAssignments turns field=value arguments into a map.
func parseAssignments(args []string) map[string]string {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			exitWithError(ExitError, "invalid field assignment %q: want field=value", arg)
		}
		if _, dup := values[name]; dup {
			exitWithError(ExitError, "field %q assigned more than once", name)
		}
		values[name] = value
	}
	return values
}
