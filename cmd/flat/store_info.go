package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func init() {
	storeCmd.AddCommand(storeInfoCmd)
}

var storeInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show detailed information about a store",
	Long: `Display detailed information about a store including schema, file sizes,
entity count, and sync status.

Example:
  flat store info people`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreInfo,
}

func runStoreInfo(cmd *cobra.Command, args []string) error {
	storeName := args[0]
	s := mustOpenStore(mustFindRepository(), storeName)

	info, err := s.Info()
	if err != nil {
		exitOnError(err, "getting store info")
	}

	if !humanOutput {
		outputJSON(info)
		return nil
	}

	fmt.Printf("Store: %s\n\n", info.Name)

	fmt.Println("Files:")
	fmt.Printf("  Data:   %s (%s)\n", info.DataPath, humanize.Bytes(uint64(info.DataSize)))
	fmt.Printf("  DB:     %s (%s)\n", info.DBPath, humanize.Bytes(uint64(info.DBSize)))
	fmt.Printf("  Schema: %s\n", info.SchemaPath)

	fmt.Printf("\nEntities: %d\n", info.Entities)

	if !info.LastSync.IsZero() {
		fmt.Printf("Last Sync: %s (%s)\n", info.LastSync.Format("2006-01-02T15:04:05Z07:00"), humanize.Time(info.LastSync))
	}
	if info.InSync {
		fmt.Println("Sync Status: In sync")
	} else {
		fmt.Printf("Sync Status: Out of sync (run 'flat store sync %s')\n", info.Name)
	}

	fmt.Println("\nSchema:")
	for _, f := range s.Schema.Fields() {
		var flags []string
		if f.IsHeader() {
			flags = append(flags, "header")
		}
		if f.Nullable() {
			flags = append(flags, "nullable")
		}
		if def, ok := f.Default(); ok {
			flags = append(flags, fmt.Sprintf("default %q", def))
		}

		flagStr := ""
		if len(flags) > 0 {
			flagStr = fmt.Sprintf(" (%s)", strings.Join(flags, ", "))
		}
		fmt.Printf("  %d  %-12s %s%s\n", f.Position(), f.Name(), f.Pattern(), flagStr)
	}

	return nil
}
