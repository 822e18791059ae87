package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/flatrec/internal/store"
)

var storeQueryCSV bool
var storeQueryJSONL bool
var storeQueryCross bool

func init() {
	storeCmd.AddCommand(storeQueryCmd)
	storeQueryCmd.Flags().BoolVar(&storeQueryCSV, "csv", false, "Output CSV")
	storeQueryCmd.Flags().BoolVar(&storeQueryJSONL, "jsonl", false, "Output JSONL")
	storeQueryCmd.Flags().BoolVarP(&storeQueryCross, "cross", "x", false, "Enable cross-store query")
}

var storeQueryCmd = &cobra.Command{
	Use:   "query <name> <sql>",
	Short: "Query a store using SQL",
	Long: `Execute a SQL query against a store's SQLite mirror.

Every column is TEXT; empty values are NULL. Cast for numeric comparisons.
The mirror must be in sync with the data file (see 'flat store sync').

For cross-store queries, use --cross. Each store is attached under its own
name, so tables are addressed as <store>.<store>.

Examples:
  flat store query people "SELECT * FROM people WHERE CAST(age AS INTEGER) > 30"
  flat store query --cross "SELECT p.name, c.country FROM people.people p JOIN cities.cities c ON p.city = c.name"
  flat store query people "SELECT name FROM people" --csv`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	var records []store.Record
	var err error

	if storeQueryCross {
		records, err = store.QueryCross(repoRoot, args[len(args)-1])
		if err != nil {
			exitWithError(ExitError, "SQL error: %v", err)
		}
	} else {
		if len(args) < 2 {
			exitWithError(ExitError, "usage: flat store query <name> <sql>")
		}
		storeName, sql := args[0], args[1]

		s := mustOpenStore(repoRoot, storeName)
		needsSync, err := s.NeedsSync()
		if err != nil {
			exitOnError(err, "checking sync status")
		}
		if needsSync {
			exitWithError(ExitError, "store %q not synced, run 'flat store sync %s' first", storeName, storeName)
		}

		records, err = s.Query(sql)
		if err != nil {
			exitWithError(ExitError, "SQL error: %v", err)
		}
	}

	switch {
	case storeQueryCSV:
		outputCSV(records)
	case storeQueryJSONL:
		outputJSONL(records)
	case humanOutput:
		outputTable(records)
	default:
		if records == nil {
			records = []store.Record{}
		}
		outputJSON(records)
	}

	return nil
}

// outputCSV writes records as CSV.
func outputCSV(records []store.Record) {
	cols := recordColumns(records)
	if len(cols) == 0 {
		return
	}

	w := csv.NewWriter(os.Stdout)
	w.Write(cols)
	for _, record := range records {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = formatValue(record[col])
		}
		w.Write(row)
	}
	w.Flush()
}

// outputJSONL writes records as JSONL.
func outputJSONL(records []store.Record) {
	for _, record := range records {
		outputJSONCompact(record)
	}
}

// outputTable writes records as a formatted table.
func outputTable(records []store.Record) {
	if len(records) == 0 {
		fmt.Println("(0 rows)")
		return
	}

	cols := recordColumns(records)
	widths := make(map[string]int)
	for _, col := range cols {
		widths[col] = len(col)
	}
	for _, record := range records {
		for _, col := range cols {
			if n := len([]rune(formatValue(record[col]))); n > widths[col] {
				widths[col] = n
			}
		}
	}
	for col := range widths {
		if widths[col] > QueryColumnMaxLen {
			widths[col] = QueryColumnMaxLen
		}
	}

	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = padRight(strings.ToUpper(col), widths[col])
	}
	fmt.Println(strings.Join(header, "  "))

	for _, record := range records {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = padRight(truncate(formatValue(record[col]), widths[col]), widths[col])
		}
		fmt.Println(strings.Join(row, "  "))
	}

	fmt.Printf("(%d rows)\n", len(records))
}
