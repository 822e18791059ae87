package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/flatrec/internal/store"
)

var storeListMatch string

// StoreListItem represents a store in list output.
type StoreListItem struct {
	Name     string `json:"name"`
	Entities int    `json:"entities"`
	Path     string `json:"path"`
	Error    string `json:"error,omitempty"`
}

func init() {
	storeCmd.AddCommand(storeListCmd)
	storeListCmd.Flags().StringVarP(&storeListMatch, "match", "m", "", "Glob the header value must match (e.g. 'al*')")
}

var storeListCmd = &cobra.Command{
	Use:   "list [name]",
	Short: "List registered stores, or the entities of one store",
	Long: `Without a name, list all stores registered in .flatrec/stores.json.
With a name, list that store's entities in file order.

Examples:
  flat store list
  flat store list people
  flat store list people --match 'a*'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStoreList,
}

func runStoreList(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	if len(args) == 1 {
		return listEntities(repoRoot, args[0])
	}
	if storeListMatch != "" {
		exitWithError(ExitError, "--match needs a store name")
	}

	stores, err := store.ListStores(repoRoot, storeOptions(mustLoadConfig(repoRoot))...)
	if err != nil {
		exitWithError(ExitError, "listing stores: %v", err)
	}

	if len(stores) == 0 {
		if humanOutput {
			fmt.Println("No stores registered")
		} else {
			outputJSON([]StoreListItem{})
		}
		return nil
	}

	if humanOutput {
		nameWidth := 4      // "NAME"
		entitiesWidth := 8 // "ENTITIES"
		for _, s := range stores {
			if len(s.Name) > nameWidth {
				nameWidth = len(s.Name)
			}
			if n := len(fmt.Sprintf("%d", s.Entities)); n > entitiesWidth {
				entitiesWidth = n
			}
		}

		fmt.Printf("%s  %s  %s\n",
			padRight("NAME", nameWidth),
			padRight("ENTITIES", entitiesWidth),
			"PATH")

		for _, s := range stores {
			path := s.DataPath
			if s.Error != "" {
				path = "error: " + s.Error
			}
			fmt.Printf("%s  %s  %s\n",
				padRight(s.Name, nameWidth),
				padLeft(fmt.Sprintf("%d", s.Entities), entitiesWidth),
				path)
		}
		return nil
	}

	items := make([]StoreListItem, 0, len(stores))
	for _, s := range stores {
		items = append(items, StoreListItem{
			Name:     s.Name,
			Entities: s.Entities,
			Path:     s.DataPath,
			Error:    s.Error,
		})
	}
	outputJSON(items)
	return nil
}

func listEntities(repoRoot, storeName string) error {
	s := mustOpenStore(repoRoot, storeName)

	entities, err := s.Entities(storeListMatch)
	if err != nil {
		exitOnError(err, "listing entities")
	}

	if !humanOutput {
		items := make([]EntityResponse, 0, len(entities))
		for _, e := range entities {
			items = append(items, entityResponse(storeName, e))
		}
		outputJSON(items)
		return nil
	}

	if len(entities) == 0 {
		fmt.Println("(0 entities)")
		return nil
	}

	fields := s.Schema.Fields()
	widths := make([]int, len(fields))
	for i, f := range fields {
		widths[i] = len(f.Name())
	}
	for _, e := range entities {
		for i, ef := range e.Fields() {
			if n := len([]rune(ef.Value())); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i := range widths {
		if widths[i] > ListColumnMaxLen {
			widths[i] = ListColumnMaxLen
		}
	}

	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = padRight(strings.ToUpper(f.Name()), widths[i])
	}
	fmt.Println(strings.Join(header, "  "))

	for _, e := range entities {
		row := make([]string, len(fields))
		for i, ef := range e.Fields() {
			row[i] = padRight(truncate(ef.Value(), widths[i]), widths[i])
		}
		fmt.Println(strings.TrimRight(strings.Join(row, "  "), " "))
	}
	fmt.Printf("(%d entities)\n", len(entities))
	return nil
}

// padLeft pads a string with spaces on the left.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
