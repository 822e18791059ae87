package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/flatrec/internal/store"
)

var storeSyncAll bool
var storeSyncForce bool

// StoreSyncResult is the response for store sync command.
type StoreSyncResult struct {
	Store    string `json:"store"`
	Entities int    `json:"entities"`
	Action   string `json:"action"` // "rebuilt", "skipped" or "failed"
	Error    string `json:"error,omitempty"`
}

// StoreSyncAllResult is the response for store sync --all command.
type StoreSyncAllResult struct {
	Results []StoreSyncResult `json:"results"`
}

func init() {
	storeCmd.AddCommand(storeSyncCmd)
	storeSyncCmd.Flags().BoolVarP(&storeSyncAll, "all", "a", false, "Sync all registered stores")
	storeSyncCmd.Flags().BoolVarP(&storeSyncForce, "force", "f", false, "Rebuild even when the mirror is up to date")
}

var storeSyncCmd = &cobra.Command{
	Use:   "sync [name]",
	Short: "Sync a data file to its SQLite mirror",
	Long: `Rebuild the SQLite query mirror from the data file, the source of truth.

Use this after editing data files or after pulling changes from git.
The mirror is only rebuilt when the data file changed since the last sync.

Example:
  flat store sync people    # Sync single store
  flat store sync --all     # Sync all stores`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStoreSync,
}

func runStoreSync(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()

	if storeSyncAll {
		return runStoreSyncAll(repoRoot)
	}

	if len(args) == 0 {
		exitWithError(ExitError, "store name required (or use --all)")
	}

	s := mustOpenStore(repoRoot, args[0])
	result, err := syncStore(s)
	if err != nil {
		exitOnError(err, "syncing store %q", s.Name)
	}

	if humanOutput {
		printSyncResult(result)
	} else {
		outputJSON(result)
	}
	return nil
}

func runStoreSyncAll(repoRoot string) error {
	registry, err := store.LoadRegistry(repoRoot)
	if err != nil {
		exitWithError(ExitError, "loading registry: %v", err)
	}
	opts := storeOptions(mustLoadConfig(repoRoot))

	var all StoreSyncAllResult
	for _, name := range registry.Names() {
		s, err := store.OpenStore(repoRoot, name, opts...)
		if err != nil {
			all.Results = append(all.Results, StoreSyncResult{Store: name, Action: "failed", Error: err.Error()})
			continue
		}
		result, err := syncStore(s)
		if err != nil {
			logger.Warn().Err(err).Str("store", name).Msg("sync failed")
			result = StoreSyncResult{Store: name, Action: "failed", Error: err.Error()}
		}
		all.Results = append(all.Results, result)
	}

	if humanOutput {
		if len(all.Results) == 0 {
			fmt.Println("No stores registered")
		}
		for _, r := range all.Results {
			printSyncResult(r)
		}
	} else {
		if all.Results == nil {
			all.Results = []StoreSyncResult{}
		}
		outputJSON(all)
	}
	return nil
}

func syncStore(s *store.Store) (StoreSyncResult, error) {
	if !storeSyncForce {
		needsSync, err := s.NeedsSync()
		if err == nil && !needsSync {
			n, err := s.Count()
			if err != nil {
				return StoreSyncResult{}, err
			}
			return StoreSyncResult{Store: s.Name, Entities: n, Action: "skipped"}, nil
		}
	}

	n, err := s.Sync()
	if err != nil {
		return StoreSyncResult{}, err
	}
	return StoreSyncResult{Store: s.Name, Entities: n, Action: "rebuilt"}, nil
}

func printSyncResult(r StoreSyncResult) {
	switch r.Action {
	case "rebuilt":
		fmt.Printf("Synced '%s': %d entities\n", r.Store, r.Entities)
	case "skipped":
		fmt.Printf("'%s' already in sync (%d entities)\n", r.Store, r.Entities)
	default:
		fmt.Printf("Failed to sync '%s': %s\n", r.Store, r.Error)
	}
}
