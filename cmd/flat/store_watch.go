package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/flatrec/internal/store"
)

var storeWatchSync bool

// StoreWatchEvent is printed each time the watched data file changes.
type StoreWatchEvent struct {
	Time   time.Time        `json:"time"`
	Check  StoreCheckResult `json:"check"`
	Synced bool             `json:"synced,omitempty"`
}

func init() {
	storeCmd.AddCommand(storeWatchCmd)
	storeWatchCmd.Flags().BoolVar(&storeWatchSync, "sync", false, "Rebuild the SQLite mirror after each valid change")
}

var storeWatchCmd = &cobra.Command{
	Use:   "watch <name>",
	Short: "Check a store whenever its data file changes",
	Long: `Watch a store's data file and re-check it whenever another program
(an editor, git, a script) changes it. One JSON event is printed per change.
Runs until interrupted.

Example:
  flat store watch people --sync`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreWatch,
}

func runStoreWatch(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	s := mustOpenStore(repoRoot, args[0])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if humanOutput {
		fmt.Printf("Watching '%s' (%s), press Ctrl-C to stop\n", s.Name, s.DataPath())
	}

	err := s.Watch(ctx, func() { reportChange(s) })
	if err != nil {
		exitOnError(err, "watching store")
	}
	return nil
}

// reportChange checks the store after a change and prints the outcome.
func reportChange(s *store.Store) {
	result, err := checkStore(s)
	if err != nil {
		logger.Error().Err(err).Str("store", s.Name).Msg("checking changed store")
		return
	}

	event := StoreWatchEvent{Time: time.Now(), Check: result}
	if storeWatchSync && result.Valid {
		if _, err := s.Sync(); err != nil {
			logger.Error().Err(err).Str("store", s.Name).Msg("syncing changed store")
		} else {
			event.Synced = true
		}
	}

	if humanOutput {
		fmt.Printf("[%s] ", event.Time.Format(time.TimeOnly))
		outputCheck(result)
		if event.Synced {
			fmt.Println("  mirror synced")
		}
		return
	}
	outputJSONCompact(event)
}
