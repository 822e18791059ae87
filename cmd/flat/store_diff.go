package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/flatrec/internal/git"
	"github.com/matsen/flatrec/internal/store"
)

var storeDiffSince string

// StoreDiffResult is the response for store diff command.
type StoreDiffResult struct {
	Store   string           `json:"store"`
	Since   string           `json:"since"`
	Added   []EntityResponse `json:"added"`
	Removed []EntityResponse `json:"removed"`
	Changed []ChangeResponse `json:"changed"`
}

// ChangeResponse is the JSON form of a changed entity.
type ChangeResponse struct {
	Header string            `json:"header"`
	Fields []string          `json:"fields"`
	Before map[string]string `json:"before"`
	After  map[string]string `json:"after"`
}

func init() {
	storeCmd.AddCommand(storeDiffCmd)
	storeDiffCmd.Flags().StringVar(&storeDiffSince, "since", "HEAD", "Commit to compare against")
}

var storeDiffCmd = &cobra.Command{
	Use:   "diff <name>",
	Short: "Show entities added, removed or changed since a commit",
	Long: `Compare a store's data file in the working tree with its version at a git
commit (HEAD by default). Useful for reviewing edits before committing.

Examples:
  flat store diff people
  flat store diff people --since HEAD~3 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreDiff,
}

func runStoreDiff(cmd *cobra.Command, args []string) error {
	storeName := args[0]
	s := mustOpenStore(mustFindRepository(), storeName)

	d, err := s.DiffSince(storeDiffSince)
	if err != nil {
		switch {
		case errors.Is(err, git.ErrNotGitRepo), errors.Is(err, git.ErrFileNotTracked):
			exitWithError(ExitConfigError, "%v", err)
		case errors.Is(err, git.ErrCommitNotFound):
			exitWithError(ExitError, "%v", err)
		default:
			exitOnError(err, "diffing store")
		}
	}

	if humanOutput {
		printDiff(storeName, d)
		return nil
	}

	result := StoreDiffResult{
		Store:   storeName,
		Since:   storeDiffSince,
		Added:   []EntityResponse{},
		Removed: []EntityResponse{},
		Changed: []ChangeResponse{},
	}
	for _, e := range d.Added {
		result.Added = append(result.Added, entityResponse(storeName, e))
	}
	for _, e := range d.Removed {
		result.Removed = append(result.Removed, entityResponse(storeName, e))
	}
	for _, c := range d.Changed {
		result.Changed = append(result.Changed, ChangeResponse{
			Header: c.Header,
			Fields: c.Fields,
			Before: c.Before.Values(),
			After:  c.After.Values(),
		})
	}
	outputJSON(result)
	return nil
}

func printDiff(storeName string, d *store.Diff) {
	if d.Empty() {
		fmt.Printf("No changes to '%s' since %s\n", storeName, storeDiffSince)
		return
	}
	for _, e := range d.Added {
		fmt.Printf("+ %s\n", e.Header())
	}
	for _, e := range d.Removed {
		fmt.Printf("- %s\n", e.Header())
	}
	for _, c := range d.Changed {
		fmt.Printf("~ %s\n", c.Header)
		for _, f := range c.Fields {
			fmt.Printf("    %s: %q -> %q\n", f, c.Before.Value(f), c.After.Value(f))
		}
	}
}
