package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/flatrec/internal/store"
)

// StoreCheckResult is the response for store check command.
type StoreCheckResult struct {
	Store    string            `json:"store"`
	Entities int               `json:"entities"`
	Valid    bool              `json:"valid"`
	Issues   []store.LineIssue `json:"issues"`
}

func init() {
	storeCmd.AddCommand(storeCheckCmd)
}

var storeCheckCmd = &cobra.Command{
	Use:   "check <name>",
	Short: "Validate every line of a store's data file",
	Long: `Decode every line of the store's data file against its schema and report
lines that are not valid entities or that repeat an earlier header value.

Use this after editing a data file by hand or after a git merge.
Exits with code 3 when any issue is found.

Example:
  flat store check people`,
	Args: cobra.ExactArgs(1),
	RunE: runStoreCheck,
}

func runStoreCheck(cmd *cobra.Command, args []string) error {
	storeName := args[0]
	s := mustOpenStore(mustFindRepository(), storeName)

	result, err := checkStore(s)
	if err != nil {
		exitOnError(err, "checking store")
	}

	outputCheck(result)
	if !result.Valid {
		os.Exit(ExitDataError)
	}
	return nil
}

func checkStore(s *store.Store) (StoreCheckResult, error) {
	issues, err := s.Check()
	if err != nil {
		return StoreCheckResult{}, err
	}
	n, err := s.Count()
	if err != nil {
		return StoreCheckResult{}, err
	}
	if issues == nil {
		issues = []store.LineIssue{}
	}
	return StoreCheckResult{
		Store:    s.Name,
		Entities: n,
		Valid:    len(issues) == 0,
		Issues:   issues,
	}, nil
}

func outputCheck(result StoreCheckResult) {
	if !humanOutput {
		outputJSON(result)
		return
	}

	if result.Valid {
		fmt.Printf("%s: %d entities, no issues\n", result.Store, result.Entities)
		return
	}
	fmt.Printf("%s: %d lines, %d issues\n", result.Store, result.Entities, len(result.Issues))
	for _, issue := range result.Issues {
		fmt.Printf("  line %d: %s\n", issue.Line, issue.Message)
	}
}
