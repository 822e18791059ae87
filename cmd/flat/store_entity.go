package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/flatrec/internal/schema"
)

func init() {
	storeCmd.AddCommand(storeAddCmd)
	storeCmd.AddCommand(storeGetCmd)
	storeCmd.AddCommand(storeSetCmd)
	storeCmd.AddCommand(storeResetCmd)
	storeCmd.AddCommand(storeRemoveCmd)
}

var storeAddCmd = &cobra.Command{
	Use:   "add <name> <field=value>...",
	Short: "Add an entity to a store",
	Long: `Add an entity to a store.

Every value is checked against its field's pattern. Fields that are not
given take their default value; a field without a default must be given.
The header value must not already exist in the store.

Example:
  flat store add people name=alice city=paris`,
	Args: cobra.MinimumNArgs(2),
	RunE: runStoreAdd,
}

var storeGetCmd = &cobra.Command{
	Use:   "get <name> <header>",
	Short: "Show the entity with a header value",
	Args:  cobra.ExactArgs(2),
	RunE:  runStoreGet,
}

var storeSetCmd = &cobra.Command{
	Use:   "set <name> <header> <field> <value>",
	Short: "Change one field of an entity",
	Long: `Change one field of an entity and rewrite its line in place.

The header field cannot be changed; remove the entity and add it again.
An empty value is allowed only for nullable fields.

Example:
  flat store set people alice age 42`,
	Args: cobra.ExactArgs(4),
	RunE: runStoreSet,
}

var storeResetCmd = &cobra.Command{
	Use:   "reset <name> <header> <field>",
	Short: "Restore one field of an entity to its default",
	Args:  cobra.ExactArgs(3),
	RunE:  runStoreReset,
}

var storeRemoveCmd = &cobra.Command{
	Use:   "remove <name> <header>",
	Short: "Remove the entity with a header value",
	Args:  cobra.ExactArgs(2),
	RunE:  runStoreRemove,
}

// outputEntity prints an entity in the selected format.
func outputEntity(storeName, verb string, e *schema.Entity) {
	if humanOutput {
		if verb != "" {
			fmt.Printf("%s '%s' in '%s'\n", verb, e.Header(), storeName)
		}
		printEntity(e)
		return
	}
	outputJSON(entityResponse(storeName, e))
}

func runStoreAdd(cmd *cobra.Command, args []string) error {
	storeName := args[0]
	values := parseAssignments(args[1:])

	s := mustOpenStore(mustFindRepository(), storeName)
	e, err := s.AddEntity(values)
	if err != nil {
		exitOnError(err, "adding entity")
	}

	outputEntity(storeName, "Added", e)
	return nil
}

func runStoreGet(cmd *cobra.Command, args []string) error {
	storeName, header := args[0], args[1]

	s := mustOpenStore(mustFindRepository(), storeName)
	e, err := s.GetEntity(header)
	if err != nil {
		exitOnError(err, "getting entity")
	}

	outputEntity(storeName, "", e)
	return nil
}

func runStoreSet(cmd *cobra.Command, args []string) error {
	storeName, header, field, value := args[0], args[1], args[2], args[3]

	s := mustOpenStore(mustFindRepository(), storeName)
	e, err := s.UpdateField(header, field, value)
	if err != nil {
		exitOnError(err, "updating %s", field)
	}

	outputEntity(storeName, "Updated", e)
	return nil
}

func runStoreReset(cmd *cobra.Command, args []string) error {
	storeName, header, field := args[0], args[1], args[2]

	s := mustOpenStore(mustFindRepository(), storeName)
	e, err := s.ResetField(header, field)
	if err != nil {
		exitOnError(err, "resetting %s", field)
	}

	outputEntity(storeName, "Reset", e)
	return nil
}

func runStoreRemove(cmd *cobra.Command, args []string) error {
	storeName, header := args[0], args[1]

	s := mustOpenStore(mustFindRepository(), storeName)
	if err := s.RemoveEntity(header); err != nil {
		exitOnError(err, "removing entity")
	}

	if humanOutput {
		fmt.Printf("Removed '%s' from '%s'\n", header, storeName)
	} else {
		outputJSON(map[string]string{"status": "removed", "store": storeName, "header": header})
	}
	return nil
}
