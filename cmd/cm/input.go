package main

import (
	"github.com/spf13/cobra"
)

var inputCmd = &cobra.Command{
	Use:   "input",
	Short: "Manage input roots",
	Long: `Manage the set of input roots processed by plan, clean, and watch.

Roots are stored as canonical absolute paths. Each root gets a sibling
output directory named "<root>-output"; a root that is a single file is
processed on its own with the output tree placed next to its parent.`,
}

var inputAddCmd = &cobra.Command{
	Use:   "add <path|glob>",
	Short: "Add input roots matching a path or glob",
	Args:  cobra.ExactArgs(1),
	RunE:  runInputAdd,
}

var inputRemoveCmd = &cobra.Command{
	Use:   "remove <path|glob>",
	Short: "Remove input roots matching a path or glob",
	Args:  cobra.ExactArgs(1),
	RunE:  runInputRemove,
}

var inputListCmd = &cobra.Command{
	Use:   "list",
	Short: "List input roots",
	RunE:  runInputList,
}

func init() {
	inputCmd.AddCommand(inputAddCmd)
	inputCmd.AddCommand(inputRemoveCmd)
	inputCmd.AddCommand(inputListCmd)
	rootCmd.AddCommand(inputCmd)
}

// runInputAdd expands the glob and adds the new canonical roots.
func runInputAdd(cmd *cobra.Command, args []string) error {
	store, err := getInputStore()
	if err != nil {
		return err
	}

	added, err := store.AddGlob(args[0])
	if err != nil {
		return err
	}
	if len(added) == 0 {
		printInfo("Nothing new matched %q", args[0])
		return nil
	}

	for _, p := range added {
		printInfo("Added %s", p)
	}
	return nil
}

// runInputRemove drops every stored root matching the glob.
func runInputRemove(cmd *cobra.Command, args []string) error {
	store, err := getInputStore()
	if err != nil {
		return err
	}

	removed, err := store.RemoveGlob(args[0])
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		printInfo("No stored root matched %q", args[0])
		return nil
	}

	for _, p := range removed {
		printInfo("Removed %s", p)
	}
	return nil
}

// runInputList prints the stored roots.
func runInputList(cmd *cobra.Command, args []string) error {
	store, err := getInputStore()
	if err != nil {
		return err
	}

	roots, err := store.List()
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		printInfo("No input roots. Add one with: cm input add <path>")
		return nil
	}

	for _, p := range roots {
		printInfo("%s", p)
	}
	return nil
}
