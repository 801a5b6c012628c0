package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/TeamDman/cm-sub000/pkg/cm/config"
	"github.com/spf13/cobra"
)

var maxlenCmd = &cobra.Command{
	Use:   "maxlen",
	Short: "Manage the max name length threshold",
	Long: `Manage the threshold used by rules marked only-when-too-long.

A name is considered too long when its rune count exceeds this value.
The threshold comes from the ` + config.MaxNameLengthEnv + ` environment
variable if set, otherwise from the stored value, otherwise the default
of ` + strconv.Itoa(config.DefaultMaxNameLength) + `.`,
	RunE: runMaxlenShow,
}

var maxlenSetCmd = &cobra.Command{
	Use:   "set <value>",
	Short: "Set the stored max name length",
	Args:  cobra.ExactArgs(1),
	RunE:  runMaxlenSet,
}

var maxlenResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the stored max name length to the default",
	RunE:  runMaxlenReset,
}

func init() {
	maxlenCmd.AddCommand(maxlenSetCmd)
	maxlenCmd.AddCommand(maxlenResetCmd)
	rootCmd.AddCommand(maxlenCmd)
}

// runMaxlenShow prints the effective threshold and where it came from.
func runMaxlenShow(cmd *cobra.Command, args []string) error {
	value, err := config.LoadMaxNameLength()
	if err != nil {
		return err
	}

	if env := os.Getenv(config.MaxNameLengthEnv); env != "" {
		printInfo("%d (from %s)", value, config.MaxNameLengthEnv)
	} else {
		printInfo("%d", value)
	}
	return nil
}

// runMaxlenSet stores a new threshold.
func runMaxlenSet(cmd *cobra.Command, args []string) error {
	value, err := strconv.Atoi(args[0])
	if err != nil || value < 1 {
		return fmt.Errorf("max name length must be a positive integer, got %q", args[0])
	}

	if err := config.SetMaxNameLength(value); err != nil {
		return err
	}

	printInfo("Max name length set to %d", value)
	return nil
}

// runMaxlenReset restores the default threshold.
func runMaxlenReset(cmd *cobra.Command, args []string) error {
	if err := config.ResetMaxNameLength(); err != nil {
		return err
	}

	printInfo("Max name length reset to %d", config.DefaultMaxNameLength)
	return nil
}
