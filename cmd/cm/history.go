package main

import (
	"fmt"

	"github.com/TeamDman/cm-sub000/pkg/cm/config"
	"github.com/TeamDman/cm-sub000/pkg/cm/manifest"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View batch run history",
	Long: `View the history of plan, clean, and watch runs.

The manifest stores one record per run, including the rename mapping
and the batch report.`,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show details of a specific run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean up old history entries",
	Long:  `Remove history entries older than the retention period.`,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

// getManifest returns a manifest instance with the configured directory.
func getManifest() (*manifest.Manifest, error) {
	dir, err := config.ManifestDir()
	if err != nil {
		return nil, err
	}
	return manifest.New(dir)
}

// runHistory lists recent runs, newest first.
func runHistory(cmd *cobra.Command, args []string) error {
	m, err := getManifest()
	if err != nil {
		return err
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printInfo("No history yet.")
		return nil
	}

	for _, e := range entries {
		summary := fmt.Sprintf("%d files", len(e.Files))
		if e.Report != nil {
			summary = fmt.Sprintf("%d processed, %d skipped, %d failed",
				e.Report.Processed, e.Report.Skipped, e.Report.Errored)
		}
		printInfo("%s  %-5s  %s", e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Operation, summary)
		printInfo("  id: %s", e.ID)
	}
	return nil
}

// runHistoryShow prints one run in full.
func runHistoryShow(cmd *cobra.Command, args []string) error {
	m, err := getManifest()
	if err != nil {
		return err
	}

	entries, err := m.List(0)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.ID != args[0] {
			continue
		}

		printInfo("%s (%s at %s)", e.ID, e.Operation, e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		for _, f := range e.Files {
			if f.Renamed {
				printInfo("  %s -> %s", f.Source, f.Dest)
			} else {
				printInfo("  %s", f.Source)
			}
		}
		if e.Report != nil {
			printReport(e.Report)
		}
		return nil
	}

	return fmt.Errorf("no history entry with id %q", args[0])
}

// runHistoryClean prunes entries past the retention period.
func runHistoryClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	m, err := getManifest()
	if err != nil {
		return err
	}

	if err := m.Prune(cfg.Manifest.RetentionDays); err != nil {
		return err
	}

	printInfo("Removed entries older than %d days", cfg.Manifest.RetentionDays)
	return nil
}
