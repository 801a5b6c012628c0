package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TeamDman/cm-sub000/pkg/cm/config"
	"github.com/TeamDman/cm-sub000/pkg/cm/logging"
	"github.com/TeamDman/cm-sub000/pkg/cm/manifest"
	"github.com/TeamDman/cm-sub000/pkg/cm/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the batch whenever the input roots change",
	Long: `Run one batch immediately, then watch the input roots and re-run
the batch after changes settle. Output trees are ignored so a batch
never retriggers itself. Stop with Ctrl-C.`,
	RunE: runWatch,
}

var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a batch runs")
	rootCmd.AddCommand(watchCmd)
}

// runWatch runs batches until interrupted.
func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}
	defer func() { _ = logging.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runOnce := func(ctx context.Context) {
		plan, roots, err := buildCurrentPlan(ctx)
		if err != nil {
			printError("building plan: %v", err)
			return
		}
		report, err := runBatch(ctx, cfg, plan, roots, manifest.OpWatch)
		if err != nil {
			printError("batch failed: %v", err)
			return
		}
		printReport(report)
	}

	w, err := watch.New(watchDebounce, runOnce)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	inputStore, err := getInputStore()
	if err != nil {
		return err
	}
	roots, err := inputStore.List()
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		return errNoInputRoots
	}

	for _, root := range roots {
		if err := w.Watch(root); err != nil {
			printError("watching %s: %v", root, err)
		}
	}

	runOnce(ctx)

	printInfo("Watching %d roots, press Ctrl-C to stop", len(roots))
	w.Run(ctx)
	return nil
}
