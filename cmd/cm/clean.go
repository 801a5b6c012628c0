package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TeamDman/cm-sub000/pkg/cm/cache"
	"github.com/TeamDman/cm-sub000/pkg/cm/config"
	"github.com/TeamDman/cm-sub000/pkg/cm/imaging"
	"github.com/TeamDman/cm-sub000/pkg/cm/logging"
	"github.com/TeamDman/cm-sub000/pkg/cm/manifest"
	"github.com/TeamDman/cm-sub000/pkg/cm/planner"
	"github.com/TeamDman/cm-sub000/pkg/cm/processor"
	"github.com/TeamDman/cm-sub000/pkg/cm/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Process every file under the input roots",
	Long: `Build the rename plan and process every file: each image is decoded,
optionally cropped to its visible content, and written under its
renamed name into the sibling "-output" tree. Sources are never
modified. One file's failure never stops the batch.

Unchanged sources whose output already exists are skipped; use --force
to reprocess everything.`,
	RunE: runClean,
}

var (
	cleanCrop   bool
	cleanNoCrop bool
	cleanForce  bool
	cleanDryRun bool
)

func init() {
	cleanCmd.Flags().BoolVar(&cleanCrop, "crop", false, "crop images to content (overrides config)")
	cleanCmd.Flags().BoolVar(&cleanNoCrop, "no-crop", false, "disable cropping (overrides config)")
	cleanCmd.Flags().BoolVar(&cleanForce, "force", false, "reprocess files even when unchanged")
	cleanCmd.Flags().Bool("no-cache", false, "bypass the fingerprint cache entirely")
	cleanCmd.Flags().BoolVarP(&cleanDryRun, "dry-run", "d", false, "print the plan without processing")
	cleanCmd.Flags().Int("quality", 0, "JPEG re-encode quality (1-100)")

	_ = viper.BindPFlag("no_cache", cleanCmd.Flags().Lookup("no-cache"))
	_ = viper.BindPFlag("jpeg_quality", cleanCmd.Flags().Lookup("quality"))

	cleanCmd.MarkFlagsMutuallyExclusive("crop", "no-crop")
	rootCmd.AddCommand(cleanCmd)
}

// runClean executes one batch, or prints the plan with --dry-run.
func runClean(cmd *cobra.Command, args []string) error {
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

	plan, roots, err := buildCurrentPlan(ctx)
	if err != nil {
		return err
	}

	if cleanDryRun {
		printPlan(plan)
		return nil
	}

	report, err := runBatch(ctx, cfg, plan, roots, manifest.OpClean)
	if err != nil {
		return err
	}

	printReport(report)
	if report.Errored > 0 {
		return fmt.Errorf("%d of %d files failed", report.Errored, len(plan.Entries))
	}
	return nil
}

// effectiveCrop resolves the crop setting from config and flag overrides.
func effectiveCrop(cfg *config.Config) bool {
	if cleanCrop {
		return true
	}
	if cleanNoCrop {
		return false
	}
	return cfg.CropToContent
}

// runBatch processes a plan and records the run in the manifest. The
// fingerprint cache is opened for the duration of the batch unless
// disabled.
func runBatch(ctx context.Context, cfg *config.Config, plan *planner.Plan, roots []string, op manifest.OperationType) (*types.Report, error) {
	var fpCache *cache.Cache
	if !viper.GetBool("no_cache") {
		if err := config.EnsureCacheDir(); err != nil {
			return nil, err
		}
		c, err := cache.Open(config.DefaultFingerprintPath())
		if err != nil {
			logging.Get("processor").Warn("fingerprint cache unavailable, running without it", "error", err)
		} else {
			fpCache = c
			defer func() { _ = c.Close() }()
		}
	}

	var progress processor.ProgressFunc
	if !getQuiet() {
		progress = func(done, total int, path string) {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] processing", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	proc := processor.New(processor.Options{
		Roots: roots,
		Settings: imaging.Settings{
			CropToContent: effectiveCrop(cfg),
			JPEGQuality:   viper.GetInt("jpeg_quality"),
		},
		Workers:    viper.GetInt("workers"),
		OnProgress: progress,
		Cache:      fpCache,
		Force:      cleanForce,
	})

	report := proc.Run(ctx, plan)

	if cfg.Manifest.Enabled {
		if err := recordRun(cfg, op, plan, report); err != nil {
			logging.Get("processor").Warn("failed to record run in manifest", "error", err)
		}
	}

	return report, nil
}

// recordRun logs the batch to the manifest and prunes old entries.
func recordRun(cfg *config.Config, op manifest.OperationType, plan *planner.Plan, report *types.Report) error {
	dir, err := config.ManifestDir()
	if err != nil {
		return err
	}
	m, err := manifest.New(dir)
	if err != nil {
		return err
	}

	records := make([]manifest.FileRecord, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		records = append(records, manifest.FileRecord{
			Source:  e.OriginalPath,
			Dest:    e.NewBase(),
			Renamed: e.WasRenamed,
			TooLong: e.IsTooLong,
		})
	}

	if _, err := m.Log(op, records, report); err != nil {
		return err
	}
	return m.Prune(cfg.Manifest.RetentionDays)
}

// timeRound keeps elapsed times readable in the summary line.
const timeRound = 10 * time.Millisecond

// printReport summarizes a finished batch.
func printReport(report *types.Report) {
	printInfo("Processed %d, skipped %d, failed %d in %s (%s written)",
		report.Processed, report.Skipped, report.Errored,
		report.Elapsed.Round(timeRound), types.FormatSize(report.BytesWritten))

	for _, e := range report.Errors {
		printError("%s", e.String())
	}
}
