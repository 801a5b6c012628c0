package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TeamDman/cm-sub000/pkg/cm/config"
	"github.com/TeamDman/cm-sub000/pkg/cm/inputs"
	"github.com/TeamDman/cm-sub000/pkg/cm/planner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview the rename mapping without touching any file",
	Long: `Build and display the rename plan for every file under the input
roots. Nothing is read beyond file names and nothing is written; the
same plan is what clean would execute.`,
	RunE: runPlan,
}

var planJSON bool

func init() {
	planCmd.Flags().BoolVarP(&planJSON, "json", "j", false, "output JSON format")
	rootCmd.AddCommand(planCmd)
}

// errNoInputRoots is returned when plan or clean runs with nothing to do.
var errNoInputRoots = errors.New("no input roots configured; add one with: cm input add <path>")

// buildCurrentPlan enumerates the stored roots and builds the plan from
// the persisted rules and the effective max name length. The returned
// roots are the snapshot the plan was built against.
func buildCurrentPlan(ctx context.Context) (*planner.Plan, []string, error) {
	inputStore, err := getInputStore()
	if err != nil {
		return nil, nil, err
	}
	roots, err := inputStore.List()
	if err != nil {
		return nil, nil, err
	}
	if len(roots) == 0 {
		return nil, nil, errNoInputRoots
	}

	files, err := inputs.Enumerate(ctx, roots, viper.GetStringSlice("exclude"))
	if err != nil {
		return nil, nil, err
	}

	ruleStore, err := getRuleStore()
	if err != nil {
		return nil, nil, err
	}
	ruleList, err := ruleStore.List()
	if err != nil {
		return nil, nil, err
	}

	maxNameLength, err := config.LoadMaxNameLength()
	if err != nil {
		return nil, nil, err
	}

	return planner.Build(files, ruleList, maxNameLength), roots, nil
}

// runPlan prints the plan in text or JSON form.
func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	plan, _, err := buildCurrentPlan(cmd.Context())
	if err != nil {
		return err
	}

	if planJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	printPlan(plan)
	return nil
}

// printPlan renders a plan for human consumption.
func printPlan(plan *planner.Plan) {
	renamed := 0
	for _, e := range plan.Entries {
		if !e.WasRenamed {
			continue
		}
		renamed++

		marker := ""
		if e.IsTooLong {
			marker = "  (still too long)"
		}
		printInfo("%s -> %s%s", e.OriginalPath, e.NewBase(), marker)
	}

	for _, w := range plan.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: rule %s has an invalid pattern %q: %s\n", w.RuleID, w.Pattern, w.Err)
	}

	for _, c := range plan.Collisions {
		fmt.Fprintf(os.Stderr, "Collision: %s is claimed by %d sources; only %s will be written\n",
			filepath.Base(c.Dest), len(c.Sources), c.Sources[0])
	}

	printInfo("%d files, %d renamed, %d collisions", len(plan.Entries), renamed, len(plan.Collisions))
}
