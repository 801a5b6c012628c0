package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TeamDman/cm-sub000/pkg/cm/rules"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage rename rules",
	Long: `Manage the ordered list of rename rules.

Rules are regular expressions applied to file base names in list order:
each rule sees the output of the rules before it. Matching is
case-insensitive unless a rule is marked case-sensitive.`,
}

var ruleAddCmd = &cobra.Command{
	Use:   "add <find> <replace>",
	Short: "Add a rename rule",
	Long: `Add a rename rule. The find pattern is a regular expression;
the replacement may reference capture groups as $1, $2, or ${name}.

Examples:
  cm rule add 'IMG_(\d+)' 'Photo_$1'
  cm rule add ' copy' '' --only-when-too-long`,
	Args: cobra.ExactArgs(2),
	RunE: runRuleAdd,
}

var ruleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rename rules in application order",
	RunE:  runRuleList,
}

var ruleRemoveCmd = &cobra.Command{
	Use:   "remove <id|index>",
	Short: "Remove a rename rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRuleRemove,
}

var ruleEditCmd = &cobra.Command{
	Use:   "edit <id|index>",
	Short: "Edit a rename rule in place",
	Long: `Edit a rename rule. Only the flags given are changed; the rule
keeps its ID and its position in the application order.`,
	Args: cobra.ExactArgs(1),
	RunE: runRuleEdit,
}

var (
	ruleCaseSensitive bool
	ruleWhenTooLong   bool
	ruleDisabled      bool

	editFind        string
	editReplace     string
	editEnabled     bool
	editCaseSens    bool
	editWhenTooLong bool
)

func init() {
	ruleAddCmd.Flags().BoolVar(&ruleCaseSensitive, "case-sensitive", false, "match case exactly")
	ruleAddCmd.Flags().BoolVar(&ruleWhenTooLong, "only-when-too-long", false, "apply only when the name exceeds the max name length")
	ruleAddCmd.Flags().BoolVar(&ruleDisabled, "disabled", false, "add the rule in a disabled state")

	ruleEditCmd.Flags().StringVar(&editFind, "find", "", "new find pattern")
	ruleEditCmd.Flags().StringVar(&editReplace, "replace", "", "new replacement")
	ruleEditCmd.Flags().BoolVar(&editEnabled, "enabled", true, "enable or disable the rule")
	ruleEditCmd.Flags().BoolVar(&editCaseSens, "case-sensitive", false, "match case exactly")
	ruleEditCmd.Flags().BoolVar(&editWhenTooLong, "only-when-too-long", false, "apply only when the name exceeds the max name length")

	ruleCmd.AddCommand(ruleAddCmd)
	ruleCmd.AddCommand(ruleListCmd)
	ruleCmd.AddCommand(ruleRemoveCmd)
	ruleCmd.AddCommand(ruleEditCmd)
	rootCmd.AddCommand(ruleCmd)
}

// runRuleAdd persists a new rule at the end of the application order.
func runRuleAdd(cmd *cobra.Command, args []string) error {
	store, err := getRuleStore()
	if err != nil {
		return err
	}

	r := rules.New(args[0], args[1])
	r.CaseSensitive = ruleCaseSensitive
	r.OnlyWhenTooLong = ruleWhenTooLong
	r.Enabled = !ruleDisabled

	// Reject patterns that cannot compile so typos surface immediately.
	if _, err := r.Compile(); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", r.Find, err)
	}

	id, err := store.Add(r)
	if err != nil {
		return err
	}

	printInfo("Added rule %s", id)
	return nil
}

// runRuleList prints every rule in application order.
func runRuleList(cmd *cobra.Command, args []string) error {
	store, err := getRuleStore()
	if err != nil {
		return err
	}

	list, err := store.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printInfo("No rules defined. Add one with: cm rule add <find> <replace>")
		return nil
	}

	for i, r := range list {
		fmt.Printf("%3d. %s  %q -> %q%s\n", i+1, r.ID, r.Find, r.Replace, ruleFlagsSuffix(r))
	}
	return nil
}

// ruleFlagsSuffix renders the non-default flags of a rule for listing.
func ruleFlagsSuffix(r rules.Rule) string {
	var flags []string
	if !r.Enabled {
		flags = append(flags, "disabled")
	}
	if r.CaseSensitive {
		flags = append(flags, "case-sensitive")
	}
	if r.OnlyWhenTooLong {
		flags = append(flags, "only-when-too-long")
	}
	if len(flags) == 0 {
		return ""
	}
	return "  [" + strings.Join(flags, ", ") + "]"
}

// runRuleRemove deletes a rule by ID or list index.
func runRuleRemove(cmd *cobra.Command, args []string) error {
	store, err := getRuleStore()
	if err != nil {
		return err
	}

	r, err := resolveRule(store, args[0])
	if err != nil {
		return err
	}

	removed, err := store.Remove(r.ID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("rule %s not found", r.ID)
	}

	printInfo("Removed rule %s (%q -> %q)", r.ID, r.Find, r.Replace)
	return nil
}

// runRuleEdit updates only the fields whose flags were given.
func runRuleEdit(cmd *cobra.Command, args []string) error {
	store, err := getRuleStore()
	if err != nil {
		return err
	}

	r, err := resolveRule(store, args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("find") {
		r.Find = editFind
	}
	if cmd.Flags().Changed("replace") {
		r.Replace = editReplace
	}
	if cmd.Flags().Changed("enabled") {
		r.Enabled = editEnabled
	}
	if cmd.Flags().Changed("case-sensitive") {
		r.CaseSensitive = editCaseSens
	}
	if cmd.Flags().Changed("only-when-too-long") {
		r.OnlyWhenTooLong = editWhenTooLong
	}

	if _, err := r.Compile(); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", r.Find, err)
	}

	if err := store.Update(r); err != nil {
		return err
	}

	printInfo("Updated rule %s", r.ID)
	return nil
}

// resolveRule finds a rule by UUID or by its 1-based position in the
// application order.
func resolveRule(store *rules.Store, arg string) (rules.Rule, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return store.Get(id)
	}

	idx, err := strconv.Atoi(arg)
	if err != nil {
		return rules.Rule{}, fmt.Errorf("%q is neither a rule ID nor an index", arg)
	}

	list, err := store.List()
	if err != nil {
		return rules.Rule{}, err
	}
	if idx < 1 || idx > len(list) {
		return rules.Rule{}, fmt.Errorf("index %d out of range (1-%d)", idx, len(list))
	}
	return list[idx-1], nil
}
