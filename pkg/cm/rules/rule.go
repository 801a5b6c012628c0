// Package rules implements the ordered rename rule engine: a persistent
// list of conditional find/replace transforms applied to file base names.
package rules

import (
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Rule is a single conditional regex transform over a file name.
// Matching is case-insensitive unless CaseSensitive is set.
type Rule struct {
	// ID is the stable handle used for removal and editing. Application
	// order is determined by the store's list order, not by ID.
	ID uuid.UUID `json:"id"`

	// Find is the regular expression to search for.
	Find string `json:"find"`

	// Replace is the replacement template. Capture groups are referenced
	// as $1, $2, or ${name}.
	Replace string `json:"replace"`

	// Enabled controls whether the rule participates at all.
	Enabled bool `json:"enabled"`

	// CaseSensitive disables the default case-insensitive matching.
	CaseSensitive bool `json:"case_sensitive"`

	// OnlyWhenTooLong restricts the rule to names whose current length
	// exceeds the effective max name length.
	OnlyWhenTooLong bool `json:"only_when_too_long"`
}

// New returns an enabled rule with a fresh ID and default flags.
func New(find, replace string) Rule {
	return Rule{
		ID:      uuid.New(),
		Find:    find,
		Replace: replace,
		Enabled: true,
	}
}

// Compile builds the rule's matcher, honoring the case sensitivity flag.
func (r *Rule) Compile() (*regexp.Regexp, error) {
	expr := r.Find
	if !r.CaseSensitive {
		expr = "(?i)" + expr
	}
	return regexp.Compile(expr)
}

// Apply runs the rule against name. It returns the transformed name and
// true only when the rule actually changed something. A disabled rule, an
// empty or uncompilable pattern, an unmet length condition, or a no-op
// replacement all report false.
func (r *Rule) Apply(name string, maxNameLength int) (string, bool) {
	if !r.Enabled || r.Find == "" {
		return "", false
	}

	if r.OnlyWhenTooLong && utf8.RuneCountInString(name) <= maxNameLength {
		return "", false
	}

	re, err := r.Compile()
	if err != nil {
		// Uncompilable patterns are inert, never fatal.
		return "", false
	}

	replaced := re.ReplaceAllString(name, r.Replace)
	if replaced == name {
		return "", false
	}
	return replaced, true
}
