// Package planner builds deterministic rename plans by folding the
// ordered rule list over each discovered file's base name.
package planner

import (
	"path/filepath"
	"unicode/utf8"

	"github.com/TeamDman/cm-sub000/pkg/cm/logging"
	"github.com/TeamDman/cm-sub000/pkg/cm/rules"
	"github.com/TeamDman/cm-sub000/pkg/cm/types"
	"github.com/google/uuid"
)

// Warning records a rule whose pattern failed to compile. The rule is
// inert for the whole plan; the warning exists so users can tell a typo
// apart from an intentionally non-matching rule.
type Warning struct {
	// RuleID identifies the offending rule.
	RuleID uuid.UUID `json:"rule_id"`

	// Pattern is the uncompilable find expression.
	Pattern string `json:"pattern"`

	// Err is the compile error message.
	Err string `json:"err"`
}

// Collision records a destination claimed by more than one source file.
// The first source in input order keeps the destination; the processor
// refuses to write the others.
type Collision struct {
	// Dest is the contested planned path.
	Dest string `json:"dest"`

	// Sources lists every source file that mapped to Dest, in input order.
	Sources []string `json:"sources"`
}

// Plan is the full mapping from original to final file names for a
// batch, computed before any image processing or I/O occurs.
type Plan struct {
	// Entries holds exactly one entry per input file, in input order.
	Entries []types.PlanEntry `json:"entries"`

	// Warnings lists rules whose patterns failed to compile.
	Warnings []Warning `json:"warnings,omitempty"`

	// Collisions lists destinations claimed by multiple sources.
	Collisions []Collision `json:"collisions,omitempty"`

	// losers maps a source path that lost a collision to the contested
	// destination.
	losers map[string]string
}

// CollisionDest reports whether source lost a destination collision, and
// if so which destination was contested.
func (p *Plan) CollisionDest(source string) (string, bool) {
	dest, ok := p.losers[source]
	return dest, ok
}

// Build applies the ordered rule list to every file and returns the plan.
// Rule order is the only determinant of outcome: each rule sees the
// output of the rules before it, and the too-long condition is evaluated
// against the current intermediate name. A rule whose pattern does not
// compile is skipped for every file and surfaced once as a warning.
func Build(files []string, ruleList []rules.Rule, maxNameLength int) *Plan {
	logger := logging.Get("planner")

	plan := &Plan{
		Entries: make([]types.PlanEntry, 0, len(files)),
		losers:  make(map[string]string),
	}

	for _, r := range ruleList {
		if !r.Enabled || r.Find == "" {
			continue
		}
		if _, err := r.Compile(); err != nil {
			plan.Warnings = append(plan.Warnings, Warning{
				RuleID:  r.ID,
				Pattern: r.Find,
				Err:     err.Error(),
			})
			logger.Warn("rule pattern does not compile, rule is inert",
				"rule", r.ID, "pattern", r.Find, "error", err)
		}
	}

	for _, file := range files {
		base := filepath.Base(file)
		cur := base
		for _, r := range ruleList {
			if next, changed := r.Apply(cur, maxNameLength); changed {
				cur = next
			}
		}

		plan.Entries = append(plan.Entries, types.PlanEntry{
			OriginalPath: file,
			NewPath:      filepath.Join(filepath.Dir(file), cur),
			WasRenamed:   cur != base,
			IsTooLong:    utf8.RuneCountInString(cur) > maxNameLength,
		})
	}

	plan.detectCollisions()

	return plan
}

// detectCollisions finds destinations claimed by more than one source.
// The first claimant in input order keeps the destination.
func (p *Plan) detectCollisions() {
	claims := make(map[string][]string)
	order := make([]string, 0)

	for _, e := range p.Entries {
		if _, seen := claims[e.NewPath]; !seen {
			order = append(order, e.NewPath)
		}
		claims[e.NewPath] = append(claims[e.NewPath], e.OriginalPath)
	}

	for _, dest := range order {
		sources := claims[dest]
		if len(sources) < 2 {
			continue
		}
		p.Collisions = append(p.Collisions, Collision{Dest: dest, Sources: sources})
		for _, loser := range sources[1:] {
			p.losers[loser] = dest
		}
	}
}
