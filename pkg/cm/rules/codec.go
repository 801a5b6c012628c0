package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Current flag lines written by Encode. Line 1 is the find pattern,
// line 2 the replacement, and each subsequent non-empty line one flag.
const (
	flagDisabled        = "disabled"
	flagCaseSensitive   = "case-sensitive"
	flagOnlyWhenTooLong = "only-when-too-long"
)

// Legacy modifier lines accepted by Decode. Legacy files were produced by
// a format where matching was case-sensitive by default and the length
// threshold was written literally.
const (
	legacyAlways          = "always"
	legacyCaseInsensitive = "case-insensitive"
)

// legacyWhenPattern matches "when len > N" and bare "len > N" markers.
// The literal threshold is discarded; the caller-supplied max name length
// applies instead.
var legacyWhenPattern = regexp.MustCompile(`^(?:when\s+)?len\s*>\s*(\d+)$`)

// ErrEmptyRule is returned when a rule file has no content.
var ErrEmptyRule = errors.New("empty rule file")

// Encode serializes the rule in the current text format. Flags are only
// written when they deviate from the defaults.
func Encode(r Rule) string {
	var b strings.Builder
	b.WriteString(r.Find)
	b.WriteByte('\n')
	b.WriteString(r.Replace)
	b.WriteByte('\n')
	if !r.Enabled {
		b.WriteString(flagDisabled)
		b.WriteByte('\n')
	}
	if r.CaseSensitive {
		b.WriteString(flagCaseSensitive)
		b.WriteByte('\n')
	}
	if r.OnlyWhenTooLong {
		b.WriteString(flagOnlyWhenTooLong)
		b.WriteByte('\n')
	}
	return b.String()
}

// Decode parses a rule file. The current format is tried first; when any
// legacy modifier line is present the whole file is reinterpreted under
// legacy semantics. The returned rule carries a zero ID; the store fills
// it in from the file name.
func Decode(text string) (Rule, error) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || (len(lines) == 1 && strings.TrimSpace(lines[0]) == "") {
		return Rule{}, ErrEmptyRule
	}

	r := Rule{
		ID:      uuid.Nil,
		Find:    lines[0],
		Enabled: true,
	}
	if len(lines) > 1 {
		r.Replace = lines[1]
	}

	var flags []string
	if len(lines) > 2 {
		for _, l := range lines[2:] {
			l = strings.TrimSpace(l)
			if l != "" {
				flags = append(flags, l)
			}
		}
	}

	if hasLegacyFlags(flags) {
		return decodeLegacy(r, flags)
	}

	for _, f := range flags {
		switch strings.ToLower(f) {
		case flagDisabled:
			r.Enabled = false
		case flagCaseSensitive:
			r.CaseSensitive = true
		case flagOnlyWhenTooLong:
			r.OnlyWhenTooLong = true
		default:
			return Rule{}, fmt.Errorf("unknown rule flag: %q", f)
		}
	}

	return r, nil
}

// hasLegacyFlags reports whether any line uses the legacy modifier
// vocabulary.
func hasLegacyFlags(flags []string) bool {
	for _, f := range flags {
		low := strings.ToLower(f)
		if low == legacyAlways || low == legacyCaseInsensitive || legacyWhenPattern.MatchString(low) {
			return true
		}
	}
	return false
}

// decodeLegacy normalizes a legacy-format rule. Legacy files matched
// case-sensitively unless the case-insensitive marker was present, and a
// "when len > N" marker becomes OnlyWhenTooLong with N discarded.
func decodeLegacy(r Rule, flags []string) (Rule, error) {
	r.CaseSensitive = true
	for _, f := range flags {
		low := strings.ToLower(f)
		switch {
		case low == legacyAlways:
			// "always" carried no behavior; accepted for compatibility.
		case low == legacyCaseInsensitive:
			r.CaseSensitive = false
		case legacyWhenPattern.MatchString(low):
			r.OnlyWhenTooLong = true
		default:
			return Rule{}, fmt.Errorf("unknown legacy rule modifier: %q", f)
		}
	}
	return r, nil
}
