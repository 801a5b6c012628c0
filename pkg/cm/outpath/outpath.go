// Package outpath derives destination paths in the sibling "-output"
// tree, preserving each file's position relative to its input root.
package outpath

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// OutputSuffix is appended to an input root's name to form its output
// tree.
const OutputSuffix = "-output"

// ErrNotUnderRoot is returned when a file does not live under the given
// input root.
var ErrNotUnderRoot = errors.New("file is not under input root")

// OutputDir returns the output tree for an input root: a sibling
// directory with the root's own name plus the "-output" suffix.
func OutputDir(inputRoot string) string {
	parent := filepath.Dir(inputRoot)
	name := filepath.Base(inputRoot)
	return filepath.Join(parent, name+OutputSuffix)
}

// OutputPath maps a file under inputRoot to its destination: the output
// tree joined with the file's relative directory and the new base name.
// Nested subdirectory structure is preserved exactly.
func OutputPath(file, inputRoot, newBase string) (string, error) {
	rel, err := relativeTo(file, inputRoot)
	if err != nil {
		return "", err
	}

	out := OutputDir(inputRoot)
	if dir := filepath.Dir(rel); dir != "." {
		out = filepath.Join(out, dir)
	}
	return filepath.Join(out, newBase), nil
}

// ResolveRoot returns the first root in the set that contains file.
// A file matching no root reports false; the caller treats that as a
// per-file error, never a batch failure.
func ResolveRoot(file string, roots []string) (string, bool) {
	for _, root := range roots {
		if file == root || strings.HasPrefix(file, root+string(filepath.Separator)) {
			return root, true
		}
	}
	return "", false
}

// relativeTo returns file's path relative to root, requiring a real
// path-prefix relationship.
func relativeTo(file, root string) (string, error) {
	if file == root {
		return filepath.Base(file), nil
	}
	prefix := root + string(filepath.Separator)
	if !strings.HasPrefix(file, prefix) {
		return "", fmt.Errorf("%w: %s not under %s", ErrNotUnderRoot, file, root)
	}
	return strings.TrimPrefix(file, prefix), nil
}
