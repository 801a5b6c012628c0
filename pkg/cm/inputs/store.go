// Package inputs manages the persistent set of input roots and
// enumerates the files under them.
package inputs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// inputsFile is the file name under the config directory that persists
// the root set, one canonical absolute path per line.
const inputsFile = "inputs.txt"

// Store persists the ordered, deduplicated set of input roots.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a store whose inputs file lives under dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of the inputs file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, inputsFile)
}

// List returns the persisted roots in stored (sorted) order.
func (s *Store) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// AddGlob canonicalizes every path matching the glob pattern and adds
// the new ones to the set. It returns the paths actually added.
func (s *Store) AddGlob(pattern string) ([]string, error) {
	matched, err := expandGlob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		// No matches is not an error.
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return nil, err
	}

	have := make(map[string]bool, len(current))
	for _, p := range current {
		have[p] = true
	}

	var added []string
	for _, p := range matched {
		if !have[p] {
			have[p] = true
			current = append(current, p)
			added = append(added, p)
		}
	}

	if len(added) == 0 {
		return nil, nil
	}

	if err := s.save(current); err != nil {
		return nil, err
	}
	return added, nil
}

// RemoveGlob removes every stored root matching the glob pattern and
// returns the paths actually removed.
func (s *Store) RemoveGlob(pattern string) ([]string, error) {
	matched, err := expandGlob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, nil
	}

	drop := make(map[string]bool, len(matched))
	for _, p := range matched {
		drop[p] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load()
	if err != nil {
		return nil, err
	}

	var kept, removed []string
	for _, p := range current {
		if drop[p] {
			removed = append(removed, p)
		} else {
			kept = append(kept, p)
		}
	}

	if len(removed) == 0 {
		return nil, nil
	}

	if err := s.save(kept); err != nil {
		return nil, err
	}
	return removed, nil
}

// load reads the inputs file. A missing file means an empty set.
// Must be called with s.mu held.
func (s *Store) load() ([]string, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading inputs file: %w", err)
	}

	var roots []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			roots = append(roots, line)
		}
	}
	return roots, nil
}

// save writes the roots sorted, one per line.
// Must be called with s.mu held.
func (s *Store) save(roots []string) error {
	sort.Strings(roots)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var b strings.Builder
	for _, p := range roots {
		b.WriteString(p)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(s.Path(), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing inputs file: %w", err)
	}
	return nil
}

// expandGlob resolves a glob pattern to canonical (symlink-resolved,
// absolute) paths. Sorted for deterministic output.
func expandGlob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	var out []string
	for _, m := range matches {
		p, err := Canonicalize(m)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	sort.Strings(out)
	return out, nil
}

// Canonicalize resolves symlinks and makes the path absolute.
func Canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}
	return abs, nil
}
