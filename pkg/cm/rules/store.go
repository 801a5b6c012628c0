package rules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/TeamDman/cm-sub000/pkg/cm/logging"
	"github.com/google/uuid"
)

// ruleFileExt is the extension of persisted rule files.
const ruleFileExt = ".txt"

// ErrRuleNotFound is returned when no rule with the given ID exists.
var ErrRuleNotFound = errors.New("rule not found")

// Store persists rename rules as one text file per rule in a directory.
// File names are "<uuid>.txt"; application order is the lexicographic
// order of file names, which is stable across process runs.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates a store rooted at dir. The directory is created on
// first write.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("rule store directory cannot be empty")
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory holding the rule files.
func (s *Store) Dir() string {
	return s.dir
}

// Add assigns the rule a fresh ID, persists it, and returns the ID.
func (s *Store) Add(r Rule) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = uuid.New()
	if err := s.write(r); err != nil {
		return uuid.Nil, err
	}
	return r.ID, nil
}

// List returns all rules in application order. Files that fail to parse
// are skipped with a warning; a single bad file never aborts listing.
func (s *Store) List() ([]Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Rule{}, nil
		}
		return nil, fmt.Errorf("reading rule directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ruleFileExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	logger := logging.Get("rules")
	rules := make([]Rule, 0, len(names))
	for _, name := range names {
		path := filepath.Join(s.dir, name)

		id, err := uuid.Parse(strings.TrimSuffix(name, ruleFileExt))
		if err != nil {
			logger.Warn("skipping rule file with invalid name", "file", name)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable rule file", "file", name, "error", err)
			continue
		}

		r, err := Decode(string(data))
		if err != nil {
			logger.Warn("skipping unparseable rule file", "file", name, "error", err)
			continue
		}
		r.ID = id
		rules = append(rules, r)
	}

	return rules, nil
}

// Get returns the rule with the given ID.
func (s *Store) Get(id uuid.UUID) (Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.rulePath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Rule{}, ErrRuleNotFound
		}
		return Rule{}, fmt.Errorf("reading rule file: %w", err)
	}

	r, err := Decode(string(data))
	if err != nil {
		return Rule{}, fmt.Errorf("parsing rule %s: %w", id, err)
	}
	r.ID = id
	return r, nil
}

// Update overwrites the stored rule with the same ID.
func (s *Store) Update(r Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.rulePath(r.ID)); err != nil {
		if os.IsNotExist(err) {
			return ErrRuleNotFound
		}
		return fmt.Errorf("checking rule file: %w", err)
	}
	return s.write(r)
}

// Remove deletes the rule with the given ID. It reports whether a rule
// was actually removed.
func (s *Store) Remove(id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.rulePath(id)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("removing rule file: %w", err)
	}
	return true, nil
}

// write persists a rule, creating the directory if needed.
// Must be called with s.mu held.
func (s *Store) write(r Rule) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating rule directory: %w", err)
	}
	if err := os.WriteFile(s.rulePath(r.ID), []byte(Encode(r)), 0o644); err != nil {
		return fmt.Errorf("writing rule file: %w", err)
	}
	return nil
}

// rulePath returns the file path for a rule ID.
func (s *Store) rulePath(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+ruleFileExt)
}
