// Package manifest records batch run history as one JSON file per run.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/TeamDman/cm-sub000/pkg/cm/types"
	"github.com/google/uuid"
)

// OperationType identifies what kind of run produced an entry.
type OperationType string

const (
	// OpPlan is a dry run that only built a rename plan.
	OpPlan OperationType = "plan"
	// OpClean is a full batch run that wrote outputs.
	OpClean OperationType = "clean"
	// OpWatch is a batch triggered by the filesystem watcher.
	OpWatch OperationType = "watch"
)

// FileRecord describes one file's outcome within a run.
type FileRecord struct {
	Source  string `json:"source"`
	Dest    string `json:"dest,omitempty"`
	Renamed bool   `json:"renamed"`
	TooLong bool   `json:"too_long,omitempty"`
}

// Entry is a single recorded run.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Operation OperationType `json:"operation"`
	Files     []FileRecord  `json:"files"`
	Report    *types.Report `json:"report,omitempty"`
}

// Manifest manages run history on the filesystem.
type Manifest struct {
	dir string
	mu  sync.Mutex
}

// New creates a Manifest rooted at dir. The directory is created lazily
// on first write.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Manifest{dir: dir}, nil
}

// Log persists a new entry for the given operation and returns it.
func (m *Manifest) Log(op OperationType, files []FileRecord, report *types.Report) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := &Entry{
		ID:        generateID(op),
		Timestamp: time.Now().UTC(),
		Operation: op,
		Files:     files,
		Report:    report,
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}
	if err := m.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("writing manifest entry: %w", err)
	}

	return entry, nil
}

// writeEntry writes an entry atomically via a temp file and rename.
func (m *Manifest) writeEntry(entry *Entry) error {
	filePath := filepath.Join(m.dir, entry.ID+".json")

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}

	tmpPath := filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// List returns entries sorted by timestamp descending (newest first).
// If limit is 0 or negative, all entries are returned.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("reading manifest directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		entry, err := m.readEntryFile(f.Name())
		if err != nil {
			// Skip files that can't be parsed
			continue
		}
		entries = append(entries, *entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if entries == nil {
		entries = []Entry{}
	}

	return entries, nil
}

// readEntryFile reads and parses an entry from a JSON file.
func (m *Manifest) readEntryFile(filename string) (*Entry, error) {
	data, err := os.ReadFile(filepath.Join(m.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling entry: %w", err)
	}

	return &entry, nil
}

// Prune removes entries older than retentionDays.
func (m *Manifest) Prune(retentionDays int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading manifest directory: %w", err)
	}

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(m.dir, f.Name()))
		}
	}

	return nil
}

// generateID creates a unique ID like "clean-2026-08-31T10-30-00-1b9d6bcd".
func generateID(op OperationType) string {
	ts := time.Now().UTC().Format("2006-01-02T15-04-05")
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%s-%s", op, ts, suffix)
}
