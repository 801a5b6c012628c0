package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/TeamDman/cm-sub000/pkg/cm/types"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("creates manifest with valid directory", func(t *testing.T) {
		t.Parallel()

		m, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New() error = %v, want nil", err)
		}
		if m == nil {
			t.Fatal("New() returned nil")
		}
	})

	t.Run("returns error for empty directory", func(t *testing.T) {
		t.Parallel()

		if _, err := New(""); err == nil {
			t.Fatal("New() error = nil, want error for empty directory")
		}
	})
}

func TestManifest_Log(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "manifests")
	m, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	files := []FileRecord{
		{Source: "/in/a.png", Dest: "b.png", Renamed: true},
		{Source: "/in/c.png", Dest: "c.png"},
	}
	report := &types.Report{Processed: 2}

	entry, err := m.Log(OpClean, files, report)
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	if entry.Operation != OpClean {
		t.Errorf("Operation = %v, want %v", entry.Operation, OpClean)
	}
	if len(entry.Files) != 2 {
		t.Errorf("len(Files) = %d, want 2", len(entry.Files))
	}
	if entry.ID == "" {
		t.Error("ID is empty")
	}

	// The entry must exist on disk as JSON.
	if _, err := os.Stat(filepath.Join(dir, entry.ID+".json")); err != nil {
		t.Errorf("entry file not written: %v", err)
	}
}

func TestManifest_List(t *testing.T) {
	t.Parallel()

	m, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := m.Log(OpPlan, nil, nil); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	entries, err := m.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}

	// Newest first.
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Error("entries not sorted newest first")
		}
	}

	limited, err := m.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len(limited) = %d, want 2", len(limited))
	}
}

func TestManifest_List_EmptyDirectory(t *testing.T) {
	t.Parallel()

	m, err := New(filepath.Join(t.TempDir(), "never-created"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	entries, err := m.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}

func TestManifest_List_SkipsCorruptFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := m.Log(OpClean, nil, nil); err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := m.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("len(entries) = %d, want 1", len(entries))
	}
}

func TestManifest_Prune(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	entry, err := m.Log(OpClean, nil, nil)
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	// Age the file past the retention window.
	old := time.Now().AddDate(0, 0, -10)
	path := filepath.Join(dir, entry.ID+".json")
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	if err := m.Prune(7); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("old entry not pruned")
	}
}

func TestManifest_Prune_KeepsRecentEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	entry, err := m.Log(OpClean, nil, nil)
	if err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	if err := m.Prune(7); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, entry.ID+".json")); err != nil {
		t.Errorf("recent entry removed: %v", err)
	}
}

func TestGenerateID_Format(t *testing.T) {
	t.Parallel()

	id := generateID(OpWatch)
	if len(id) == 0 {
		t.Fatal("empty id")
	}
	if id[:6] != "watch-" {
		t.Errorf("id %q does not start with operation", id)
	}
}
