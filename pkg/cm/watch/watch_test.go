package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_FiresAfterChangesSettle(t *testing.T) {
	root := t.TempDir()

	fired := make(chan struct{}, 1)
	w, err := New(50*time.Millisecond, func(ctx context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(root, "new.png"), []byte("x"), 0o644))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not fire after file change")
	}
}

func TestWatcher_BurstTriggersSingleBatch(t *testing.T) {
	root := t.TempDir()

	batches := make(chan struct{}, 16)
	w, err := New(200*time.Millisecond, func(ctx context.Context) {
		batches <- struct{}{}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// A burst of writes inside the debounce window.
	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "f"+string(rune('a'+i))+".png")
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-batches:
	case <-time.After(5 * time.Second):
		t.Fatal("batch did not fire")
	}

	// The settled burst produces one batch, not one per event.
	select {
	case <-batches:
		t.Fatal("burst fired more than one batch")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatcher_NewDirectoriesAreWatched(t *testing.T) {
	root := t.TempDir()

	fired := make(chan struct{}, 16)
	w, err := New(50*time.Millisecond, func(ctx context.Context) {
		fired <- struct{}{}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(root))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("mkdir did not fire a batch")
	}

	// A file inside the new directory must also be seen.
	require.NoError(t, os.WriteFile(filepath.Join(sub, "inner.png"), []byte("x"), 0o644))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("file in new directory did not fire a batch")
	}
}

func TestWatcher_IgnoresOutputTrees(t *testing.T) {
	w := &Watcher{}

	assert.True(t, w.isOutputPath("/data/scans-output/a.png"))
	assert.True(t, w.isOutputPath("/data/scans-output/sub/a.png"))
	assert.False(t, w.isOutputPath("/data/scans/a.png"))
	assert.False(t, w.isOutputPath("/data/output-scans/a.png"))
}

func TestWatcher_WatchMissingRoot(t *testing.T) {
	w, err := New(0, func(ctx context.Context) {})
	require.NoError(t, err)
	defer w.Close()

	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing")))
}

func TestWatcher_FileRootWatchesParent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "single.png")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	fired := make(chan struct{}, 1)
	w, err := New(50*time.Millisecond, func(ctx context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(file))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(file, []byte("changed"), 0o644))

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("file change did not fire a batch")
	}
}
