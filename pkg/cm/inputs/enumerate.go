package inputs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/TeamDman/cm-sub000/pkg/cm/logging"
	"github.com/charlievieth/fastwalk"
	"github.com/gobwas/glob"
)

// Enumerate walks every root and returns the flat list of regular files
// under them, sorted for deterministic planning. Symlinks are not
// followed. A root that is itself a regular file is included directly.
// Unreadable entries are logged and skipped; they never abort the walk.
func Enumerate(ctx context.Context, roots []string, exclude []string) ([]string, error) {
	matchers, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	logger := logging.Get("inputs")

	var (
		files []string
		mu    sync.Mutex
	)

	conf := fastwalk.Config{
		Follow: false, // Don't follow symlinks.
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			logger.Warn("skipping unreadable input root", "root", root, "error", err)
			continue
		}

		if !info.IsDir() {
			if info.Mode().IsRegular() && !isExcluded(root, matchers) {
				files = append(files, root)
			}
			continue
		}

		walkErr := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil {
				logger.Warn("walk error", "path", path, "error", err)
				return nil
			}

			if isExcluded(path, matchers) {
				if d.IsDir() {
					return fastwalk.SkipDir
				}
				return nil
			}

			if d.Type().IsRegular() {
				mu.Lock()
				files = append(files, path)
				mu.Unlock()
			}
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}

	sort.Strings(files)
	return files, nil
}

// compileExcludes compiles glob patterns once for the whole walk.
func compileExcludes(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, g)
	}
	return matchers, nil
}

// isExcluded checks a path's base name and full path against the
// exclusion patterns.
func isExcluded(path string, matchers []glob.Glob) bool {
	base := filepath.Base(path)
	for _, g := range matchers {
		if g.Match(base) || g.Match(path) {
			return true
		}
	}
	return false
}
