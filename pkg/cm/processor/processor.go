// Package processor orchestrates a batch run: for every planned file it
// resolves the owning input root, derives the destination, decodes and
// optionally crops the image, and writes the result into the output
// tree. One file's failure never blocks any other file.
package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TeamDman/cm-sub000/pkg/cm/cache"
	"github.com/TeamDman/cm-sub000/pkg/cm/imaging"
	"github.com/TeamDman/cm-sub000/pkg/cm/logging"
	"github.com/TeamDman/cm-sub000/pkg/cm/outpath"
	"github.com/TeamDman/cm-sub000/pkg/cm/planner"
	"github.com/TeamDman/cm-sub000/pkg/cm/types"
)

// ProgressFunc receives advisory progress updates. done counts files
// whose processing has started, in completion order, not input order.
// It may be called from multiple worker goroutines concurrently.
type ProgressFunc func(done, total int, path string)

// Options configures a batch run.
type Options struct {
	// Roots is the read-only snapshot of input roots for this batch.
	Roots []string

	// Settings controls image processing.
	Settings imaging.Settings

	// Workers is the number of concurrent file workers. Zero or less
	// means one per CPU.
	Workers int

	// OnProgress, if set, is called once per file as work begins.
	OnProgress ProgressFunc

	// Cache, if set, lets unchanged sources with existing destinations
	// be skipped.
	Cache *cache.Cache

	// Force disables the unchanged-source skip.
	Force bool
}

// Processor runs batches. Each call to Run is independent; the only
// shared state during a run is a set of atomic counters and a
// mutex-guarded error slice.
type Processor struct {
	opts Options

	total        int
	started      atomic.Int64
	processed    atomic.Int64
	skipped      atomic.Int64
	bytesWritten atomic.Int64

	errs   []types.ProcessError
	errsMu sync.Mutex
}

// New creates a Processor with the given options.
func New(opts Options) *Processor {
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	return &Processor{opts: opts}
}

// Run processes every plan entry and returns the batch report. The
// batch always completes: per-file failures are recorded and counted,
// never propagated. Cancellation is cooperative; a file already being
// processed runs to completion, remaining files are left untouched.
func (p *Processor) Run(ctx context.Context, plan *planner.Plan) *types.Report {
	start := time.Now()
	p.total = len(plan.Entries)
	p.errs = make([]types.ProcessError, 0)

	jobs := make(chan types.PlanEntry)
	go func() {
		defer close(jobs)
		for _, entry := range plan.Entries {
			select {
			case <-ctx.Done():
				return
			default:
			}
			select {
			case <-ctx.Done():
				return
			case jobs <- entry:
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < p.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				p.processOne(entry, plan)
			}
		}()
	}
	wg.Wait()

	p.errsMu.Lock()
	errs := p.errs
	p.errsMu.Unlock()

	return &types.Report{
		Processed:    int(p.processed.Load()),
		Skipped:      int(p.skipped.Load()),
		Errored:      len(errs),
		Errors:       errs,
		BytesWritten: p.bytesWritten.Load(),
		Elapsed:      time.Since(start),
	}
}

// processOne handles a single plan entry end to end.
func (p *Processor) processOne(entry types.PlanEntry, plan *planner.Plan) {
	logger := logging.Get("processor")

	n := int(p.started.Add(1))
	if p.opts.OnProgress != nil {
		p.opts.OnProgress(n, p.total, entry.OriginalPath)
	}

	source := entry.OriginalPath

	if dest, lost := plan.CollisionDest(source); lost {
		p.addError(source, fmt.Sprintf("destination collision: %s is claimed by an earlier source", dest))
		return
	}

	root, ok := outpath.ResolveRoot(source, p.opts.Roots)
	if !ok {
		p.addError(source, "no configured input root contains this file")
		return
	}

	dest, err := outpath.OutputPath(source, root, entry.NewBase())
	if err != nil {
		p.addError(source, fmt.Sprintf("deriving output path: %v", err))
		return
	}

	info, err := os.Stat(source)
	if err != nil {
		p.addError(source, fmt.Sprintf("stat: %v", err))
		return
	}

	relPath := relUnder(source, root)

	if p.canSkip(root, relPath, dest, info.Size(), info.ModTime().UnixNano()) {
		logger.Debug("source unchanged, skipping", "file", source)
		p.skipped.Add(1)
		return
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		p.addError(source, fmt.Sprintf("creating output directory: %v", err))
		return
	}

	processed, err := imaging.Process(source, p.opts.Settings)
	if err != nil {
		p.addError(source, err.Error())
		return
	}

	if err := writeAtomic(dest, processed.Data); err != nil {
		p.addError(source, fmt.Sprintf("writing %s: %v", dest, err))
		return
	}

	p.updateFingerprint(root, relPath, dest, info.Size(), info.ModTime().UnixNano())

	p.processed.Add(1)
	p.bytesWritten.Add(processed.EstimatedSize)
	logger.Debug("wrote output",
		"source", source, "dest", dest,
		"cropped", processed.WasCropped, "bytes", processed.EstimatedSize)
}

// canSkip reports whether the source is unchanged since its fingerprint
// was recorded and its destination already exists.
func (p *Processor) canSkip(root, relPath, dest string, size, mtimeNano int64) bool {
	if p.opts.Cache == nil || p.opts.Force {
		return false
	}

	fp, err := p.opts.Cache.Get(root, relPath)
	if err != nil {
		return false
	}
	if !fp.Matches(size, mtimeNano) || fp.OutputPath != dest {
		return false
	}

	_, err = os.Stat(dest)
	return err == nil
}

// updateFingerprint records the source state after a successful write.
// Cache failures are logged, never fatal.
func (p *Processor) updateFingerprint(root, relPath, dest string, size, mtimeNano int64) {
	if p.opts.Cache == nil {
		return
	}

	fp := &cache.Fingerprint{Size: size, MtimeNano: mtimeNano, OutputPath: dest}
	if err := p.opts.Cache.Put(root, relPath, fp); err != nil {
		logging.Get("processor").Warn("fingerprint update failed", "root", root, "path", relPath, "error", err)
	}
}

// addError records a per-file failure thread-safely.
func (p *Processor) addError(path, cause string) {
	logging.Get("processor").Warn("file failed", "file", path, "cause", cause)

	p.errsMu.Lock()
	p.errs = append(p.errs, types.ProcessError{Path: path, Cause: cause})
	p.errsMu.Unlock()
}

// relUnder returns path relative to root, or its base name when path is
// the root itself.
func relUnder(path, root string) string {
	if path == root {
		return filepath.Base(path)
	}
	return strings.TrimPrefix(path, root+string(filepath.Separator))
}

// writeAtomic writes data via a temp file and rename so the destination
// either holds the full output or does not exist.
func writeAtomic(dest string, data []byte) error {
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
