// Package types provides core data types for the cm rename and crop
// pipeline. It includes the rename plan entry, the batch report, and
// helpers for formatting sizes in human-readable form.
package types

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
)

// PlanEntry is the planned outcome for a single discovered file.
// Rules transform the file's base name only; the directory segments of
// NewPath always equal those of OriginalPath.
type PlanEntry struct {
	// OriginalPath is the absolute path of the discovered source file.
	OriginalPath string `json:"original_path"`

	// NewPath is OriginalPath with the final component replaced by the
	// name produced by the rule list.
	NewPath string `json:"new_path"`

	// WasRenamed reports whether the final name differs from the original.
	WasRenamed bool `json:"was_renamed"`

	// IsTooLong reports whether the final name still exceeds the
	// configured maximum name length after all rules ran.
	IsTooLong bool `json:"is_too_long"`
}

// NewBase returns the final path component of the planned name.
func (e *PlanEntry) NewBase() string {
	return filepath.Base(e.NewPath)
}

// ProcessError records a single per-file failure during batch processing.
// It pairs the offending path with the underlying cause so callers can
// retry selectively.
type ProcessError struct {
	// Path is the source file (or destination) the failure relates to.
	Path string `json:"path"`

	// Cause is the human-readable reason for the failure.
	Cause string `json:"cause"`
}

// String renders the error in "path: cause" form for reports.
func (e ProcessError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Cause)
}

// Report aggregates the outcome of one batch run. The batch always
// completes; failures are enumerated rather than aborting.
type Report struct {
	// Processed is the number of files written successfully.
	Processed int `json:"processed"`

	// Skipped is the number of files left untouched because their source
	// fingerprint matched the cache and the destination already exists.
	Skipped int `json:"skipped"`

	// Errored is the number of files that failed. It always equals
	// len(Errors).
	Errored int `json:"errored"`

	// Errors lists every per-file failure with enough context to retry.
	Errors []ProcessError `json:"errors,omitempty"`

	// BytesWritten is the total size of all encoded outputs.
	BytesWritten int64 `json:"bytes_written"`

	// Elapsed is the wall-clock duration of the batch.
	Elapsed time.Duration `json:"elapsed"`
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
