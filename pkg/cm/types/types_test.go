package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanEntry_NewBase(t *testing.T) {
	e := PlanEntry{NewPath: "/data/scans/sub/photo.png"}
	assert.Equal(t, "photo.png", e.NewBase())
}

func TestProcessError_String(t *testing.T) {
	e := ProcessError{Path: "/in/a.png", Cause: "decoding image: unexpected EOF"}
	assert.Equal(t, "/in/a.png: decoding image: unexpected EOF", e.String())
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes))
	}
}

func TestReport_ErroredMatchesErrors(t *testing.T) {
	r := Report{
		Processed: 2,
		Errored:   1,
		Errors:    []ProcessError{{Path: "/in/x.png", Cause: "stat: no such file"}},
		Elapsed:   time.Second,
	}
	assert.Len(t, r.Errors, r.Errored)
}
