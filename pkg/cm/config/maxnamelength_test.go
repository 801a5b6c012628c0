package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateConfigDir points the config directory at a temp dir and clears
// the env override.
func isolateConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(MaxNameLengthEnv, "")
	return filepath.Join(dir, "cm")
}

func TestLoadMaxNameLength_DefaultAndWriteBack(t *testing.T) {
	cmDir := isolateConfigDir(t)

	got, err := LoadMaxNameLength()
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxNameLength, got)

	// The default is persisted so the file documents the active value.
	data, err := os.ReadFile(filepath.Join(cmDir, "max_name_length.txt"))
	require.NoError(t, err)
	assert.Equal(t, "50", string(data))
}

func TestLoadMaxNameLength_FromFile(t *testing.T) {
	isolateConfigDir(t)

	require.NoError(t, SetMaxNameLength(120))

	got, err := LoadMaxNameLength()
	require.NoError(t, err)
	assert.Equal(t, 120, got)
}

func TestLoadMaxNameLength_EnvOverridesFile(t *testing.T) {
	isolateConfigDir(t)

	require.NoError(t, SetMaxNameLength(120))
	t.Setenv(MaxNameLengthEnv, "33")

	got, err := LoadMaxNameLength()
	require.NoError(t, err)
	assert.Equal(t, 33, got)
}

func TestLoadMaxNameLength_InvalidEnvFallsThrough(t *testing.T) {
	isolateConfigDir(t)

	require.NoError(t, SetMaxNameLength(70))
	t.Setenv(MaxNameLengthEnv, "not-a-number")

	got, err := LoadMaxNameLength()
	require.NoError(t, err)
	assert.Equal(t, 70, got)
}

func TestLoadMaxNameLength_CorruptFileResetToDefault(t *testing.T) {
	cmDir := isolateConfigDir(t)

	require.NoError(t, os.MkdirAll(cmDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cmDir, "max_name_length.txt"), []byte("garbage"), 0o644))

	got, err := LoadMaxNameLength()
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxNameLength, got)
}

func TestSetMaxNameLength_RejectsNonPositive(t *testing.T) {
	isolateConfigDir(t)

	assert.Error(t, SetMaxNameLength(0))
	assert.Error(t, SetMaxNameLength(-5))
}

func TestResetMaxNameLength(t *testing.T) {
	isolateConfigDir(t)

	require.NoError(t, SetMaxNameLength(99))
	require.NoError(t, ResetMaxNameLength())

	got, err := LoadMaxNameLength()
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxNameLength, got)

	// Resetting when no file exists is fine.
	require.NoError(t, ResetMaxNameLength())
	require.NoError(t, ResetMaxNameLength())
}
