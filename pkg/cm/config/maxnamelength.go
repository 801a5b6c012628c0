package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultMaxNameLength is used when neither the environment nor the
// persisted file provides a value.
const DefaultMaxNameLength = 50

// maxNameLengthFile is the file name under the config directory that
// persists the max name length.
const maxNameLengthFile = "max_name_length.txt"

// MaxNameLengthEnv overrides the persisted max name length when set.
const MaxNameLengthEnv = "CM_MAX_NAME_LENGTH"

// MaxNameLengthPath returns the path of the persisted max name length file.
func MaxNameLengthPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, maxNameLengthFile), nil
}

// LoadMaxNameLength resolves the maximum name length:
//  1. $CM_MAX_NAME_LENGTH if set and valid (no file is created),
//  2. the trimmed contents of max_name_length.txt if present and valid,
//  3. otherwise the default, which is also written back to the file.
//
// The resolved value is an explicit input to the planner and processor;
// this function is called once by the CLI before a batch runs.
func LoadMaxNameLength() (int, error) {
	if env := os.Getenv(MaxNameLengthEnv); env != "" {
		if v, err := strconv.Atoi(strings.TrimSpace(env)); err == nil && v > 0 {
			return v, nil
		}
		// Invalid env value falls through to file/default.
	}

	path, err := MaxNameLengthPath()
	if err != nil {
		return 0, err
	}

	if data, err := os.ReadFile(path); err == nil {
		s := strings.TrimSpace(string(data))
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v, nil
		}
		// Invalid contents: reset to default below.
	}

	if err := SetMaxNameLength(DefaultMaxNameLength); err != nil {
		return 0, err
	}
	return DefaultMaxNameLength, nil
}

// SetMaxNameLength persists the given value to the config file.
func SetMaxNameLength(value int) error {
	if value <= 0 {
		return fmt.Errorf("max name length must be positive, got %d", value)
	}

	path, err := MaxNameLengthPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(value)), 0o644); err != nil {
		return fmt.Errorf("writing max name length: %w", err)
	}
	return nil
}

// ResetMaxNameLength removes the persisted file so the next load returns
// the default. Removing a file that does not exist is not an error.
func ResetMaxNameLength() error {
	path, err := MaxNameLengthPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing max name length file: %w", err)
	}
	return nil
}
