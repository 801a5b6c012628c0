package cache

import (
	"bytes"
	"encoding/gob"
)

// KeySeparator separates root from relative path in cache keys.
const KeySeparator = '\x00'

// Fingerprint captures the state of a source file at the time its output
// was last written. A matching fingerprint plus an existing destination
// means the file can be skipped.
type Fingerprint struct {
	// Size is the source file size in bytes.
	Size int64

	// MtimeNano is the source modification time as UnixNano.
	MtimeNano int64

	// OutputPath is the destination written for this source.
	OutputPath string
}

// Matches reports whether the source metadata still agrees with the
// fingerprint.
func (f *Fingerprint) Matches(size, mtimeNano int64) bool {
	return f.Size == size && f.MtimeNano == mtimeNano
}

// Encode serializes the fingerprint to bytes using gob.
func (f *Fingerprint) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes bytes into the fingerprint using gob.
func (f *Fingerprint) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(f)
}

// MakeKey creates a cache key from root and relative path.
// Format: <root>\x00<relative_path>
func MakeKey(root, relPath string) []byte {
	return []byte(root + string(KeySeparator) + relPath)
}

// MakeKeyPrefix returns the prefix for all keys under a root.
func MakeKeyPrefix(root string) []byte {
	return []byte(root + string(KeySeparator))
}
