package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_DefaultsOmitFlags(t *testing.T) {
	r := New("IMG_", "Photo_")

	assert.Equal(t, "IMG_\nPhoto_\n", Encode(r))
}

func TestEncode_WritesDeviatingFlags(t *testing.T) {
	r := New("IMG_", "Photo_")
	r.Enabled = false
	r.CaseSensitive = true
	r.OnlyWhenTooLong = true

	assert.Equal(t, "IMG_\nPhoto_\ndisabled\ncase-sensitive\nonly-when-too-long\n", Encode(r))
}

func TestDecode_RoundTrip(t *testing.T) {
	orig := New(`IMG_(\d+)`, "Photo_$1")
	orig.OnlyWhenTooLong = true

	decoded, err := Decode(Encode(orig))
	require.NoError(t, err)

	assert.Equal(t, orig.Find, decoded.Find)
	assert.Equal(t, orig.Replace, decoded.Replace)
	assert.Equal(t, orig.Enabled, decoded.Enabled)
	assert.Equal(t, orig.CaseSensitive, decoded.CaseSensitive)
	assert.Equal(t, orig.OnlyWhenTooLong, decoded.OnlyWhenTooLong)
}

func TestDecode_TwoLineFile(t *testing.T) {
	r, err := Decode("find\nreplace\n")
	require.NoError(t, err)

	assert.Equal(t, "find", r.Find)
	assert.Equal(t, "replace", r.Replace)
	assert.True(t, r.Enabled)
	assert.False(t, r.CaseSensitive)
}

func TestDecode_FindOnly(t *testing.T) {
	r, err := Decode("find")
	require.NoError(t, err)

	assert.Equal(t, "find", r.Find)
	assert.Equal(t, "", r.Replace)
}

func TestDecode_EmptyFile(t *testing.T) {
	_, err := Decode("")
	assert.ErrorIs(t, err, ErrEmptyRule)
}

func TestDecode_UnknownFlag(t *testing.T) {
	_, err := Decode("find\nreplace\nbogus-flag\n")
	assert.Error(t, err)
}

func TestDecode_EmptyReplacementPreserved(t *testing.T) {
	r, err := Decode("find\n\n")
	require.NoError(t, err)

	assert.Equal(t, "", r.Replace)
}

func TestDecode_Legacy_AlwaysMarker(t *testing.T) {
	// Legacy files matched case-sensitively by default.
	r, err := Decode("find\nreplace\nalways\n")
	require.NoError(t, err)

	assert.True(t, r.Enabled)
	assert.True(t, r.CaseSensitive)
	assert.False(t, r.OnlyWhenTooLong)
}

func TestDecode_Legacy_CaseInsensitiveMarker(t *testing.T) {
	r, err := Decode("find\nreplace\ncase-insensitive\n")
	require.NoError(t, err)

	assert.False(t, r.CaseSensitive)
}

func TestDecode_Legacy_WhenLengthMarker(t *testing.T) {
	// The literal threshold is discarded; the configured max name
	// length applies at apply time instead.
	r, err := Decode("find\nreplace\nwhen len > 64\n")
	require.NoError(t, err)

	assert.True(t, r.OnlyWhenTooLong)
	assert.True(t, r.CaseSensitive)
}

func TestDecode_Legacy_BareLengthMarker(t *testing.T) {
	r, err := Decode("find\nreplace\nlen > 10\n")
	require.NoError(t, err)

	assert.True(t, r.OnlyWhenTooLong)
}

func TestDecode_Legacy_CombinedMarkers(t *testing.T) {
	r, err := Decode("find\nreplace\ncase-insensitive\nwhen len > 20\n")
	require.NoError(t, err)

	assert.False(t, r.CaseSensitive)
	assert.True(t, r.OnlyWhenTooLong)
}
