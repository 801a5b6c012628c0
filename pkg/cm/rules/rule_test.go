package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	r := New("IMG_", "Photo_")

	assert.True(t, r.Enabled)
	assert.False(t, r.CaseSensitive)
	assert.False(t, r.OnlyWhenTooLong)
	assert.NotEqual(t, r.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestRule_Apply_CaseInsensitiveByDefault(t *testing.T) {
	r := New("img_", "Photo_")

	got, changed := r.Apply("IMG_0001.jpg", 50)
	require.True(t, changed)
	assert.Equal(t, "Photo_0001.jpg", got)
}

func TestRule_Apply_CaseSensitive(t *testing.T) {
	r := New("img_", "Photo_")
	r.CaseSensitive = true

	_, changed := r.Apply("IMG_0001.jpg", 50)
	assert.False(t, changed)

	got, changed := r.Apply("img_0001.jpg", 50)
	require.True(t, changed)
	assert.Equal(t, "Photo_0001.jpg", got)
}

func TestRule_Apply_CaptureGroups(t *testing.T) {
	r := New(`IMG_(\d+)`, "Photo_$1")

	got, changed := r.Apply("IMG_0042.png", 50)
	require.True(t, changed)
	assert.Equal(t, "Photo_0042.png", got)
}

func TestRule_Apply_ReplacesAllOccurrences(t *testing.T) {
	r := New("copy", "")

	got, changed := r.Apply("copy of copy.png", 50)
	require.True(t, changed)
	assert.Equal(t, " of .png", got)
}

func TestRule_Apply_Disabled(t *testing.T) {
	r := New("IMG_", "Photo_")
	r.Enabled = false

	_, changed := r.Apply("IMG_0001.jpg", 50)
	assert.False(t, changed)
}

func TestRule_Apply_EmptyFind(t *testing.T) {
	r := New("", "Photo_")

	_, changed := r.Apply("IMG_0001.jpg", 50)
	assert.False(t, changed)
}

func TestRule_Apply_UncompilablePatternIsInert(t *testing.T) {
	r := New("[unclosed", "x")

	_, changed := r.Apply("anything[unclosed", 50)
	assert.False(t, changed)
}

func TestRule_Apply_NoMatchReportsUnchanged(t *testing.T) {
	r := New("zzz", "yyy")

	_, changed := r.Apply("IMG_0001.jpg", 50)
	assert.False(t, changed)
}

func TestRule_Apply_NoOpReplacementReportsUnchanged(t *testing.T) {
	// The pattern matches but the replacement produces the same name.
	r := New("IMG", "IMG")
	r.CaseSensitive = true

	_, changed := r.Apply("IMG_0001.jpg", 50)
	assert.False(t, changed)
}

func TestRule_Apply_OnlyWhenTooLong(t *testing.T) {
	r := New(" - shot on location", "")
	r.OnlyWhenTooLong = true

	// Exactly at the threshold: rule does not fire even though it matches.
	_, changed := r.Apply("x - shot on location", 20)
	assert.False(t, changed)

	// Over the threshold: rule fires.
	got, changed := r.Apply("a very long name - shot on location.png", 20)
	require.True(t, changed)
	assert.Equal(t, "a very long name.png", got)
}

func TestRule_Apply_OnlyWhenTooLong_CountsRunes(t *testing.T) {
	r := New("é", "e")
	r.OnlyWhenTooLong = true

	// 4 runes even though more bytes; threshold 4 means not too long.
	_, changed := r.Apply("éééé", 4)
	assert.False(t, changed)

	got, changed := r.Apply("ééééé", 4)
	require.True(t, changed)
	assert.Equal(t, "eeeee", got)
}

func TestRule_Compile_PrependsCaseFold(t *testing.T) {
	r := New("abc", "x")

	re, err := r.Compile()
	require.NoError(t, err)
	assert.True(t, re.MatchString("ABC"))

	r.CaseSensitive = true
	re, err = r.Compile()
	require.NoError(t, err)
	assert.False(t, re.MatchString("ABC"))
}
