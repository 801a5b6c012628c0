package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_PutAndGet(t *testing.T) {
	c := newTestCache(t)

	fp := &Fingerprint{Size: 1024, MtimeNano: 1234567890, OutputPath: "/out/a.png"}
	require.NoError(t, c.Put("/in", "a.png", fp))

	got, err := c.Get("/in", "a.png")
	require.NoError(t, err)
	assert.Equal(t, fp.Size, got.Size)
	assert.Equal(t, fp.MtimeNano, got.MtimeNano)
	assert.Equal(t, fp.OutputPath, got.OutputPath)
}

func TestCache_Get_NotFound(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Get("/in", "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCache_Put_Overwrites(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Put("/in", "a.png", &Fingerprint{Size: 1}))
	require.NoError(t, c.Put("/in", "a.png", &Fingerprint{Size: 2}))

	got, err := c.Get("/in", "a.png")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Size)
}

func TestCache_RootsAreIsolated(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Put("/in1", "a.png", &Fingerprint{Size: 1}))

	_, err := c.Get("/in2", "a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCache_DeletePrefix_SingleRoot(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Put("/in1", "a.png", &Fingerprint{Size: 1}))
	require.NoError(t, c.Put("/in2", "b.png", &Fingerprint{Size: 2}))

	require.NoError(t, c.DeletePrefix("/in1"))

	_, err := c.Get("/in1", "a.png")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := c.Get("/in2", "b.png")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Size)
}

func TestCache_DeletePrefix_All(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Put("/in1", "a.png", &Fingerprint{Size: 1}))
	require.NoError(t, c.Put("/in2", "b.png", &Fingerprint{Size: 2}))

	require.NoError(t, c.DeletePrefix(""))

	_, err := c.Get("/in1", "a.png")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.Get("/in2", "b.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFingerprint_Matches(t *testing.T) {
	fp := &Fingerprint{Size: 100, MtimeNano: 42}

	assert.True(t, fp.Matches(100, 42))
	assert.False(t, fp.Matches(101, 42))
	assert.False(t, fp.Matches(100, 43))
}

func TestMakeKey_SeparatorPreventsAmbiguity(t *testing.T) {
	// "/a" + "b/c" must not collide with "/a/b" + "c".
	assert.NotEqual(t, MakeKey("/a", "b/c"), MakeKey("/a/b", "c"))
}
