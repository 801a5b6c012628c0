package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "rules"))
	require.NoError(t, err)
	return s
}

func TestStore_AddAndGet(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Add(New("IMG_", "Photo_"))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "IMG_", got.Find)
	assert.Equal(t, "Photo_", got.Replace)
	assert.True(t, got.Enabled)
}

func TestStore_Get_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(uuid.New())
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestStore_List_EmptyDirectory(t *testing.T) {
	s := newTestStore(t)

	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_List_OrderIsStableAcrossCalls(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := s.Add(New("find", "replace"))
		require.NoError(t, err)
	}

	first, err := s.List()
	require.NoError(t, err)
	require.Len(t, first, 5)

	second, err := s.List()
	require.NoError(t, err)
	require.Len(t, second, 5)

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestStore_List_SkipsUnparseableFiles(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Add(New("good", "rule"))
	require.NoError(t, err)

	// An empty rule file and one with a non-UUID name must not abort
	// listing.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), uuid.NewString()+".txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("find\nreplace\n"), 0o644))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "good", list[0].Find)
}

func TestStore_Update(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Add(New("old", "x"))
	require.NoError(t, err)

	r, err := s.Get(id)
	require.NoError(t, err)
	r.Find = "new"
	r.OnlyWhenTooLong = true
	require.NoError(t, s.Update(r))

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Find)
	assert.True(t, got.OnlyWhenTooLong)
}

func TestStore_Update_NotFound(t *testing.T) {
	s := newTestStore(t)

	r := New("find", "replace")
	err := s.Update(r)
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestStore_Remove(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Add(New("find", "replace"))
	require.NoError(t, err)

	removed, err := s.Remove(id)
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = s.Get(id)
	assert.ErrorIs(t, err, ErrRuleNotFound)

	// Removing again reports false without error.
	removed, err = s.Remove(id)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStore_FlagsSurviveRoundTrip(t *testing.T) {
	s := newTestStore(t)

	r := New("find", "replace")
	r.Enabled = false
	r.CaseSensitive = true

	id, err := s.Add(r)
	require.NoError(t, err)

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
	assert.True(t, got.CaseSensitive)
	assert.False(t, got.OnlyWhenTooLong)
}
