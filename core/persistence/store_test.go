package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	open := func(t *testing.T) *SQLiteStore {
		t.Helper()
		store, err := OpenSQLite(filepath.Join(t.TempDir(), "pets.db"))
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		return store
	}

	t.Run("SaveAndLoad", func(t *testing.T) {
		store := open(t)
		blob := []byte(`{"version":1,"pet_id":"p1"}`)
		require.NoError(t, store.Save("p1", blob))

		loaded, err := store.Load("p1")
		require.NoError(t, err)
		assert.Equal(t, blob, loaded)
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		store := open(t)
		require.NoError(t, store.Save("p1", []byte("old")))
		require.NoError(t, store.Save("p1", []byte("new")))

		loaded, err := store.Load("p1")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), loaded)
	})

	t.Run("MissingIsNotFound", func(t *testing.T) {
		store := open(t)
		_, err := store.Load("ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List", func(t *testing.T) {
		store := open(t)
		require.NoError(t, store.Save("b", []byte("1")))
		require.NoError(t, store.Save("a", []byte("2")))

		ids, err := store.List()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids)
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save("p1", []byte("blob")))

	loaded, err := store.Load("p1")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), loaded)

	_, err = store.Load("p2")
	assert.ErrorIs(t, err, ErrNotFound)
}
