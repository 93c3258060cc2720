package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the shared KeyValue contract against an implementation.
func exerciseStore(t *testing.T, store KeyValue) {
	t.Helper()

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("token", "abc"))
	value, ok, err := store.Get("token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", value)

	// Overwrite.
	require.NoError(t, store.Set("token", "def"))
	value, _, err = store.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "def", value)

	require.NoError(t, store.Remove("token"))
	_, ok, err = store.Get("token")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing an absent key is not an error.
	require.NoError(t, store.Remove("missing"))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	path := t.TempDir() + "/state.db"

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("settings", `{"font":"mono"}`))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get("settings")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"font":"mono"}`, value)
}
