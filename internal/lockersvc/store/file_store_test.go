package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "rfid_pairs.csv"))
}

func TestFileStore_MissingFileIsEmptyRegistry(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	ok, err := s.IsRegistered(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.IsCardRegistered(ctx, "111")
	require.NoError(t, err)
	assert.False(t, ok)

	_, found, err := s.FindCardFor(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	names, err := s.LoadAllAppNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	found, err = s.RemoveByAppName(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFileStore_AppendAndLookup(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "111", "a"))
	require.NoError(t, s.Append(ctx, "222", "b"))

	ok, err := s.IsRegistered(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	cardID, found, err := s.FindCardFor(ctx, "b")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "222", cardID)

	ok, err = s.IsCardRegistered(ctx, "333")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_RemoveByAppName(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "111", "a"))
	require.NoError(t, s.Append(ctx, "222", "b"))

	found, err := s.RemoveByAppName(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)

	ok, err := s.IsRegistered(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	// idempotent after effect
	found, err = s.RemoveByAppName(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)

	// the other pairing survives the rewrite
	cardID, ok2, err := s.FindCardFor(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok2)
	assert.Equal(t, "222", cardID)
}

func TestFileStore_PersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rfid_pairs.csv")
	ctx := context.Background()

	s := NewFileStore(path)
	apps := []string{"alpha", "beta", "gamma"}
	for i, app := range apps {
		require.NoError(t, s.Append(ctx, string(rune('1'+i)), app))
	}

	// a fresh store over the same file sees the same names in order
	reloaded := NewFileStore(path)
	names, err := reloaded.LoadAllAppNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, apps, names)
}

func TestFileStore_FirstMatchWins(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	// duplicates should not occur, but the store is defensive about them
	require.NoError(t, s.Append(ctx, "111", "a"))
	require.NoError(t, s.Append(ctx, "999", "a"))

	cardID, found, err := s.FindCardFor(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "111", cardID)
}

func TestFileStore_ToleratesMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rfid_pairs.csv")
	require.NoError(t, os.WriteFile(path, []byte("justonefield\n111,a\n"), 0644))

	s := NewFileStore(path)
	names, err := s.LoadAllAppNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)
}
