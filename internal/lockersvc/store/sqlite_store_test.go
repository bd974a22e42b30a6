package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "rfid_pairs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// the sqlite store must satisfy the same contract as the flat file
func TestSQLiteStore_Contract(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	ok, err := s.IsRegistered(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Append(ctx, "111", "a"))
	require.NoError(t, s.Append(ctx, "222", "b"))

	ok, err = s.IsRegistered(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	cardID, found, err := s.FindCardFor(ctx, "b")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "222", cardID)

	ok, err = s.IsCardRegistered(ctx, "333")
	require.NoError(t, err)
	assert.False(t, ok)

	names, err := s.LoadAllAppNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	found, err = s.RemoveByAppName(ctx, "a")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.RemoveByAppName(ctx, "a")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStore_FirstMatchWins(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "111", "a"))
	require.NoError(t, s.Append(ctx, "999", "a"))

	cardID, found, err := s.FindCardFor(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "111", cardID)
}
