package fetcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore_WriteNamesByTimestamp(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSnapshotStore(dir)
	require.NoError(t, err)

	capturedAt := time.Date(2026, 8, 22, 15, 4, 5, 0, time.UTC)
	path, err := store.Write("matches_PL", capturedAt, []byte(`{"matches":[]}`))
	require.NoError(t, err)

	assert.Equal(t, "matches_PL_20260822_150405.json", filepath.Base(path))
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"matches":[]}`, string(body))
}

func TestSnapshotStore_NeverOverwrites(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	capturedAt := time.Date(2026, 8, 22, 15, 4, 5, 0, time.UTC)
	first, err := store.Write("matches_PL", capturedAt, []byte("first"))
	require.NoError(t, err)
	second, err := store.Write("matches_PL", capturedAt, []byte("second"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	body, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "first", string(body), "existing snapshots are immutable")
}

func TestNewSnapshotStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "snapshots")
	_, err := NewSnapshotStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
