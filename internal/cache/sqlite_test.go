package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) (*SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, path
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "cache.db")

	c, err := Open(path)
	require.NoError(t, err)
	defer c.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file should exist")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c1.Close())

	c2, err := Open(path)
	require.NoError(t, err)
	defer c2.Close()
}

func TestSQLite_PutFetchDelete(t *testing.T) {
	c, _ := openTestCache(t)

	require.NoError(t, c.Put("fingerprints/v1", []byte(`{"records":{}}`)))

	value, ok, err := c.Fetch("fingerprints/v1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"records":{}}`), value)

	require.NoError(t, c.Delete("fingerprints/v1"))
	_, ok, err = c.Fetch("fingerprints/v1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite_FetchMissingKey(t *testing.T) {
	c, _ := openTestCache(t)

	_, ok, err := c.Fetch("nope")
	require.NoError(t, err)
	assert.False(t, ok, "missing key is a data condition, not an error")
}

func TestSQLite_PutOverwrites(t *testing.T) {
	c, _ := openTestCache(t)

	require.NoError(t, c.Put("k", []byte("old")))
	require.NoError(t, c.Put("k", []byte("new")))

	value, ok, err := c.Fetch("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), value)
}

func TestSQLite_DeleteMissingKey(t *testing.T) {
	c, _ := openTestCache(t)
	assert.NoError(t, c.Delete("never-stored"))
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	c, path := openTestCache(t)
	require.NoError(t, c.Put("k", []byte("persisted")))
	require.NoError(t, c.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Fetch("k")
	require.NoError(t, err)
	require.True(t, ok, "values must survive across runs")
	assert.Equal(t, []byte("persisted"), value)
}

func TestSQLite_Pragmas(t *testing.T) {
	c, _ := openTestCache(t)

	assert.NoError(t, c.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, c.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, c.verifyPragma("user_version", "1"))
}
