package job

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURI(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}

func testStore(t *testing.T, s Store) {
	t.Helper()

	require.NoError(t, s.Add(FileInfo{URI: "a.dita", Result: "file:///out/a.dita", Format: "dita"}))
	require.NoError(t, s.Add(FileInfo{URI: "sub/b.dita", Result: "file:///out/sub/b.dita", Format: "dita"}))

	uris, err := s.ResultURIs()
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"file:///out/a.dita":     {},
		"file:///out/sub/b.dita": {},
	}, uris)

	fi, ok, err := s.ForResult(mustURI(t, "file:///out/a.dita"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, FileInfo{URI: "a.dita", Result: "file:///out/a.dita", Format: "dita"}, fi)

	_, ok, err = s.ForResult(mustURI(t, "file:///out/missing.dita"))
	require.NoError(t, err)
	assert.False(t, ok)

	// Re-adding the same URI replaces the earlier entry.
	require.NoError(t, s.Add(FileInfo{URI: "a.dita", Result: "file:///out/renamed.dita", Format: "dita"}))
	uris, err = s.ResultURIs()
	require.NoError(t, err)
	assert.Contains(t, uris, "file:///out/renamed.dita")
	assert.NotContains(t, uris, "file:///out/a.dita")
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer func() { _ = s.Close() }()
	testStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLiteStore(t.TempDir() + "/job.db")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	testStore(t, s)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := t.TempDir() + "/job.db"

	s, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Add(FileInfo{URI: "a.dita", Result: "file:///out/a.dita", Format: "dita"}))
	require.NoError(t, s.Close())

	s, err = OpenSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	fi, ok, err := s.ForResult(mustURI(t, "file:///out/a.dita"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a.dita", fi.URI)
}
