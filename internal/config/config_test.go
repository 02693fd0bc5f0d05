package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docfold.hcl")
	src := `
root_chunk  = "to-content by-topic"
navigation  = true
name_scheme = "hash"
job_db      = "/tmp/job.db"
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "to-content by-topic", cfg.RootChunk)
	assert.True(t, cfg.Navigation)
	assert.Equal(t, "hash", cfg.NameScheme)
	assert.Equal(t, "/tmp/job.db", cfg.JobDB)
	assert.Equal(t, "", cfg.TempDir)
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docfold.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`navigation = true`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Navigation)
	assert.Equal(t, "default", cfg.NameScheme)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docfold.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`navigation = `), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
