package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Chunking.Size)
	assert.Equal(t, BackendMemory, cfg.Vector.Backend)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chunking:
  size: 800
llm:
  model: some-other-model
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Chunking.Size)
	assert.Equal(t, "some-other-model", cfg.LLM.Model)
	// Untouched sections keep their defaults.
	assert.Equal(t, 100, cfg.Chunking.Overlap)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("VECTOR_BACKEND", BackendQdrant)
	t.Setenv("QDRANT_PORT", "7000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BackendQdrant, cfg.Vector.Backend)
	assert.Equal(t, 7000, cfg.Vector.QdrantPort)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Vector.Backend = "redis"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Chunking.Overlap = cfg.Chunking.Size
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LLM.TimeoutSeconds = 0
	assert.Error(t, cfg.Validate())
}
