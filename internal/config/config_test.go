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

func TestDefaultWeightsMatchShippedSplit(t *testing.T) {
	w := DefaultWeights()
	assert.Equal(t, 0.40, w.Keyword)
	assert.Equal(t, 0.30, w.Semantic)
	assert.Equal(t, 0.20, w.Skill)
	assert.Equal(t, 0.10, w.Format)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero top_k", func(c *Config) { c.TopK = 0 }},
		{"zero max_chars", func(c *Config) { c.MaxChars = 0 }},
		{"overlap >= chunk size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"temperature out of range", func(c *Config) { c.Temperature = 2.5 }},
		{"weights not summing to one", func(c *Config) { c.ScoreWeights.Keyword = 0.5 }},
		{"empty font ladder", func(c *Config) { c.FontSizes = nil }},
		{"non-descending font ladder", func(c *Config) { c.FontSizes = []float64{9.0, 9.5} }},
		{"repeated font size", func(c *Config) { c.FontSizes = []float64{9.0, 9.0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"top_k": 7, "port": 9999}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.TopK)
	assert.Equal(t, 9999, cfg.Port)
	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultMaxChars, cfg.MaxChars)
	assert.Equal(t, DefaultPrimaryModel, cfg.PrimaryModel)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_key": "from-file", "database_url": "file-url"}`), 0o644))

	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("DATABASE_URL", "env-url")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, "env-url", cfg.DatabaseURL)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadInvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"top_k": -1}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
