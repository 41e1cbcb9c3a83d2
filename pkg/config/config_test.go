package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ".", cfg.Repository)
	assert.Equal(t, 4, cfg.MaxParallel)
	assert.Equal(t, "mock", cfg.Model.Adapter)
	assert.Equal(t, 30*time.Second, cfg.Tools.DiffTimeout)
	assert.Equal(t, 15*time.Second, cfg.Tools.CommandTimeout)
	assert.Equal(t, 80000, cfg.Tools.MaxDiffChars)
	assert.Equal(t, 50000, cfg.Tools.MaxFileChars)
	assert.Equal(t, 3, cfg.Tools.StructureDepth)
}

func TestLoad_File(t *testing.T) {
	f := filepath.Join(t.TempDir(), "reviewflow.yaml")
	require.NoError(t, os.WriteFile(f, []byte(`
repository: /src/app
max_parallel: 2
model:
  adapter: google
  name: gemini-2.0-flash
tools:
  diff_timeout: 1m
  max_diff_chars: 1000
`), 0o600))

	cfg, err := Load(f)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.MaxParallel)
	assert.Equal(t, "google", cfg.Model.Adapter)
	assert.Equal(t, time.Minute, cfg.Tools.DiffTimeout)
	assert.Equal(t, 1000, cfg.Tools.MaxDiffChars)
	// untouched fields keep defaults
	assert.Equal(t, 50000, cfg.Tools.MaxFileChars)
	assert.Equal(t, 15*time.Second, cfg.Tools.CommandTimeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/reviewflow.yaml")
	assert.ErrorContains(t, err, "reading config file")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvRepository:   "/work",
		EnvModelAdapter: "anthropic",
		EnvModel:        "claude-sonnet-4-20250514",
		EnvMaxParallel:  "8",
		EnvAnthropicKey: "sk-ant",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/work", cfg.Repository)
	assert.Equal(t, "anthropic", cfg.Model.Adapter)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Model.Name)
	assert.Equal(t, 8, cfg.MaxParallel)
	assert.Equal(t, "sk-ant", cfg.Keys.Anthropic)

	err = cfg.ApplyEnv(envMap(map[string]string{EnvMaxParallel: "many"}))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no repository", func(c *Config) { c.Repository = "" }},
		{"zero pool", func(c *Config) { c.MaxParallel = 0 }},
		{"zero timeout", func(c *Config) { c.Tools.DiffTimeout = 0 }},
		{"zero cap", func(c *Config) { c.Tools.MaxFileChars = 0 }},
		{"negative depth", func(c *Config) { c.Tools.StructureDepth = -1 }},
		{"bad glob", func(c *Config) { c.Tools.StructureExcludes = []string{"[a-"} }},
		{"unknown adapter", func(c *Config) { c.Model.Adapter = "llama" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWithModel(t *testing.T) {
	base := Default()
	base.Model.Name = "mock-1"

	got := base.WithModel("openai", "")
	assert.Equal(t, "openai", got.Model.Adapter)
	assert.Empty(t, got.Model.Name)
	assert.Equal(t, "mock", base.Model.Adapter)

	got = base.WithModel("", "mock-2")
	assert.Equal(t, "mock", got.Model.Adapter)
	assert.Equal(t, "mock-2", got.Model.Name)
}

func TestToolSettings(t *testing.T) {
	cfg := Default()
	cfg.Tools.MaxDiffChars = 10

	s := cfg.ToolSettings()
	assert.Equal(t, 10, s.MaxDiffChars)
	assert.Equal(t, cfg.Tools.StructureExcludes, s.StructureExcludes)
}
