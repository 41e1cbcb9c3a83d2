// Package config holds the run configuration: repository location, pool
// size, model selection and tool limits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/systemstart/reviewflow/pkg/models"
	"github.com/systemstart/reviewflow/pkg/tools"
)

const (
	EnvRepository   = "REVIEWFLOW_REPOSITORY"
	EnvModelAdapter = "REVIEWFLOW_MODEL_ADAPTER"
	EnvModel        = "REVIEWFLOW_MODEL"
	EnvMaxParallel  = "REVIEWFLOW_MAX_PARALLEL"

	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvGoogleKey    = "GOOGLE_API_KEY"

	DefaultMaxParallel = 4
)

// Config is the run configuration.
type Config struct {
	Repository  string      `yaml:"repository"`
	MaxParallel int         `yaml:"max_parallel"`
	Model       ModelConfig `yaml:"model"`
	Tools       ToolsConfig `yaml:"tools"`

	// Credentials come from the environment only.
	Keys models.Keys `yaml:"-"`
}

// ModelConfig selects the adapter used by model workers.
type ModelConfig struct {
	Adapter string `yaml:"adapter"`
	Name    string `yaml:"name"`
}

// ToolsConfig bounds tool invocations.
type ToolsConfig struct {
	DiffTimeout       time.Duration `yaml:"diff_timeout"`
	CommandTimeout    time.Duration `yaml:"command_timeout"`
	MaxDiffChars      int           `yaml:"max_diff_chars"`
	MaxFileChars      int           `yaml:"max_file_chars"`
	StructureDepth    int           `yaml:"structure_depth"`
	StructureExcludes []string      `yaml:"structure_excludes"`
}

// Default returns the stock configuration.
func Default() Config {
	s := tools.DefaultSettings()
	return Config{
		Repository:  ".",
		MaxParallel: DefaultMaxParallel,
		Model:       ModelConfig{Adapter: "mock"},
		Tools: ToolsConfig{
			DiffTimeout:       s.DiffTimeout,
			CommandTimeout:    s.CommandTimeout,
			MaxDiffChars:      s.MaxDiffChars,
			MaxFileChars:      s.MaxFileChars,
			StructureDepth:    s.StructureDepth,
			StructureExcludes: s.StructureExcludes,
		},
	}
}

// Load reads path over the defaults when path is non-empty, then applies
// environment overrides and validates.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvRepository); ok && v != "" {
		c.Repository = v
	}
	if v, ok := lookup(EnvModelAdapter); ok && v != "" {
		c.Model.Adapter = v
	}
	if v, ok := lookup(EnvModel); ok && v != "" {
		c.Model.Name = v
	}
	if v, ok := lookup(EnvMaxParallel); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMaxParallel, err)
		}
		c.MaxParallel = n
	}

	if v, ok := lookup(EnvAnthropicKey); ok {
		c.Keys.Anthropic = v
	}
	if v, ok := lookup(EnvOpenAIKey); ok {
		c.Keys.OpenAI = v
	}
	if v, ok := lookup(EnvGoogleKey); ok {
		c.Keys.Google = v
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Repository == "" {
		return fmt.Errorf("repository is required")
	}
	if c.MaxParallel < 1 {
		return fmt.Errorf("max_parallel must be at least 1, got %d", c.MaxParallel)
	}
	if c.Tools.DiffTimeout <= 0 || c.Tools.CommandTimeout <= 0 {
		return fmt.Errorf("tool timeouts must be positive")
	}
	if c.Tools.MaxDiffChars < 1 || c.Tools.MaxFileChars < 1 {
		return fmt.Errorf("tool size caps must be positive")
	}
	if c.Tools.StructureDepth < 0 {
		return fmt.Errorf("structure_depth must not be negative")
	}
	for _, pattern := range c.Tools.StructureExcludes {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid structure exclude pattern %q", pattern)
		}
	}

	known := false
	for _, name := range models.Names() {
		if name == c.Model.Adapter {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown model adapter %q", c.Model.Adapter)
	}
	return nil
}

// ToolSettings converts the tool section into tool limits.
func (c *Config) ToolSettings() tools.Settings {
	return tools.Settings{
		DiffTimeout:       c.Tools.DiffTimeout,
		CommandTimeout:    c.Tools.CommandTimeout,
		MaxDiffChars:      c.Tools.MaxDiffChars,
		MaxFileChars:      c.Tools.MaxFileChars,
		StructureDepth:    c.Tools.StructureDepth,
		StructureExcludes: c.Tools.StructureExcludes,
	}
}

// WithModel returns a copy using the given adapter and model when set.
func (c Config) WithModel(adapter, name string) Config {
	if adapter != "" {
		c.Model.Adapter = adapter
		c.Model.Name = ""
	}
	if name != "" {
		c.Model.Name = name
	}
	return c
}
