// Package config loads born-asp settings from a YAML or JSON file with
// environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/born-ml/asp/internal/asp"
)

// EnvPrefix prefixes environment overrides, e.g. BORN_ASP_SPARSITY__N=1.
const EnvPrefix = "BORN_ASP_"

// Config is the full born-asp configuration.
type Config struct {
	Sparsity SparsityConfig `json:"sparsity"`
	Workers  int            `json:"workers"`
	Log      LogConfig      `json:"log"`
	Metrics  MetricsConfig  `json:"metrics"`
}

// SparsityConfig selects the N:M pattern and mask algorithm.
type SparsityConfig struct {
	N        int      `json:"n"`
	M        int      `json:"m"`
	Algo     string   `json:"algo"`
	WithMask bool     `json:"with_mask"`
	Exclude  []string `json:"exclude"`
}

// LogConfig controls logger output.
type LogConfig struct {
	// Level is a zerolog level name: "debug", "info", "warn", "error".
	Level string `json:"level"`
	// Format is "json" or "console".
	Format string `json:"format"`
}

// MetricsConfig controls the prometheus textfile written after a run.
type MetricsConfig struct {
	// File is the textfile path; empty disables it.
	File string `json:"file"`
}

// Load reads path (skipped when empty) and applies BORN_ASP_ environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{Sparsity: SparsityConfig{WithMask: true}}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Sparsity.N == 0 {
		c.Sparsity.N = 2
	}
	if c.Sparsity.M == 0 {
		c.Sparsity.M = 4
	}
	if c.Sparsity.Algo == "" {
		c.Sparsity.Algo = string(asp.Mask1D)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate checks field values.
func (c Config) Validate() error {
	if c.Sparsity.N <= 0 || c.Sparsity.N > c.Sparsity.M {
		return fmt.Errorf("sparsity: %w: n=%d, m=%d", asp.ErrInvalidPattern, c.Sparsity.N, c.Sparsity.M)
	}
	if _, err := asp.ParseMaskAlgo(c.Sparsity.Algo); err != nil {
		return fmt.Errorf("sparsity: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("unknown log format %s", c.Log.Format)
	}
	return nil
}

// PruneConfig converts the sparsity settings for asp.Sparsifier.
func (c Config) PruneConfig() asp.PruneConfig {
	return asp.PruneConfig{
		N:        c.Sparsity.N,
		M:        c.Sparsity.M,
		Algo:     asp.MaskAlgo(c.Sparsity.Algo),
		WithMask: c.Sparsity.WithMask,
		Workers:  c.Workers,
	}
}
