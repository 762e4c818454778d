// Package config provides the Config struct and loader for .seeker.yaml
// project-level configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values for configuration. These are the single source of
// truth — New() references them and no other code should duplicate them.
const (
	DefaultCachePath = ".seeker-cache.json"
	DefaultScope     = "main"

	DefaultWorkers          = 4
	DefaultVariantTimeoutMs = 250
	DefaultVerifyThreshold  = 100.0

	DefaultImproveAttempts = 3
)

// CacheConfig holds cache store settings.
type CacheConfig struct {
	Path  string `yaml:"path,omitempty"`
	Scope string `yaml:"scope,omitempty"`
}

// LearningConfig holds pattern-learning settings.
type LearningConfig struct {
	Workers          int     `yaml:"workers,omitempty"`
	VariantTimeoutMs int     `yaml:"variant_timeout_ms,omitempty"`
	VerifyThreshold  float64 `yaml:"verify_threshold,omitempty"`
	// Variants holds per-variant tuning maps keyed by variant name,
	// e.g. while_loop_condition: {max_iterations: 500}.
	Variants map[string]map[string]any `yaml:"variants,omitempty"`
}

// ImproveConfig holds improvement-cycle settings.
type ImproveConfig struct {
	Attempts int `yaml:"attempts,omitempty"`
}

// Config is the top-level configuration loaded from .seeker.yaml.
type Config struct {
	Cache    CacheConfig    `yaml:"cache,omitempty"`
	Learning LearningConfig `yaml:"learning,omitempty"`
	Improve  ImproveConfig  `yaml:"improve,omitempty"`
	Debug    *bool          `yaml:"debug,omitempty"`
}

// New returns a Config with all hard-coded defaults populated.
func New() *Config {
	return &Config{
		Cache: CacheConfig{
			Path:  DefaultCachePath,
			Scope: DefaultScope,
		},
		Learning: LearningConfig{
			Workers:          DefaultWorkers,
			VariantTimeoutMs: DefaultVariantTimeoutMs,
			VerifyThreshold:  DefaultVerifyThreshold,
		},
		Improve: ImproveConfig{
			Attempts: DefaultImproveAttempts,
		},
		Debug: boolPtr(false),
	}
}

// Load finds .seeker.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*Config, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading .seeker.yaml: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing .seeker.yaml: %w", err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .seeker.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ".seeker.yaml")
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *Config) {
	if src.Cache.Path != "" {
		dst.Cache.Path = src.Cache.Path
	}
	if src.Cache.Scope != "" {
		dst.Cache.Scope = src.Cache.Scope
	}

	if src.Learning.Workers != 0 {
		dst.Learning.Workers = src.Learning.Workers
	}
	if src.Learning.VariantTimeoutMs != 0 {
		dst.Learning.VariantTimeoutMs = src.Learning.VariantTimeoutMs
	}
	if src.Learning.VerifyThreshold != 0 {
		dst.Learning.VerifyThreshold = src.Learning.VerifyThreshold
	}
	if src.Learning.Variants != nil {
		dst.Learning.Variants = src.Learning.Variants
	}

	if src.Improve.Attempts != 0 {
		dst.Improve.Attempts = src.Improve.Attempts
	}

	if src.Debug != nil {
		dst.Debug = src.Debug
	}
}

func boolPtr(b bool) *bool {
	return &b
}
