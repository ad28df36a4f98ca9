// Package config loads the psr.yaml project configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up from the project
// root.
const FileName = "psr.yaml"

// Config represents the psr.yaml configuration.
type Config struct {
	// SrcDir holds the PSR sources.
	SrcDir string `yaml:"srcDir,omitempty"`

	// OutDir receives compiled TypeScript.
	OutDir string `yaml:"outDir,omitempty"`

	// Compiler tunes the transform itself.
	Compiler *CompilerConfig `yaml:"compiler,omitempty"`

	// Dev configures the development server.
	Dev *DevConfig `yaml:"dev,omitempty"`

	// Cache configures the compile cache.
	Cache *CacheConfig `yaml:"cache,omitempty"`
}

// CompilerConfig tunes transform behavior.
type CompilerConfig struct {
	// Indent is the output indentation unit.
	Indent string `yaml:"indent,omitempty"`

	// MaxDepth bounds AST and render-tree recursion.
	MaxDepth int `yaml:"maxDepth,omitempty"`

	// Strict stops each file at its first error.
	Strict bool `yaml:"strict,omitempty"`

	// Extensions lists the source extensions to compile.
	Extensions []string `yaml:"extensions,omitempty"`
}

// DevConfig configures the development server.
type DevConfig struct {
	Port int    `yaml:"port,omitempty"`
	Host string `yaml:"host,omitempty"`

	// Debounce is the file-watch settle time in milliseconds.
	Debounce int `yaml:"debounce,omitempty"`
}

// CacheConfig configures the compile cache.
type CacheConfig struct {
	// Enabled defaults to true.
	Enabled *bool `yaml:"enabled,omitempty"`

	Dir string `yaml:"dir,omitempty"`

	// MaxSizeMB caps the cache size on disk.
	MaxSizeMB int `yaml:"maxSizeMB,omitempty"`
}

// Load reads psr.yaml from projectPath, applying defaults for anything
// unset. A missing file yields the defaults without error.
func Load(projectPath string) (*Config, error) {
	path := filepath.Join(projectPath, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FileName, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to projectPath/psr.yaml.
func Save(cfg *Config, projectPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(projectPath, FileName), data, 0644)
}

// DefaultConfig returns a fully populated default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.SrcDir == "" {
		cfg.SrcDir = "src"
	}
	if cfg.OutDir == "" {
		cfg.OutDir = "dist"
	}
	if cfg.Compiler == nil {
		cfg.Compiler = &CompilerConfig{}
	}
	if cfg.Compiler.Indent == "" {
		cfg.Compiler.Indent = "  "
	}
	if len(cfg.Compiler.Extensions) == 0 {
		cfg.Compiler.Extensions = []string{".psr", ".tsx"}
	}
	if cfg.Dev == nil {
		cfg.Dev = &DevConfig{}
	}
	if cfg.Dev.Port == 0 {
		cfg.Dev.Port = 5173
	}
	if cfg.Dev.Host == "" {
		cfg.Dev.Host = "localhost"
	}
	if cfg.Dev.Debounce == 0 {
		cfg.Dev.Debounce = 100
	}
	if cfg.Cache == nil {
		cfg.Cache = &CacheConfig{}
	}
	if cfg.Cache.Enabled == nil {
		enabled := true
		cfg.Cache.Enabled = &enabled
	}
}

// Validate rejects settings the tooling cannot work with.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return fmt.Errorf("dev.port %d out of range", c.Dev.Port)
	}
	if c.SrcDir == c.OutDir {
		return fmt.Errorf("srcDir and outDir must differ, both are %q", c.SrcDir)
	}
	return nil
}

// CacheEnabled reports whether the compile cache should be used.
func (c *Config) CacheEnabled() bool {
	return c.Cache != nil && c.Cache.Enabled != nil && *c.Cache.Enabled
}
