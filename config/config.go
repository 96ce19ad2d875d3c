// Package config provides configuration loading and management for semmerge.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete semmerge configuration
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Engine  EngineConfig  `yaml:"engine"`
	Watch   WatchConfig   `yaml:"watch"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// InputConfig names the schema and the documents to merge
type InputConfig struct {
	// Schema is the path to the shape schema (YAML)
	Schema string `yaml:"schema"`
	// Documents are doublestar patterns selecting document files, in merge order
	Documents []string `yaml:"documents,omitempty"`
	// Root resolves relative paths (auto-detected from the project config if empty)
	Root string `yaml:"root"`
}

// OutputConfig configures serialization of the merged graph
type OutputConfig struct {
	// Format is one of turtle, ntriples, jsonld (default: ntriples)
	Format string `yaml:"format"`
	// Path is the output file (empty = stdout)
	Path string `yaml:"path"`
}

// EngineConfig tunes the materializer
type EngineConfig struct {
	// SortCacheSize bounds the decoded sort-key cache (default: 4096)
	SortCacheSize int `yaml:"sort_cache_size"`
	// Diagnostics logs every merge, rejection and deletion at debug level
	Diagnostics bool `yaml:"diagnostics"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	// Debounce is how long to wait after the last change before re-running
	Debounce time.Duration `yaml:"debounce"`
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	// Enabled logs gathered metrics after every run
	Enabled bool `yaml:"enabled"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string `yaml:"level"`
}

var (
	validFormats = map[string]bool{"turtle": true, "ntriples": true, "jsonld": true}
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "ntriples",
			Path:   "", // Stdout
		},
		Engine: EngineConfig{
			SortCacheSize: 4096,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("output.format must be one of turtle, ntriples, jsonld, got %q", c.Output.Format)
	}
	if c.Engine.SortCacheSize <= 0 {
		return fmt.Errorf("engine.sort_cache_size must be positive")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	return nil
}

// ResolvePath joins a relative path onto Input.Root.
func (c *Config) ResolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Input.Root == "" {
		return path
	}
	return filepath.Join(c.Input.Root, path)
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Input
	if other.Input.Schema != "" {
		c.Input.Schema = other.Input.Schema
	}
	if len(other.Input.Documents) > 0 {
		c.Input.Documents = other.Input.Documents
	}
	if other.Input.Root != "" {
		c.Input.Root = other.Input.Root
	}

	// Output
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
	if other.Output.Path != "" {
		c.Output.Path = other.Output.Path
	}

	// Engine
	if other.Engine.SortCacheSize != 0 {
		c.Engine.SortCacheSize = other.Engine.SortCacheSize
	}
	if other.Engine.Diagnostics {
		c.Engine.Diagnostics = true
	}

	// Watch
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}

	// Metrics
	if other.Metrics.Enabled {
		c.Metrics.Enabled = true
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
