// Package config loads the application configuration from YAML, with
// environment overrides for deployment-specific settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Backend names for the vector store selection.
const (
	BackendQdrant = "qdrant"
	BackendBadger = "badger"
)

// EmbeddingConfig configures the OpenAI-compatible embedding endpoint.
type EmbeddingConfig struct {
	Host      string `yaml:"host"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
}

// QdrantConfig contains connection details for a Qdrant server.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Config is the root application configuration.
type Config struct {
	Backend   string          `yaml:"backend"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Embedding EmbeddingConfig `yaml:"embedding"`

	// LogsDir is the root directory holding per-project conversation
	// log directories.
	LogsDir string `yaml:"logs_dir"`

	// StateDir holds per-project ingestion state and, for the badger
	// backend, the vector databases.
	StateDir string `yaml:"state_dir"`
}

// Default returns the built-in configuration, used when no config file
// exists.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Backend: BackendQdrant,
		Qdrant: QdrantConfig{
			URL:         "http://localhost:6333",
			TimeoutSecs: 15,
		},
		Embedding: EmbeddingConfig{
			Host:      "http://localhost:11434",
			Model:     "embeddinggemma",
			Dimension: 384,
		},
		LogsDir:  filepath.Join(home, ".claude", "projects"),
		StateDir: filepath.Join(home, ".recall"),
	}
}

// Load reads the configuration from path, falling back to defaults when
// the file does not exist. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	fillDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns ./recall.yaml when present, otherwise
// ~/.recall/config.yaml.
func DefaultPath() string {
	if _, err := os.Stat("recall.yaml"); err == nil {
		return "recall.yaml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "recall.yaml"
	}
	return filepath.Join(home, ".recall", "config.yaml")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QDRANT_URL"); v != "" {
		cfg.Qdrant.URL = v
	}
	if v := os.Getenv("QDRANT_API_KEY"); v != "" {
		cfg.Qdrant.APIKey = v
	}
	if v := os.Getenv("RECALL_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv("RECALL_LOGS_DIR"); v != "" {
		cfg.LogsDir = v
	}
}

func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.Backend == "" {
		cfg.Backend = def.Backend
	}
	if cfg.Qdrant.URL == "" {
		cfg.Qdrant.URL = def.Qdrant.URL
	}
	if cfg.Qdrant.TimeoutSecs == 0 {
		cfg.Qdrant.TimeoutSecs = def.Qdrant.TimeoutSecs
	}
	if cfg.Embedding.Host == "" {
		cfg.Embedding.Host = def.Embedding.Host
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = def.Embedding.Model
	}
	if cfg.Embedding.Dimension == 0 {
		cfg.Embedding.Dimension = def.Embedding.Dimension
	}
	if cfg.LogsDir == "" {
		cfg.LogsDir = def.LogsDir
	}
	if cfg.StateDir == "" {
		cfg.StateDir = def.StateDir
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Backend != BackendQdrant && c.Backend != BackendBadger {
		return fmt.Errorf("unknown backend %q, want %q or %q", c.Backend, BackendQdrant, BackendBadger)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", c.Embedding.Dimension)
	}
	return nil
}
