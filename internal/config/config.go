// Package config loads vagbhata configuration from a YAML file with
// environment variable overrides for credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all vagbhata configuration.
type Config struct {
	// LLM configures the Gemini chat model.
	LLM LLMConfig `yaml:"llm"`

	// Embedding configures the embedding model used for retrieval.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Memory configures the SQLite store (checkpoints + vector index).
	Memory MemoryConfig `yaml:"memory"`

	// Retrieval configures the interactive retrieval path.
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// LLMConfig configures the chat model.
type LLMConfig struct {
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	BaseURL         string `yaml:"base_url"`
	Timeout         string `yaml:"timeout"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

// EmbeddingConfig configures the embedding model.
type EmbeddingConfig struct {
	Model string `yaml:"model"`
}

// MemoryConfig configures the local store.
type MemoryConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// RetrievalConfig configures retrieval behavior.
type RetrievalConfig struct {
	// TopK is the number of passages fetched per tool invocation.
	TopK int `yaml:"top_k"`

	// IngestBatchSize is the embedding batch size for corpus population.
	IngestBatchSize int `yaml:"ingest_batch_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:           "gemini-2.5-flash-lite",
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
			Timeout:         "120s",
			MaxOutputTokens: 8192,
		},
		Embedding: EmbeddingConfig{
			Model: "text-embedding-004",
		},
		Memory: MemoryConfig{
			DatabasePath: "data/vagbhata.db",
		},
		Retrieval: RetrievalConfig{
			TopK:            5,
			IngestBatchSize: 50,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults;
// environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if model := os.Getenv("VAGBHATA_LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if model := os.Getenv("VAGBHATA_EMBEDDING_MODEL"); model != "" {
		c.Embedding.Model = model
	}
	if path := os.Getenv("VAGBHATA_DB"); path != "" {
		c.Memory.DatabasePath = path
	}
}

// Validate checks that every value required before first use resolves to a
// concrete setting. A failure here is fatal at startup; the process must not
// proceed to serve turns.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("missing Gemini API key: set GOOGLE_API_KEY or llm.api_key")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model must not be empty")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model must not be empty")
	}
	if c.Memory.DatabasePath == "" {
		return fmt.Errorf("memory.database_path must not be empty")
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval.top_k must be >= 1, got %d", c.Retrieval.TopK)
	}
	if _, err := c.LLMTimeout(); err != nil {
		return err
	}
	return nil
}

// LLMTimeout parses the configured LLM timeout.
func (c *Config) LLMTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid llm.timeout %q: %w", c.LLM.Timeout, err)
	}
	return d, nil
}
