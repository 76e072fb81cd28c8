// Package config provides configuration loading for codescout.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig indicates a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full codescout configuration.
type Config struct {
	Research    ResearchConfig    `koanf:"research"`
	Provider    ProviderConfig    `koanf:"provider"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// ResearchConfig tunes the research loop.
type ResearchConfig struct {
	// Breadth is the number of search queries per round. Capped at 5.
	Breadth int `koanf:"breadth"`

	// Depth is the number of research rounds. Capped at 5.
	Depth int `koanf:"depth"`

	// MaxTotalQueries bounds queries across all rounds of one run.
	MaxTotalQueries int `koanf:"max_total_queries"`

	// MaxResearchTime bounds the research phase wall clock. The report
	// phase runs after this ceiling.
	MaxResearchTime Duration `koanf:"max_research_time"`

	// Language is the report output language.
	Language string `koanf:"language"`
}

// ProviderConfig selects and tunes the LLM provider.
type ProviderConfig struct {
	// Name is one of "openai", "googleai", "anthropic".
	Name string `koanf:"name"`

	// Model overrides the provider's default chat model.
	Model string `koanf:"model"`

	APIKey Secret `koanf:"api_key"`

	// BaseURL points OpenAI-compatible servers elsewhere. OpenAI only.
	BaseURL string `koanf:"base_url"`

	Temperature       float64 `koanf:"temperature"`
	MaxTokens         int     `koanf:"max_tokens"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// EmbeddingsConfig tunes the embedding model used for indexing and search.
type EmbeddingsConfig struct {
	// Model is the OpenAI embedding model. Default: text-embedding-3-small.
	Model string `koanf:"model"`

	// APIKey falls back to the provider API key when empty.
	APIKey Secret `koanf:"api_key"`
}

// VectorStoreConfig tunes the embedded vector store.
type VectorStoreConfig struct {
	// Path is the persistence directory. Empty keeps the index in memory.
	Path string `koanf:"path"`

	Collection string `koanf:"collection"`
	TopK       int    `koanf:"top_k"`
	Compress   bool   `koanf:"compress"`
}

// LoggingConfig tunes the zap logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `koanf:"level"`

	// Format is "json" or "console".
	Format string `koanf:"format"`
}

func applyDefaults(cfg *Config) {
	if cfg.Research.Breadth == 0 {
		cfg.Research.Breadth = 3
	}
	if cfg.Research.Depth == 0 {
		cfg.Research.Depth = 2
	}
	if cfg.Research.MaxTotalQueries == 0 {
		cfg.Research.MaxTotalQueries = 20
	}
	if cfg.Research.MaxResearchTime == 0 {
		cfg.Research.MaxResearchTime = Duration(5 * time.Minute)
	}
	if cfg.Research.Language == "" {
		cfg.Research.Language = "en"
	}

	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "openai"
	}

	if cfg.Embeddings.Model == "" {
		cfg.Embeddings.Model = "text-embedding-3-small"
	}
	if !cfg.Embeddings.APIKey.IsSet() {
		cfg.Embeddings.APIKey = cfg.Provider.APIKey
	}

	if cfg.VectorStore.Collection == "" {
		cfg.VectorStore.Collection = "codescout"
	}
	if cfg.VectorStore.TopK == 0 {
		cfg.VectorStore.TopK = 10
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Research.Breadth < 1 {
		return fmt.Errorf("%w: research.breadth must be at least 1", ErrInvalidConfig)
	}
	if c.Research.Depth < 1 {
		return fmt.Errorf("%w: research.depth must be at least 1", ErrInvalidConfig)
	}
	if c.Research.MaxTotalQueries < 1 {
		return fmt.Errorf("%w: research.max_total_queries must be at least 1", ErrInvalidConfig)
	}
	if c.Research.MaxResearchTime <= 0 {
		return fmt.Errorf("%w: research.max_research_time must be positive", ErrInvalidConfig)
	}

	switch c.Provider.Name {
	case "openai", "googleai", "anthropic":
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider.Name)
	}
	if c.Provider.Temperature < 0 {
		return fmt.Errorf("%w: provider.temperature cannot be negative", ErrInvalidConfig)
	}
	if c.Provider.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: provider.requests_per_second cannot be negative", ErrInvalidConfig)
	}

	if c.VectorStore.TopK < 1 {
		return fmt.Errorf("%w: vectorstore.top_k must be at least 1", ErrInvalidConfig)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Logging.Format)
	}

	return nil
}
