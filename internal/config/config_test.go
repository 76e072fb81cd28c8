package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Research.Breadth)
	assert.Equal(t, 2, cfg.Research.Depth)
	assert.Equal(t, 20, cfg.Research.MaxTotalQueries)
	assert.Equal(t, 5*time.Minute, cfg.Research.MaxResearchTime.Duration())
	assert.Equal(t, "en", cfg.Research.Language)
	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Equal(t, "text-embedding-3-small", cfg.Embeddings.Model)
	assert.Equal(t, "codescout", cfg.VectorStore.Collection)
	assert.Equal(t, 10, cfg.VectorStore.TopK)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfigFile(t, `
research:
  breadth: 4
  depth: 3
  max_research_time: 2m
provider:
  name: anthropic
  api_key: sk-ant-test
  temperature: 0.2
vectorstore:
  path: /tmp/codescout-index
  top_k: 5
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Research.Breadth)
	assert.Equal(t, 3, cfg.Research.Depth)
	assert.Equal(t, 2*time.Minute, cfg.Research.MaxResearchTime.Duration())
	assert.Equal(t, "anthropic", cfg.Provider.Name)
	assert.Equal(t, "sk-ant-test", cfg.Provider.APIKey.Value())
	assert.Equal(t, 0.2, cfg.Provider.Temperature)
	assert.Equal(t, "/tmp/codescout-index", cfg.VectorStore.Path)
	assert.Equal(t, 5, cfg.VectorStore.TopK)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
provider:
  name: openai
  api_key: from-file
research:
  breadth: 2
`)
	t.Setenv("CODESCOUT_PROVIDER_API_KEY", "from-env")
	t.Setenv("CODESCOUT_RESEARCH_MAX_TOTAL_QUERIES", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Provider.APIKey.Value())
	assert.Equal(t, 7, cfg.Research.MaxTotalQueries)
	assert.Equal(t, 2, cfg.Research.Breadth)
}

func TestLoad_EmbeddingKeyFallsBackToProviderKey(t *testing.T) {
	path := writeConfigFile(t, `
provider:
  api_key: shared-key
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "shared-key", cfg.Embeddings.APIKey.Value())
}

func TestLoad_RejectsWorldReadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure config file permissions")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Research.Breadth)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var cfg Config
		applyDefaults(&cfg)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero breadth", func(c *Config) { c.Research.Breadth = 0 }},
		{"zero depth", func(c *Config) { c.Research.Depth = 0 }},
		{"zero query ceiling", func(c *Config) { c.Research.MaxTotalQueries = 0 }},
		{"unknown provider", func(c *Config) { c.Provider.Name = "cohere" }},
		{"negative temperature", func(c *Config) { c.Provider.Temperature = -0.5 }},
		{"zero top_k", func(c *Config) { c.VectorStore.TopK = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "logfmt" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			require.NoError(t, cfg.Validate())
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("sk-very-secret")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "sk-very-secret", s.Value())
	assert.True(t, s.IsSet())

	data, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"[REDACTED]"`, string(data))

	assert.Equal(t, "", Secret("").String())
	assert.False(t, Secret("").IsSet())
}

func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-5s")))
	assert.Error(t, d.UnmarshalText([]byte("not a duration")))

	text, err := Duration(time.Minute).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m0s", string(text))
}
