// Package main implements the codescout CLI for indexing a repository and
// running deep research against it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codescout/internal/config"
	"github.com/fyrsmithlabs/codescout/internal/logging"
	"github.com/fyrsmithlabs/codescout/internal/retrieval"
)

var (
	// configPath is the --config flag value, empty for the default path.
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "codescout",
	Short: "Deep research over code repositories",
	Long: `codescout answers natural-language questions about a code repository.

Index a repository once, then ask questions. Research runs in bounded
rounds of query generation, retrieval, and learning extraction before
synthesizing a final Markdown report.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/codescout/config.yaml)")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(researchCmd)
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Fields: map[string]string{"app": "codescout"},
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newStore builds the vector store from config.
func newStore(cfg *config.Config, logger *zap.Logger) (*retrieval.Store, error) {
	if !cfg.Embeddings.APIKey.IsSet() {
		return nil, fmt.Errorf("embeddings API key not configured (set CODESCOUT_PROVIDER_API_KEY or embeddings.api_key)")
	}
	embedder := retrieval.NewOpenAIEmbedder(cfg.Embeddings.APIKey.Value(), cfg.Embeddings.Model)
	return retrieval.NewStore(retrieval.StoreConfig{
		Path:       cfg.VectorStore.Path,
		Collection: cfg.VectorStore.Collection,
		TopK:       cfg.VectorStore.TopK,
		Compress:   cfg.VectorStore.Compress,
	}, embedder, logger)
}
