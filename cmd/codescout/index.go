package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/codescout/internal/retrieval"
)

var indexCmd = &cobra.Command{
	Use:   "index <directory>",
	Short: "Index a repository directory into the vector store",
	Long: `Index walks a repository directory, chunks its source files, and stores
embeddings in the configured vector store.

Examples:
  # Index the current repository
  codescout index .

  # Index another checkout
  codescout index ~/src/myproject`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store, err := newStore(cfg, logger)
	if err != nil {
		return err
	}
	indexer, err := retrieval.NewIndexer(store, logger)
	if err != nil {
		return err
	}

	stats, err := indexer.IndexDirectory(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("indexing %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files into %d chunks (%d skipped)\n",
		stats.Files, stats.Chunks, stats.Skipped)
	return nil
}
