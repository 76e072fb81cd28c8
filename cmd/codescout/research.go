package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/codescout/internal/providers"
	"github.com/fyrsmithlabs/codescout/internal/research"
)

var (
	flagBreadth int
	flagDepth   int
)

var researchCmd = &cobra.Command{
	Use:   "research <question>",
	Short: "Run deep research against the indexed repository",
	Long: `Research runs bounded rounds of query generation, retrieval, and
learning extraction, then synthesizes a Markdown report.

Progress is narrated on stderr; the report is written to stdout.

Examples:
  # Ask with configured defaults
  codescout research "How does authentication work?"

  # Wider and deeper
  codescout research --breadth 5 --depth 3 "Where are HTTP routes registered?"`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().IntVar(&flagBreadth, "breadth", 0, "search queries per round (default from config)")
	researchCmd.Flags().IntVar(&flagDepth, "depth", 0, "research rounds (default from config)")
}

func runResearch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store, err := newStore(cfg, logger)
	if err != nil {
		return err
	}

	suite, err := providers.New(cmd.Context(), providers.Config{
		Name:              cfg.Provider.Name,
		Model:             cfg.Provider.Model,
		APIKey:            cfg.Provider.APIKey.Value(),
		BaseURL:           cfg.Provider.BaseURL,
		Temperature:       cfg.Provider.Temperature,
		MaxTokens:         cfg.Provider.MaxTokens,
		RequestsPerSecond: cfg.Provider.RequestsPerSecond,
	}, logger)
	if err != nil {
		return err
	}

	limits := research.DefaultLimits()
	limits.MaxTotalQueries = cfg.Research.MaxTotalQueries
	limits.MaxResearchTime = cfg.Research.MaxResearchTime.Duration()

	orch, err := research.New(suite, store, suite, suite,
		research.WithLogger(logger),
		research.WithLimits(limits),
	)
	if err != nil {
		return err
	}

	breadth := cfg.Research.Breadth
	if flagBreadth > 0 {
		breadth = flagBreadth
	}
	depth := cfg.Research.Depth
	if flagDepth > 0 {
		depth = flagDepth
	}

	started := time.Now()
	result, err := orch.Run(cmd.Context(), research.Request{
		Question: args[0],
		Breadth:  breadth,
		Depth:    depth,
		Language: cfg.Research.Language,
		Progress: func(event string) {
			fmt.Fprintln(os.Stderr, event)
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.FinalReport)
	fmt.Fprintf(os.Stderr, "\nDone in %s with %d learnings.\n",
		time.Since(started).Round(time.Second), len(result.Learnings))
	return nil
}
