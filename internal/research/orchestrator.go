package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Terminal conditions for a run, recorded in logs and metrics.
const (
	terminalCompleted  = "completed"
	terminalCancelled  = "cancelled"
	terminalTimeout    = "timeout"
	terminalQueryLimit = "query_limit"
	terminalNoQueries  = "no_queries"
)

// Orchestrator runs bounded multi-round research over the four capability
// interfaces. It is safe for concurrent use: all per-run state lives in Run.
type Orchestrator struct {
	generator QueryGenerator
	retriever Retriever
	extractor Extractor
	reporter  Reporter

	limits  Limits
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithLimits overrides the default safety limits.
func WithLimits(limits Limits) Option {
	return func(o *Orchestrator) {
		o.limits = limits
	}
}

// WithMetrics sets the metrics recorder. Defaults to none.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithClock overrides the wall clock, for tests exercising the time ceiling.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an orchestrator over the given capabilities.
func New(generator QueryGenerator, retriever Retriever, extractor Extractor, reporter Reporter, opts ...Option) (*Orchestrator, error) {
	if generator == nil {
		return nil, fmt.Errorf("%w: query generator", ErrNilCapability)
	}
	if retriever == nil {
		return nil, fmt.Errorf("%w: retriever", ErrNilCapability)
	}
	if extractor == nil {
		return nil, fmt.Errorf("%w: extractor", ErrNilCapability)
	}
	if reporter == nil {
		return nil, fmt.Errorf("%w: reporter", ErrNilCapability)
	}

	o := &Orchestrator{
		generator: generator,
		retriever: retriever,
		extractor: extractor,
		reporter:  reporter,
		limits:    DefaultLimits(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if err := o.limits.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Run executes one research run. It returns an error only for an invalid
// request; every failure during the run is absorbed and the returned Result
// always carries a final report, possibly the no-findings fallback.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, ErrEmptyQuestion
	}

	breadth := clamp(req.Breadth, 1, o.limits.MaxBreadth)
	depth := clamp(req.Depth, 1, o.limits.MaxDepth)

	logger := o.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.Int("breadth", breadth),
		zap.Int("depth", depth),
	)
	logger.Info("starting deep research", zap.String("question", req.Question))

	notify := newNotifier(req.Progress)
	defer notify.Close()

	start := o.now()
	deadline := start.Add(o.limits.MaxResearchTime)
	cancelled := func() bool {
		if ctx.Err() != nil {
			return true
		}
		return req.Cancelled != nil && req.Cancelled()
	}

	notify.Publish(fmt.Sprintf("Starting deep research with depth=%d, breadth=%d", depth, breadth))

	var learnings []string
	totalQueries := 0
	rounds := 0
	terminal := terminalCompleted

rounds:
	for round := 0; round < depth; round++ {
		switch {
		case cancelled():
			logger.Info("research cancelled")
			notify.Publish("Research cancelled")
			terminal = terminalCancelled
			break rounds
		case !o.now().Before(deadline):
			logger.Warn("research time ceiling reached", zap.Duration("budget", o.limits.MaxResearchTime))
			notify.Publish("Research time limit reached - writing report with current findings")
			terminal = terminalTimeout
			break rounds
		case totalQueries >= o.limits.MaxTotalQueries:
			logger.Warn("query ceiling reached", zap.Int("total_queries", totalQueries))
			notify.Publish("Query limit reached - writing report")
			terminal = terminalQueryLimit
			break rounds
		}

		logger.Info("research round", zap.Int("round", round+1))
		notify.Publish(fmt.Sprintf("Round %d/%d: generating search queries", round+1, depth))

		// From round 2 onward the cumulative learnings steer query
		// generation toward unexplored ground.
		var prior []string
		if len(learnings) > 0 {
			prior = learnings
		}

		candidates, err := o.generator.GenerateQueries(ctx, req.Question, prior, breadth)
		if err != nil {
			logger.Warn("query generation failed", zap.Error(err))
			o.metrics.RecordCapabilityError(ctx, "generate")
			candidates = nil
		}
		if len(candidates) == 0 {
			logger.Info("no candidate queries, ending research early", zap.Int("round", round+1))
			notify.Publish("No new queries generated - ending research early")
			terminal = terminalNoQueries
			break
		}
		if len(candidates) > breadth {
			candidates = candidates[:breadth]
		}
		rounds++

		roundLearnings := o.runRound(ctx, req.Language, candidates, breadth, &totalQueries, cancelled, notify, logger)

		if len(roundLearnings) > 0 {
			learnings = append(learnings, roundLearnings...)
			logger.Info("round complete",
				zap.Int("round", round+1),
				zap.Int("new_learnings", len(roundLearnings)),
				zap.Int("total_learnings", len(learnings)))
			notify.Publish(fmt.Sprintf("Round %d complete: %d new insights, %d total", round+1, len(roundLearnings), len(learnings)))
		} else {
			logger.Info("no new insights this round", zap.Int("round", round+1))
			notify.Publish(fmt.Sprintf("No new insights in round %d", round+1))
		}
	}

	logger.Info("research loop finished",
		zap.String("terminal", terminal),
		zap.Int("rounds", rounds),
		zap.Int("total_queries", totalQueries),
		zap.Int("learnings", len(learnings)))

	report := o.synthesize(ctx, req.Question, learnings, notify, logger)

	o.metrics.RecordRun(ctx, rounds, o.now().Sub(start), terminal)
	return &Result{Learnings: learnings, FinalReport: report}, nil
}

// runRound issues the round's candidate queries sequentially and returns the
// learnings in discovery order. Failures of individual queries are absorbed.
func (o *Orchestrator) runRound(
	ctx context.Context,
	language string,
	candidates []CandidateQuery,
	breadth int,
	totalQueries *int,
	cancelled func() bool,
	notify *notifier,
	logger *zap.Logger,
) []string {
	var roundLearnings []string

	for _, cand := range candidates {
		if cancelled() {
			break
		}
		if *totalQueries >= o.limits.MaxTotalQueries {
			// The round-top check alone can overshoot the ceiling when
			// earlier rounds issued fewer queries than breadth.
			break
		}

		*totalQueries++
		o.metrics.RecordQuery(ctx)

		if strings.TrimSpace(cand.Query) == "" {
			continue
		}

		logger.Info("searching", zap.String("query", cand.Query), zap.String("goal", cand.Goal))
		notify.Publish(fmt.Sprintf("Searching codebase: %s", cand.Query))

		docs, err := o.retriever.Retrieve(ctx, cand.Query, language)
		if err != nil {
			logger.Warn("retrieval failed", zap.String("query", cand.Query), zap.Error(err))
			o.metrics.RecordCapabilityError(ctx, "retrieve")
			notify.Publish(fmt.Sprintf("Search failed for: %s", cand.Query))
			continue
		}
		if len(docs) == 0 {
			logger.Info("no documents retrieved", zap.String("query", cand.Query))
			notify.Publish(fmt.Sprintf("No relevant code found for: %s", cand.Query))
			continue
		}

		notify.Publish(fmt.Sprintf("Found %d relevant code files, analyzing", len(docs)))
		if len(docs) > o.limits.MaxDocumentsPerQuery {
			docs = docs[:o.limits.MaxDocumentsPerQuery]
		}

		extraction, err := o.extractor.Extract(ctx, cand.Query, docs, o.limits.LearningsPerQuery, breadth)
		if err != nil {
			logger.Warn("extraction failed", zap.String("query", cand.Query), zap.Error(err))
			o.metrics.RecordCapabilityError(ctx, "extract")
			notify.Publish(fmt.Sprintf("Analysis failed for: %s", cand.Query))
			continue
		}
		if len(extraction.Learnings) > 0 {
			roundLearnings = append(roundLearnings, extraction.Learnings...)
			o.metrics.RecordLearnings(ctx, len(extraction.Learnings))
			logger.Info("learnings extracted",
				zap.String("query", cand.Query),
				zap.Int("count", len(extraction.Learnings)))
			notify.Publish(fmt.Sprintf("Extracted %d insights from: %s", len(extraction.Learnings), cand.Query))
		}
	}

	return roundLearnings
}

// synthesize drives the report phase. With learnings present the Reporter
// streams the report; each fragment goes to the progress sink as it arrives
// and the result is the concatenation in arrival order. With no learnings
// the Reporter is never invoked and a deterministic fallback is produced.
// Reporter failure becomes a textual error appended to whatever streamed.
func (o *Orchestrator) synthesize(ctx context.Context, question string, learnings []string, notify *notifier, logger *zap.Logger) string {
	notify.Publish("Generating final report")

	if len(learnings) == 0 {
		report := fallbackReport(question)
		notify.Publish(report)
		logger.Info("no learnings gathered, returning fallback report")
		return report
	}

	var buf strings.Builder
	full, err := o.reporter.SynthesizeReport(ctx, question, learnings, func(chunk string) {
		buf.WriteString(chunk)
		notify.Publish(chunk)
	})
	if err != nil {
		logger.Error("report synthesis failed", zap.Error(err))
		o.metrics.RecordCapabilityError(ctx, "report")
		msg := fmt.Sprintf("Error generating final report: %v", err)
		buf.WriteString(msg)
		notify.Publish(msg)
		return buf.String()
	}
	if buf.Len() > 0 {
		return buf.String()
	}
	// Reporter returned without streaming; pass the report through whole.
	notify.Publish(full)
	return full
}

// fallbackReport is the deterministic no-findings report. It restates the
// original question verbatim so callers can tell which run produced it.
func fallbackReport(question string) string {
	return fmt.Sprintf("# Research Results\n\n"+
		"Unable to find sufficient information in the codebase to answer: %s\n\n"+
		"Please try rephrasing your question or ensure the repository has been properly indexed.",
		question)
}
