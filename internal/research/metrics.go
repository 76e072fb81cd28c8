package research

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/codescout/internal/research"

// Metrics holds research-run metrics. Instruments come from the global OTel
// meter, so without a configured provider they are no-ops. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	meter       metric.Meter
	logger      *zap.Logger
	runDuration metric.Float64Histogram
	rounds      metric.Int64Histogram
	queries     metric.Int64Counter
	learnings   metric.Int64Counter
	errors      metric.Int64Counter
}

// NewMetrics creates a Metrics instance for the orchestrator.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.runDuration, err = m.meter.Float64Histogram(
		"codescout.research.run_duration_seconds",
		metric.WithDescription("Wall-clock duration of a research run, labeled by terminal condition (completed, cancelled, timeout, query_limit, no_queries)"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 30, 60, 120, 180, 240, 300),
	)
	if err != nil {
		m.logger.Warn("failed to create run duration histogram", zap.Error(err))
	}

	m.rounds, err = m.meter.Int64Histogram(
		"codescout.research.rounds_per_run",
		metric.WithDescription("Research rounds executed per run. Values below the requested depth indicate early termination."),
		metric.WithUnit("{round}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 4, 5),
	)
	if err != nil {
		m.logger.Warn("failed to create rounds histogram", zap.Error(err))
	}

	m.queries, err = m.meter.Int64Counter(
		"codescout.research.queries_total",
		metric.WithDescription("Total retrieval queries issued across all runs."),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		m.logger.Warn("failed to create queries counter", zap.Error(err))
	}

	m.learnings, err = m.meter.Int64Counter(
		"codescout.research.learnings_total",
		metric.WithDescription("Total learnings extracted across all runs."),
		metric.WithUnit("{learning}"),
	)
	if err != nil {
		m.logger.Warn("failed to create learnings counter", zap.Error(err))
	}

	m.errors, err = m.meter.Int64Counter(
		"codescout.research.capability_errors_total",
		metric.WithDescription("Capability call failures absorbed by the run, labeled by stage (generate, retrieve, extract, report)."),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.logger.Warn("failed to create errors counter", zap.Error(err))
	}
}

// RecordQuery counts one issued retrieval query.
func (m *Metrics) RecordQuery(ctx context.Context) {
	if m == nil || m.queries == nil {
		return
	}
	m.queries.Add(ctx, 1)
}

// RecordLearnings counts learnings extracted for one query.
func (m *Metrics) RecordLearnings(ctx context.Context, n int) {
	if m == nil || m.learnings == nil || n <= 0 {
		return
	}
	m.learnings.Add(ctx, int64(n))
}

// RecordCapabilityError counts one absorbed capability failure.
func (m *Metrics) RecordCapabilityError(ctx context.Context, stage string) {
	if m == nil || m.errors == nil {
		return
	}
	m.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordRun records run-level measurements at completion.
func (m *Metrics) RecordRun(ctx context.Context, rounds int, duration time.Duration, terminal string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("terminal", terminal))
	if m.runDuration != nil {
		m.runDuration.Record(ctx, duration.Seconds(), attrs)
	}
	if m.rounds != nil {
		m.rounds.Record(ctx, int64(rounds), attrs)
	}
}
