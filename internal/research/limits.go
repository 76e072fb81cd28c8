package research

import (
	"fmt"
	"time"
)

// Default safety limits. These match the reference deployment: a run never
// outlives five minutes, never issues more than twenty retrieval queries,
// and never runs more than five rounds of five queries each.
const (
	DefaultMaxDepth             = 5
	DefaultMaxBreadth           = 5
	DefaultMaxTotalQueries      = 20
	DefaultMaxResearchTime      = 300 * time.Second
	DefaultMaxDocumentsPerQuery = 10
	DefaultLearningsPerQuery    = 3
)

// Limits holds the orchestrator's safety limits. They are explicit
// configuration rather than package globals so tests can run with small,
// fast-expiring values.
type Limits struct {
	// MaxDepth caps the number of rounds regardless of Request.Depth.
	MaxDepth int

	// MaxBreadth caps queries per round regardless of Request.Breadth.
	MaxBreadth int

	// MaxTotalQueries caps queries across the whole run, independent of
	// depth times breadth.
	MaxTotalQueries int

	// MaxResearchTime is the wall-clock budget for the entire run,
	// measured from run start. Once exceeded no new round begins.
	MaxResearchTime time.Duration

	// MaxDocumentsPerQuery caps how many retrieved documents are handed
	// to the Extractor. Lower-ranked documents beyond the cap are
	// discarded, a cost/quality tradeoff.
	MaxDocumentsPerQuery int

	// LearningsPerQuery is the maximum learnings requested per query.
	LearningsPerQuery int
}

// DefaultLimits returns the production limits.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:             DefaultMaxDepth,
		MaxBreadth:           DefaultMaxBreadth,
		MaxTotalQueries:      DefaultMaxTotalQueries,
		MaxResearchTime:      DefaultMaxResearchTime,
		MaxDocumentsPerQuery: DefaultMaxDocumentsPerQuery,
		LearningsPerQuery:    DefaultLearningsPerQuery,
	}
}

// Validate checks that every limit is positive.
func (l Limits) Validate() error {
	if l.MaxDepth < 1 {
		return fmt.Errorf("%w: max depth must be at least 1", ErrInvalidLimits)
	}
	if l.MaxBreadth < 1 {
		return fmt.Errorf("%w: max breadth must be at least 1", ErrInvalidLimits)
	}
	if l.MaxTotalQueries < 1 {
		return fmt.Errorf("%w: max total queries must be at least 1", ErrInvalidLimits)
	}
	if l.MaxResearchTime <= 0 {
		return fmt.Errorf("%w: max research time must be positive", ErrInvalidLimits)
	}
	if l.MaxDocumentsPerQuery < 1 {
		return fmt.Errorf("%w: max documents per query must be at least 1", ErrInvalidLimits)
	}
	if l.LearningsPerQuery < 1 {
		return fmt.Errorf("%w: learnings per query must be at least 1", ErrInvalidLimits)
	}
	return nil
}

// clamp bounds v into [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
