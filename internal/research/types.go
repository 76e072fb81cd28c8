package research

// Request describes a single deep-research run.
//
// Breadth and Depth are clamped into [1, Limits.MaxBreadth] and
// [1, Limits.MaxDepth] at the Run boundary, so callers cannot exceed the
// orchestrator's safety limits regardless of input.
type Request struct {
	// Question is the original research question. Must be non-empty.
	Question string

	// Breadth is the maximum number of search queries per round.
	Breadth int

	// Depth is the maximum number of research rounds.
	Depth int

	// Language is passed through to the Retriever. The orchestrator does
	// not interpret it.
	Language string

	// Progress, if non-nil, receives plain-text progress events during the
	// run and the final report fragment by fragment. The sink must not
	// block for long; pending events are dropped oldest-first if it does.
	Progress func(string)

	// Cancelled, if non-nil, is polled before each round and before each
	// query. Returning true stops the run cooperatively; learnings
	// gathered so far are kept.
	Cancelled func() bool
}

// CandidateQuery is one search avenue proposed by the QueryGenerator.
// Candidates live for a single round and are never persisted.
type CandidateQuery struct {
	// Query is the search string sent to the Retriever.
	Query string `json:"query"`

	// Goal explains what the query is trying to learn.
	Goal string `json:"research_goal"`
}

// Document is a retrieved unit of repository content. It is produced by the
// Retriever and read-only to the orchestrator.
type Document struct {
	// Content is the document body.
	Content string

	// Path identifies the source file the content came from.
	Path string

	// Score is the retrieval similarity score, highest first.
	Score float32
}

// Extraction is the result of distilling a batch of documents for one query.
type Extraction struct {
	// Learnings are distilled facts, at most the requested maximum.
	Learnings []string

	// FollowUps are follow-up questions proposed by the extractor. They
	// are collected but not consumed by the round loop; they exist for
	// future multi-branch exploration.
	FollowUps []string
}

// Result is the outcome of a research run.
type Result struct {
	// Learnings holds every learning in discovery order: round 1 before
	// round 2, and within a round, query i before query i+1. Duplicates
	// are kept.
	Learnings []string

	// FinalReport is the synthesized report, the concatenation of all
	// streamed fragments in arrival order. Never empty: runs with no
	// learnings produce a deterministic fallback message.
	FinalReport string
}
