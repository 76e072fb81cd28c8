package research

import "context"

// QueryGenerator proposes search queries for a research question.
//
// Implementations may return fewer than max candidates. An empty list is a
// valid terminal signal meaning there is nothing left to investigate, not an
// error.
type QueryGenerator interface {
	// GenerateQueries returns up to max candidate queries for question.
	// learnings carries everything learned in earlier rounds (nil on the
	// first round) so implementations can target unexplored ground.
	GenerateQueries(ctx context.Context, question string, learnings []string, max int) ([]CandidateQuery, error)
}

// Retriever searches the repository index for documents matching a query.
//
// An empty result is not an error; it means the index has nothing relevant.
type Retriever interface {
	// Retrieve returns ranked documents for the query, best first.
	Retrieve(ctx context.Context, query, language string) ([]Document, error)
}

// Extractor distills retrieved documents into learnings.
type Extractor interface {
	// Extract returns at most maxLearnings learnings and maxFollowUps
	// follow-up questions for the documents retrieved by query.
	Extract(ctx context.Context, query string, docs []Document, maxLearnings, maxFollowUps int) (Extraction, error)
}

// Reporter synthesizes the final report from the accumulated learnings.
//
// Implementations stream the report through onChunk as fragments arrive and
// return the full text. A non-streaming implementation may call onChunk once
// with the complete report. onChunk may be nil.
type Reporter interface {
	SynthesizeReport(ctx context.Context, question string, learnings []string, onChunk func(string)) (string, error)
}
