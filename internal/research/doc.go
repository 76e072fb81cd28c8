// Package research implements the iterative deep-research orchestrator.
//
// The orchestrator answers a natural-language question about a code
// repository by running a bounded loop of search rounds. Each round asks a
// QueryGenerator for candidate search queries, fans them out one at a time
// through a Retriever and an Extractor, and appends the extracted learnings
// to a cumulative set. From the second round onward the cumulative learnings
// are fed back into query generation so later rounds investigate more
// specific angles instead of repeating earlier searches. When the loop stops,
// a Reporter synthesizes the final report as a stream of text fragments.
//
// # Stop conditions
//
// The loop exits on the first of: cancellation (context or probe), the run's
// wall-clock ceiling, the global query ceiling, depth exhaustion, or an empty
// candidate list from the QueryGenerator. All of these are expected terminal
// states, not errors; whatever learnings exist at that point are handed to
// the report phase.
//
// # Failure tolerance
//
// A failed capability call never aborts a run. Query generation failures end
// the round loop early; retrieval and extraction failures count as zero
// learnings for that query; a report synthesis failure becomes a textual
// error message in the result. Run only returns an error for an invalid
// request.
//
// # Progress
//
// Callers may supply a progress sink to observe the run: round starts, query
// dispatches, extraction counts, terminal conditions, and the final report
// fragment by fragment. Delivery goes through a bounded single-consumer
// queue; a slow sink drops the oldest pending events and a panicking sink
// disables delivery for the rest of the run. Neither affects the research
// loop itself.
package research
