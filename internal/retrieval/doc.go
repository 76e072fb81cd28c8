// Package retrieval stores and searches code snippets with an embedded
// vector database (chromem-go).
//
// The Store holds one collection of indexed code chunks. Indexing walks a
// repository directory, splits source files into chunks, and embeds them in
// batch. Retrieval embeds the query and returns the nearest chunks ranked by
// cosine similarity.
//
// chromem-go runs in-process with no external service. An empty Path keeps
// the database in memory, which is what the tests use; a non-empty Path
// persists gob files under that directory.
package retrieval
