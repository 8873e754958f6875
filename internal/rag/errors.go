package rag

import "errors"

// Error kinds for the ingestion and search pipeline. Components wrap these
// sentinels with fmt.Errorf("...: %w", ...) so callers classify failures with
// errors.Is while the full cause chain stays intact. The HTTP layer maps
// these kinds to status codes; nothing else should inspect error strings.
var (
	// ErrConfig reports invalid construction parameters (e.g. a chunk
	// overlap that is not smaller than the chunk size). Fatal at startup.
	ErrConfig = errors.New("invalid configuration")

	// ErrExtraction reports a per-file text extraction failure: empty bytes,
	// an unparseable document, or no extractable text on any page.
	// Recoverable — batch ingest skips the file and continues.
	ErrExtraction = errors.New("text extraction failed")

	// ErrEmbedding reports that the embedding backend could not produce
	// vectors (model load failure, backend error). Aborts the current file
	// or query; never silently recovered.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStore reports a vector store failure: backend unavailable, a
	// passage missing its embedding, or an empty query vector.
	ErrStore = errors.New("vector store failure")

	// ErrEmptyQuery reports a blank or all-whitespace search query. Checked
	// before any embedding call and always surfaced to the caller.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrSearch wraps embedding or store failures that occur inside a search
	// call so the transport layer sees one failure kind with the underlying
	// cause attached.
	ErrSearch = errors.New("search failed")
)
