// Package rag defines the interfaces for the retrieval pipeline: text
// embedding and vector storage. Concrete implementations (Qdrant, the
// in-memory store, the HTTP embedders) satisfy these interfaces so the
// orchestration services never depend on a specific backend.
package rag

import (
	"context"
	"fmt"
)

// Passage is a chunk of document text, the atomic unit of embedding and
// retrieval. Passages are produced by the splitter, populated with an
// embedding, handed to the vector store, and then discarded — the store's
// record is the only durable artifact.
type Passage struct {
	// Text is the passage content, non-empty after trimming.
	Text string

	// Source is the original filename the passage came from (e.g. "report.pdf").
	Source string

	// Page is the 1-indexed page number; 0 means the page is unknown.
	Page int

	// Sequence is the 0-indexed position of this passage within the whole
	// document, strictly increasing across pages in page order.
	Sequence int

	// Embedding is the vector representation. Empty until the Embedder has
	// run; the store rejects passages with an empty embedding.
	Embedding []float32
}

// ID returns the stable identity of this passage, derived from source, page,
// and sequence (e.g. "report.pdf#p3#c7"). It is the idempotency key for
// storage: re-upserting the same ID overwrites the prior record.
func (p Passage) ID() string {
	return fmt.Sprintf("%s#p%d#c%d", p.Source, p.Page, p.Sequence)
}

// Result is a single retrieval hit returned from a similarity query.
type Result struct {
	// Text is the stored passage content.
	Text string

	// Source is the document the passage came from.
	Source string

	// Page is the 1-indexed page within that document (0 if unknown).
	Page int

	// Score is the cosine similarity in [-1, 1]; higher = more relevant.
	// Every backend adapter converts its native distance metric to this
	// convention before returning results, so downstream consumers can
	// always assume "higher score = more relevant".
	Score float32
}

// Embedder is the interface for converting text into dense vector embeddings.
// Document-side and query-side encoding are distinct operations because some
// backends apply different normalisation or instruction prefixes to corpus
// text versus query text. Implementations must be safe to call from multiple
// goroutines, and any lazy model initialisation must happen at most once even
// under concurrent first use.
type Embedder interface {
	// EmbedDocuments converts a batch of passage texts into embeddings.
	// The returned slice is parallel to the input. An empty input returns an
	// empty slice without touching the backend.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery converts a single query string into an embedding.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is the interface for persisting embedded passages and running
// similarity queries against them. Implementations must be safe to call from
// multiple goroutines; writes to the same passage ID are serialised by the
// backend.
type VectorStore interface {
	// Upsert stores or overwrites a batch of embedded passages, keyed by
	// Passage.ID. Passages with an empty embedding are rejected with
	// ErrStore before any backend round-trip. An empty batch is a no-op.
	Upsert(ctx context.Context, passages []Passage) error

	// Query returns at most min(topK, stored records) results ordered by
	// descending similarity. An empty query vector is rejected with ErrStore
	// before any backend round-trip.
	Query(ctx context.Context, vector []float32, topK int) ([]Result, error)

	// Clear removes every record but keeps the collection usable for
	// subsequent upserts. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error

	// Count returns the number of records currently stored.
	Count(ctx context.Context) (uint64, error)

	// Close releases any resources held by the store.
	Close() error
}
