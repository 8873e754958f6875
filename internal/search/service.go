// Package search implements the semantic search flow: embed the query,
// retrieve the nearest passages from the vector store, and shape the hits
// for presentation. It is invoked by the `docsearch search` CLI command and
// the POST /api/search endpoint.
package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/54b3r/docsearch-go/internal/rag"
)

// Result is one search hit ready for presentation.
type Result struct {
	// Document is the source document name.
	Document string `json:"document"`
	// Page is the 1-indexed page the passage came from.
	Page int `json:"page"`
	// Score is the cosine similarity in [-1, 1], rounded to 4 decimals.
	Score float64 `json:"score"`
	// Content is the passage text.
	Content string `json:"content"`
}

// Service orchestrates query embedding and vector retrieval.
type Service struct {
	// embedder converts the query into a dense vector embedding.
	embedder rag.Embedder

	// store answers nearest-neighbour queries.
	store rag.VectorStore

	// defaultTopK is the result count used when the caller passes topK <= 0.
	defaultTopK int
}

// New constructs a Service. A defaultTopK of zero falls back to 5.
func New(embedder rag.Embedder, store rag.VectorStore, defaultTopK int) (*Service, error) {
	if embedder == nil {
		return nil, fmt.Errorf("search: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("search: store must not be nil")
	}
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &Service{embedder: embedder, store: store, defaultTopK: defaultTopK}, nil
}

// Search returns the topK most similar passages for the query, best first.
// The query is trimmed before use; one that is empty after trimming fails
// with ErrEmptyQuery before any backend is contacted. topK <= 0 selects the
// service default. An empty store yields an empty result list, not an error.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search: query must not be empty: %w", rag.ErrEmptyQuery)
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: embedding query: %w: %w", rag.ErrSearch, err)
	}

	hits, err := s.store.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("search: querying store: %w: %w", rag.ErrSearch, err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			Document: h.Source,
			Page:     h.Page,
			Score:    roundScore(float64(h.Score)),
			Content:  h.Text,
		}
	}
	return results, nil
}

// roundScore rounds a similarity score to 4 decimal places so presentation
// is stable across backends.
func roundScore(x float64) float64 {
	return math.Round(x*10000) / 10000
}
