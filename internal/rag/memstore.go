package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore implements VectorStore with a brute-force in-memory index.
// It backs `--store memory` mode and the orchestrator unit tests — no
// external service required. Records are keyed by Passage.ID, so
// re-upserting the same identity overwrites rather than duplicates.
//
// The native metric is cosine similarity computed directly from the raw
// vectors, so scores already follow the higher-is-better convention.
type MemoryStore struct {
	// mu guards records and order.
	mu sync.RWMutex

	// records maps passage identity to the stored passage.
	records map[string]Passage

	// order preserves insertion order of identities so ties in score break
	// deterministically for a fixed store state.
	order []string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Passage)}
}

// Upsert stores or overwrites a batch of embedded passages.
func (s *MemoryStore) Upsert(_ context.Context, passages []Passage) error {
	if len(passages) == 0 {
		return nil
	}

	for _, p := range passages {
		if len(p.Embedding) == 0 {
			return fmt.Errorf("memstore: passage %s has no embedding: %w", p.ID(), ErrStore)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range passages {
		id := p.ID()
		if _, exists := s.records[id]; !exists {
			s.order = append(s.order, id)
		}
		s.records[id] = p
	}
	return nil
}

// Query returns the topK most similar records by descending cosine similarity.
func (s *MemoryStore) Query(_ context.Context, vector []float32, topK int) ([]Result, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("memstore: cannot query with an empty vector: %w", ErrStore)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		passage Passage
		score   float32
	}

	hits := make([]scored, 0, len(s.order))
	for _, id := range s.order {
		p := s.records[id]
		hits = append(hits, scored{passage: p, score: cosineSimilarity(vector, p.Embedding)})
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if topK > len(hits) {
		topK = len(hits)
	}
	results := make([]Result, 0, topK)
	for _, h := range hits[:topK] {
		results = append(results, Result{
			Text:   h.passage.Text,
			Source: h.passage.Source,
			Page:   h.passage.Page,
			Score:  h.score,
		})
	}
	return results, nil
}

// Clear removes every record. The store stays usable for further upserts.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]Passage)
	s.order = nil
	return nil
}

// Count returns the number of records currently stored.
func (s *MemoryStore) Count(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.records)), nil
}

// Close is a no-op — the store holds no external resources.
func (s *MemoryStore) Close() error { return nil }

// cosineSimilarity computes dot(a, b) / (|a| * |b|) in [-1, 1].
// Mismatched lengths compare only the common prefix; a zero vector scores 0.
func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
