package rag

import (
	"context"
	"errors"
	"testing"
)

// embedded returns a Passage with the given embedding, ready for upsert.
func embedded(source string, page, seq int, text string, vec []float32) Passage {
	return Passage{Text: text, Source: source, Page: page, Sequence: seq, Embedding: vec}
}

func Test_MemoryStore_UpsertEmptyBatchIsNoOp(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Upsert(ctx, nil); err != nil {
		t.Fatalf("upsert empty batch: %v", err)
	}
	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("want 0 records, got %d", n)
	}
}

func Test_MemoryStore_UpsertRejectsMissingEmbedding(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.Upsert(ctx, []Passage{{Text: "no vector", Source: "a.pdf", Page: 1}})
	if err == nil {
		t.Fatal("expected error for passage without embedding")
	}
	if !errors.Is(err, ErrStore) {
		t.Errorf("want ErrStore, got %v", err)
	}

	n, _ := s.Count(ctx)
	if n != 0 {
		t.Errorf("rejected batch must not be stored, got %d records", n)
	}
}

func Test_MemoryStore_ReupsertSameIdentityIsIdempotent(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	p := embedded("a.pdf", 1, 0, "original", []float32{1, 0})
	if err := s.Upsert(ctx, []Passage{p}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	p.Text = "overwritten"
	if err := s.Upsert(ctx, []Passage{p}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	n, _ := s.Count(ctx)
	if n != 1 {
		t.Fatalf("re-upserting the same identity must not grow the store, got %d records", n)
	}

	results, err := s.Query(ctx, []float32{1, 0}, 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if results[0].Text != "overwritten" {
		t.Errorf("want overwritten text, got %q", results[0].Text)
	}
}

func Test_MemoryStore_QueryRejectsEmptyVector(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()

	_, err := s.Query(context.Background(), nil, 5)
	if err == nil {
		t.Fatal("expected error for empty query vector")
	}
	if !errors.Is(err, ErrStore) {
		t.Errorf("want ErrStore, got %v", err)
	}
}

func Test_MemoryStore_ExactMatchRanksFirst(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	batch := []Passage{
		embedded("a.pdf", 1, 0, "orthogonal", []float32{0, 1, 0}),
		embedded("a.pdf", 1, 1, "exact match", []float32{1, 0, 0}),
		embedded("b.pdf", 2, 2, "opposite", []float32{-1, 0, 0}),
	}
	if err := s.Upsert(ctx, batch); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	results, err := s.Query(ctx, []float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("want 3 results, got %d", len(results))
	}
	if results[0].Text != "exact match" {
		t.Errorf("want exact match ranked first, got %q", results[0].Text)
	}
	if results[0].Score < 0.999 {
		t.Errorf("exact match score: want ~1.0, got %f", results[0].Score)
	}
	if results[2].Score > -0.999 {
		t.Errorf("opposite vector score: want ~-1.0, got %f", results[2].Score)
	}
}

func Test_MemoryStore_RoundTripPreservesMetadata(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	p := embedded("report.pdf", 3, 7, "quarterly revenue grew", []float32{0.2, 0.8, 0.1})
	if err := s.Upsert(ctx, []Passage{p}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	results, err := s.Query(ctx, p.Embedding, 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("want 1 result, got %d", len(results))
	}
	got := results[0]
	if got.Text != p.Text || got.Source != "report.pdf" || got.Page != 3 {
		t.Errorf("round trip mismatch: got %+v", got)
	}
}

func Test_MemoryStore_TopKClampedToStoreSize(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Upsert(ctx, []Passage{embedded("a.pdf", 1, 0, "only one", []float32{1})}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	results, err := s.Query(ctx, []float32{1}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("want 1 result, got %d", len(results))
	}
}

func Test_MemoryStore_ClearThenQueryReturnsEmpty(t *testing.T) {
	t.Parallel()
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Upsert(ctx, []Passage{embedded("a.pdf", 1, 0, "gone soon", []float32{1, 2})}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	// Clearing an already-empty store is a no-op, never an error.
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear empty: %v", err)
	}

	results, err := s.Query(ctx, []float32{1, 2}, 5)
	if err != nil {
		t.Fatalf("query after clear: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("want empty result list after clear, got %d", len(results))
	}

	// Store stays usable after Clear.
	if err := s.Upsert(ctx, []Passage{embedded("b.pdf", 1, 0, "back again", []float32{1, 2})}); err != nil {
		t.Fatalf("upsert after clear: %v", err)
	}
}

func Test_Passage_IDFormat(t *testing.T) {
	t.Parallel()

	p := Passage{Source: "doc.pdf", Page: 3, Sequence: 7}
	if got := p.ID(); got != "doc.pdf#p3#c7" {
		t.Errorf("want doc.pdf#p3#c7, got %q", got)
	}
}
