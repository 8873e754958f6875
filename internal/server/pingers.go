package server

import (
	"context"
	"fmt"

	"github.com/54b3r/docsearch-go/internal/rag"
)

// QdrantPinger probes a Qdrant-backed vector store using its native
// HealthCheck RPC. It satisfies the Pinger interface and is used by
// GET /api/ready.
type QdrantPinger struct {
	// store is the Qdrant store to probe.
	store *rag.QdrantStore
}

// NewQdrantPinger constructs a QdrantPinger for the given store.
func NewQdrantPinger(store *rag.QdrantStore) *QdrantPinger {
	return &QdrantPinger{store: store}
}

// Name returns the dependency label used in readiness responses.
func (p *QdrantPinger) Name() string { return "qdrant" }

// Ping calls the Qdrant HealthCheck RPC.
// Returns nil if Qdrant is reachable, or a descriptive error otherwise.
func (p *QdrantPinger) Ping(ctx context.Context) error {
	return p.store.Ping(ctx)
}

// EmbedderPinger probes an embedding backend by embedding a single short
// string. On an Ollama backend the first probe also forces the model into
// memory, so readiness flips to true only once the model is actually usable.
type EmbedderPinger struct {
	// embedder is the backend to probe.
	embedder rag.Embedder
	// name identifies the backend in readiness responses (e.g. "ollama").
	name string
}

// NewEmbedderPinger constructs an EmbedderPinger for the given embedder and
// backend name.
func NewEmbedderPinger(e rag.Embedder, name string) *EmbedderPinger {
	return &EmbedderPinger{embedder: e, name: name}
}

// Name returns the backend label used in readiness responses.
func (p *EmbedderPinger) Name() string { return p.name }

// Ping embeds a one-word probe string.
// Returns nil if the backend produced a vector, or a descriptive error.
func (p *EmbedderPinger) Ping(ctx context.Context) error {
	vec, err := p.embedder.EmbedQuery(ctx, "ping")
	if err != nil {
		return fmt.Errorf("embed probe failed: %w", err)
	}
	if len(vec) == 0 {
		return fmt.Errorf("embed probe returned an empty vector")
	}
	return nil
}
