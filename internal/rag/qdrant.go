package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Payload keys used for passage records stored in Qdrant.
const (
	payloadText     = "text"
	payloadSource   = "source"
	payloadPage     = "page"
	payloadSequence = "sequence"
)

// QdrantConfig holds connection parameters for a Qdrant vector store instance.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// Collection is the Qdrant collection name to use.
	Collection string

	// VectorSize is the dimensionality of the embeddings stored in this
	// collection. Must match the embedder's output dimension.
	VectorSize uint64

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantStore implements VectorStore backed by a Qdrant instance. The
// collection is created with cosine distance, so Qdrant's scored points
// already carry cosine similarity in [-1, 1] — no score conversion is needed
// in this adapter. Adapters for backends with other native metrics own
// their own conversion.
type QdrantStore struct {
	// client is the underlying Qdrant gRPC client.
	client *qdrant.Client

	// cfg holds the resolved configuration for this store.
	cfg *QdrantConfig
}

// NewQdrantStore creates a new QdrantStore, ensuring the target collection
// exists (creating it if necessary), and returns a ready-to-use VectorStore.
func NewQdrantStore(ctx context.Context, cfg *QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w: %w", ErrStore, err)
	}

	store := &QdrantStore{client: client, cfg: cfg}
	if err := store.ensureCollection(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the Qdrant collection if it does not already exist.
func (s *QdrantStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("qdrant: failed to check collection existence: %w: %w", ErrStore, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.cfg.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: failed to create collection %q: %w: %w", s.cfg.Collection, ErrStore, err)
	}

	return nil
}

// pointID maps a passage identity to a deterministic Qdrant point UUID.
// UUIDv5 over the identity string keeps re-upserts of the same passage
// idempotent: same (source, page, sequence) always hits the same point.
func pointID(p Passage) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(p.ID())).String())
}

// Upsert stores or overwrites a batch of embedded passages.
func (s *QdrantStore) Upsert(ctx context.Context, passages []Passage) error {
	if len(passages) == 0 {
		return nil
	}

	// Precondition: every passage must carry an embedding. Checked before
	// the backend round-trip so a half-embedded batch never reaches Qdrant.
	for _, p := range passages {
		if len(p.Embedding) == 0 {
			return fmt.Errorf("qdrant: passage %s has no embedding: %w", p.ID(), ErrStore)
		}
	}

	points := make([]*qdrant.PointStruct, 0, len(passages))
	for _, p := range passages {
		points = append(points, &qdrant.PointStruct{
			Id:      pointID(p),
			Vectors: qdrant.NewVectors(p.Embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadText:     p.Text,
				payloadSource:   p.Source,
				payloadPage:     p.Page,
				payloadSequence: p.Sequence,
			}),
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.cfg.Collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert failed: %w: %w", ErrStore, err)
	}

	return nil
}

// Query performs a cosine similarity search and returns the top-k results
// ordered by descending similarity.
func (s *QdrantStore) Query(ctx context.Context, vector []float32, topK int) ([]Result, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("qdrant: cannot query with an empty vector: %w", ErrStore)
	}

	limit := uint64(topK) //nolint:gosec // topK is validated by the search service
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.cfg.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: query failed: %w: %w", ErrStore, err)
	}

	results := make([]Result, 0, len(points))
	for _, pt := range points {
		res := Result{Score: pt.Score}
		if p := pt.Payload; p != nil {
			if v, ok := p[payloadText]; ok {
				res.Text = v.GetStringValue()
			}
			if v, ok := p[payloadSource]; ok {
				res.Source = v.GetStringValue()
			}
			if v, ok := p[payloadPage]; ok {
				res.Page = int(v.GetIntegerValue())
			}
		}
		results = append(results, res)
	}

	return results, nil
}

// Clear removes every point from the collection. The collection itself is
// kept, so subsequent upserts work without re-creating it.
func (s *QdrantStore) Clear(ctx context.Context) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.cfg.Collection,
		Points:         qdrant.NewPointsSelectorFilter(&qdrant.Filter{}),
	})
	if err != nil {
		return fmt.Errorf("qdrant: clear failed: %w: %w", ErrStore, err)
	}
	return nil
}

// Count returns the exact number of points currently stored.
func (s *QdrantStore) Count(ctx context.Context) (uint64, error) {
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.cfg.Collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant: count failed: %w: %w", ErrStore, err)
	}
	return n, nil
}

// Ping calls the Qdrant HealthCheck RPC. Used by the readiness endpoint.
func (s *QdrantStore) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant: health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying Qdrant gRPC connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}
