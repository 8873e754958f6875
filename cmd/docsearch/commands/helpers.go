package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/54b3r/docsearch-go/internal/embedder"
	"github.com/54b3r/docsearch-go/internal/ingest"
	"github.com/54b3r/docsearch-go/internal/journal"
	"github.com/54b3r/docsearch-go/internal/rag"
)

// buildEmbedder validates the embedding environment and constructs the
// configured backend.
func buildEmbedder(log *slog.Logger) (rag.Embedder, error) {
	if err := embedder.Validate(log); err != nil {
		return nil, err
	}
	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}
	log.Info("embedder initialised",
		slog.String("provider", getEnvOrDefault("EMBEDDING_PROVIDER", "ollama")))
	return emb, nil
}

// buildStore constructs the vector store selected by VECTOR_STORE:
// "qdrant" (default) or "memory". The memory store is for local
// experimentation only — it loses all data on process exit.
func buildStore(ctx context.Context, log *slog.Logger) (rag.VectorStore, error) {
	backend := getEnvOrDefault("VECTOR_STORE", "qdrant")

	switch backend {
	case "memory":
		log.Warn("using in-memory vector store — data is lost on exit")
		return rag.NewMemoryStore(), nil

	case "qdrant":
		host := getEnvOrDefault("QDRANT_HOST", "localhost")
		port := getEnvInt("QDRANT_PORT", 6334)
		collection := getEnvOrDefault("QDRANT_COLLECTION", "docsearch")
		embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", "ollama")
		vectorSize := uint64(embedder.DefaultDimensions(embBackend)) //nolint:gosec // dimensions are bounded

		store, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
			Host:       host,
			Port:       port,
			Collection: collection,
			VectorSize: vectorSize,
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     os.Getenv("QDRANT_TLS") == "true",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", host, port, err)
		}
		log.Info("qdrant store ready",
			slog.String("host", host),
			slog.Int("port", port),
			slog.String("collection", collection),
		)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown vector store %q — valid values: qdrant, memory", backend)
	}
}

// openJournal opens the ingest journal. DOCSEARCH_JOURNAL_DB overrides the
// default path (~/.docsearch/journal.db); set to "disabled" to skip record
// keeping. A journal failure is logged and treated as disabled rather than
// fatal — the journal is bookkeeping, not the store of record.
func openJournal(log *slog.Logger) journal.Journal {
	dbPath := os.Getenv("DOCSEARCH_JOURNAL_DB")
	if dbPath == "disabled" {
		log.Info("journal: disabled via DOCSEARCH_JOURNAL_DB=disabled")
		return nil
	}
	if dbPath == "" {
		var err error
		dbPath, err = journal.DefaultDBPath()
		if err != nil {
			log.Warn("journal: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil
		}
	}

	jnl, err := journal.Open(dbPath)
	if err != nil {
		log.Warn("journal: failed to open, disabling", slog.Any("error", err))
		return nil
	}
	log.Info("journal: opened", slog.String("path", dbPath))
	return jnl
}

// chunkingConfig resolves the splitter settings from the environment.
func chunkingConfig() *ingest.Config {
	return &ingest.Config{
		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
	}
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
