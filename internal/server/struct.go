package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/docsearch-go/internal/ingest"
	"github.com/54b3r/docsearch-go/internal/journal"
	"github.com/54b3r/docsearch-go/internal/rag"
	"github.com/54b3r/docsearch-go/internal/search"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// MaxUploadBytes caps the total size of a multipart ingest request.
	// Defaults to 128 MiB if zero.
	MaxUploadBytes int64
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// MetricsRegistry receives all server metric registrations. If nil,
	// prometheus.DefaultRegisterer is used.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs the GET /metrics endpoint. If nil,
	// prometheus.DefaultGatherer is used.
	MetricsGatherer prometheus.Gatherer
}

// ingestor is the interface handleIngest calls to process uploads.
// *ingest.Service satisfies it; tests inject a fake.
type ingestor interface {
	// IngestFiles processes a batch of in-memory PDF uploads.
	IngestFiles(ctx context.Context, files []ingest.File) (*ingest.Response, error)
	// IngestDirectory ingests every *.pdf in a server-local directory.
	IngestDirectory(ctx context.Context, dir string) (*ingest.Response, error)
}

// searcher is the interface handleSearch calls to run a query.
// *search.Service satisfies it; tests inject a fake.
type searcher interface {
	// Search returns the topK most similar passages for the query.
	Search(ctx context.Context, query string, topK int) ([]search.Result, error)
}

// Server is the HTTP server that exposes the ingest and search pipelines.
type Server struct {
	// ingestor processes uploads; set to *ingest.Service in production.
	ingestor ingestor
	// searcher answers queries; set to *search.Service in production.
	searcher searcher
	// store is used by POST /api/clear and GET /api/documents for counts.
	store rag.VectorStore
	// journal lists ingested documents for GET /api/documents. May be nil.
	journal journal.Journal
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds all Prometheus metrics owned by this server instance.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// searchRequest is the JSON body for POST /api/search.
type searchRequest struct {
	// Query is the natural language search query.
	Query string `json:"query"`
	// TopK is the number of results to return. Zero selects the default.
	TopK int `json:"top_k"`
}

// searchResponse is the JSON response for POST /api/search.
type searchResponse struct {
	// Query echoes the query that was executed.
	Query string `json:"query"`
	// Results is the ranked list of passage hits, best first.
	Results []search.Result `json:"results"`
}

// documentEntry is one row in the GET /api/documents response.
type documentEntry struct {
	// Document is the ingested document name.
	Document string `json:"document"`
	// Passages is the number of passages stored for the document.
	Passages int `json:"passages"`
	// IngestedAt is when the document was last ingested (RFC3339).
	IngestedAt string `json:"ingested_at"`
}

// documentsResponse is the JSON response for GET /api/documents.
type documentsResponse struct {
	// Documents is the journal of ingested documents, most recent first.
	Documents []documentEntry `json:"documents"`
	// StoredPassages is the total number of passages in the vector store.
	StoredPassages uint64 `json:"stored_passages"`
}

// errorResponse is the JSON body for all 4xx/5xx API responses.
type errorResponse struct {
	// Error is the human-readable failure description.
	Error string `json:"error"`
}
