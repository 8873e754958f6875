package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/54b3r/docsearch-go/internal/extract"
	"github.com/54b3r/docsearch-go/internal/ingest"
	"github.com/54b3r/docsearch-go/internal/logging"
	"github.com/54b3r/docsearch-go/internal/rag"
	"github.com/54b3r/docsearch-go/internal/search"
	"github.com/54b3r/docsearch-go/internal/server"
)

// NewServeCmd constructs the `docsearch serve` command, which starts the
// HTTP server exposing the ingest and search pipelines.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the docsearch HTTP server",
		Long: `Start the docsearch HTTP server on localhost.

The server exposes a REST API for uploading PDF documents, running
semantic queries, and inspecting the index. Set DOCSEARCH_API_KEY to
require Bearer token authentication on /api/* routes.

Examples:
  docsearch serve
  docsearch serve --port 9090
  VECTOR_STORE=memory docsearch serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting",
				slog.String("embedding_provider", getEnvOrDefault("EMBEDDING_PROVIDER", "ollama")),
				slog.String("vector_store", getEnvOrDefault("VECTOR_STORE", "qdrant")),
			)

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			store, err := buildStore(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer store.Close()

			jnl := openJournal(log)
			if jnl != nil {
				defer func() { _ = jnl.Close() }()
			}

			ingestSvc, err := ingest.New(extract.NewPDFToText(), emb, store, jnl, chunkingConfig())
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			searchSvc, err := search.New(emb, store, getEnvInt("SEARCH_TOP_K", 5))
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			var pingers []server.Pinger
			if qs, ok := store.(*rag.QdrantStore); ok {
				pingers = append(pingers, server.NewQdrantPinger(qs))
			}
			pingers = append(pingers,
				server.NewEmbedderPinger(emb, getEnvOrDefault("EMBEDDING_PROVIDER", "ollama")))

			srv, err := server.New(ingestSvc, searchSvc, store, jnl, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				APIKey:  os.Getenv("DOCSEARCH_API_KEY"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
