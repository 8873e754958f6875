package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/54b3r/docsearch-go/internal/extract"
	"github.com/54b3r/docsearch-go/internal/ingest"
	"github.com/54b3r/docsearch-go/internal/logging"
)

// NewIngestCmd constructs the `docsearch ingest` command, which runs the
// PDF ingestion pipeline to populate the vector store.
func NewIngestCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Ingest PDF documents into the vector store",
		Long: `Extract, split, embed, and index PDF documents into the vector store.

Pass one or more PDF files as arguments, or use --dir to ingest every
*.pdf file in a directory. Files that cannot be read are skipped with a
warning; the rest of the batch still lands.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: docsearch)
  QDRANT_API_KEY       Optional API key for authenticated clusters
  EMBEDDING_PROVIDER   Embedding backend: ollama, openai, azure (default: ollama)
  EMBEDDING_*          Provider-specific overrides (see README)

Examples:
  docsearch ingest report.pdf manual.pdf
  docsearch ingest --dir ./papers
  VECTOR_STORE=memory docsearch ingest demo.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			if len(args) == 0 && dir == "" {
				return fmt.Errorf("ingest: pass PDF files as arguments or use --dir")
			}
			if len(args) > 0 && dir != "" {
				return fmt.Errorf("ingest: pass either files or --dir, not both")
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			store, err := buildStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer store.Close()

			jnl := openJournal(log)
			if jnl != nil {
				defer func() { _ = jnl.Close() }()
			}

			svc, err := ingest.New(extract.NewPDFToText(), emb, store, jnl, chunkingConfig())
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			var resp *ingest.Response
			if dir != "" {
				resp, err = svc.IngestDirectory(ctx, dir)
			} else {
				files := make([]ingest.File, 0, len(args))
				for _, path := range args {
					data, readErr := os.ReadFile(path)
					if readErr != nil {
						return fmt.Errorf("ingest: reading %s: %w", path, readErr)
					}
					files = append(files, ingest.File{Name: filepath.Base(path), Data: data})
				}
				resp, err = svc.IngestFiles(ctx, files)
			}
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			log.Info("ingest complete", slog.Int("stored", len(resp.Files)))
			fmt.Println(resp.Message)
			for _, name := range resp.Files {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory of *.pdf files to ingest")

	return cmd
}
