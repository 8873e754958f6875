// Package ingest implements the document ingestion pipeline.
// It extracts per-page text from PDF bytes, splits pages into overlapping
// passages, embeds each passage, and upserts the results into the vector
// store. The pipeline is invoked by the `docsearch ingest` CLI command and
// the POST /api/ingest endpoint.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/54b3r/docsearch-go/internal/extract"
	"github.com/54b3r/docsearch-go/internal/journal"
	"github.com/54b3r/docsearch-go/internal/logging"
	"github.com/54b3r/docsearch-go/internal/rag"
	"github.com/54b3r/docsearch-go/internal/splitter"
)

// File is one document presented for ingestion.
type File struct {
	// Name is the document name used for source attribution.
	Name string
	// Data is the raw PDF bytes.
	Data []byte
}

// Response summarises the outcome of one ingest call.
type Response struct {
	// Message is the human-readable outcome summary.
	Message string `json:"message"`
	// Files lists the names of the documents that were stored.
	Files []string `json:"files_received"`
}

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of characters per passage.
	// Defaults to 1000 if zero.
	ChunkSize int

	// ChunkOverlap is the number of characters shared between consecutive
	// passages. Defaults to 200 if zero.
	ChunkOverlap int
}

// Service orchestrates the extract → split → embed → upsert flow.
// A batch is processed file by file: one broken document is skipped with a
// log entry while the rest of the batch proceeds.
type Service struct {
	// extractor turns PDF bytes into per-page text.
	extractor extract.Extractor

	// splitter turns page text into overlapping passages.
	splitter *splitter.Splitter

	// embedder converts passage texts into dense vector embeddings.
	embedder rag.Embedder

	// store persists the embedded passages.
	store rag.VectorStore

	// journal records per-document ingest metadata. May be nil.
	journal journal.Journal
}

// New constructs a Service from the provided dependencies and config.
// The journal may be nil when no ingest record keeping is wanted.
func New(extractor extract.Extractor, embedder rag.Embedder, store rag.VectorStore, jnl journal.Journal, cfg *Config) (*Service, error) {
	if extractor == nil {
		return nil, fmt.Errorf("ingest: extractor must not be nil")
	}
	if embedder == nil {
		return nil, fmt.Errorf("ingest: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingest: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap == 0 {
		cfg.ChunkOverlap = 200
	}

	split, err := splitter.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	return &Service{
		extractor: extractor,
		splitter:  split,
		embedder:  embedder,
		store:     store,
		journal:   jnl,
	}, nil
}

// IngestFiles processes a batch of documents. Files are processed in order;
// a file that fails extraction or embedding is logged and skipped so the
// remaining files still land. The response message reflects how many files
// actually made it into the store.
func (s *Service) IngestFiles(ctx context.Context, files []File) (*Response, error) {
	log := logging.FromContext(ctx)

	if len(files) == 0 {
		return &Response{Message: "No files provided.", Files: []string{}}, nil
	}

	stored := make([]string, 0, len(files))
	for _, f := range files {
		passages, err := s.processFile(ctx, f)
		if err != nil {
			if errors.Is(err, rag.ErrExtraction) {
				log.Warn("ingest: skipping unreadable document",
					"file", f.Name, "error", err)
			} else {
				log.Error("ingest: skipping document after pipeline failure",
					"file", f.Name, "error", err)
			}
			continue
		}
		if passages == 0 {
			log.Warn("ingest: document produced no passages", "file", f.Name)
			continue
		}

		stored = append(stored, f.Name)
		log.Info("ingest: document stored", "file", f.Name, "passages", passages)

		if s.journal != nil {
			if err := s.journal.Record(ctx, f.Name, passages); err != nil {
				// Journal trouble must not undo a successful ingest.
				log.Error("ingest: journal record failed", "file", f.Name, "error", err)
			}
		}
	}

	if len(stored) == 0 {
		return &Response{Message: "No files could be processed.", Files: []string{}}, nil
	}
	return &Response{
		Message: fmt.Sprintf("Successfully ingested %d PDF document(s).", len(stored)),
		Files:   stored,
	}, nil
}

// IngestDirectory reads every *.pdf file in dir (sorted by name, top level
// only) and ingests them as one batch. A missing or unreadable directory
// fails the whole call; a file that cannot be read is logged and skipped so
// the rest of the batch still lands. A directory without PDFs returns the
// empty-batch response.
func (s *Service) IngestDirectory(ctx context.Context, dir string) (*Response, error) {
	log := logging.FromContext(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ingest: reading directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	files := make([]File, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("ingest: skipping unreadable file", "file", name, "error", err)
			continue
		}
		files = append(files, File{Name: name, Data: data})
	}

	return s.IngestFiles(ctx, files)
}

// processFile runs one document through the full pipeline and returns the
// number of passages stored.
func (s *Service) processFile(ctx context.Context, f File) (int, error) {
	pages, err := s.extractor.Extract(ctx, f.Data, f.Name)
	if err != nil {
		return 0, err
	}

	passages := s.splitter.Split(pages, f.Name)
	if len(passages) == 0 {
		return 0, nil
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("ingest: embedding %s: %w", f.Name, err)
	}
	if len(embeddings) != len(passages) {
		return 0, fmt.Errorf("ingest: %s: expected %d embeddings, got %d: %w",
			f.Name, len(passages), len(embeddings), rag.ErrEmbedding)
	}
	for i := range passages {
		passages[i].Embedding = embeddings[i]
	}

	if err := s.store.Upsert(ctx, passages); err != nil {
		return 0, fmt.Errorf("ingest: storing %s: %w", f.Name, err)
	}

	return len(passages), nil
}
