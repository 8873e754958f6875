package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/54b3r/docsearch-go/internal/ingest"
	"github.com/54b3r/docsearch-go/internal/logging"
	"github.com/54b3r/docsearch-go/internal/rag"
)

// handleIngest handles POST /api/ingest. The request is multipart/form-data
// with either one or more "input" file parts (PDF uploads) or a "directory"
// field naming a server-local directory of PDFs — never both.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "request must be multipart/form-data")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	dir := strings.TrimSpace(r.FormValue("directory"))
	uploads := r.MultipartForm.File["input"]

	if dir != "" && len(uploads) > 0 {
		writeError(w, http.StatusBadRequest, "provide either files or a directory, not both")
		return
	}

	var resp *ingest.Response
	var err error

	switch {
	case dir != "":
		resp, err = s.ingestor.IngestDirectory(r.Context(), dir)
		if err != nil {
			// A missing or unreadable directory is a caller mistake.
			s.metrics.ingestRequestsTotal.WithLabelValues("error").Inc()
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

	default:
		files := make([]ingest.File, 0, len(uploads))
		for _, fh := range uploads {
			if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
				writeError(w, http.StatusBadRequest, "only PDF files are accepted: "+fh.Filename)
				return
			}
			f, openErr := fh.Open()
			if openErr != nil {
				writeError(w, http.StatusBadRequest, "could not read upload: "+fh.Filename)
				return
			}
			data, readErr := io.ReadAll(f)
			_ = f.Close()
			if readErr != nil {
				writeError(w, http.StatusBadRequest, "could not read upload: "+fh.Filename)
				return
			}
			files = append(files, ingest.File{Name: filepath.Base(fh.Filename), Data: data})
		}

		resp, err = s.ingestor.IngestFiles(r.Context(), files)
		if err != nil {
			s.metrics.ingestRequestsTotal.WithLabelValues("error").Inc()
			log.Error("ingest failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "ingest failed")
			return
		}
	}

	s.metrics.ingestRequestsTotal.WithLabelValues("ok").Inc()
	s.metrics.ingestDocumentsTotal.Add(float64(len(resp.Files)))
	s.metrics.ingestDurationSeconds.Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, resp)
}

// handleSearch handles POST /api/search. An empty query is a caller error;
// embedding or store failures surface as 502 because they describe an
// unreachable upstream, not a broken request.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	start := time.Now()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := s.searcher.Search(r.Context(), req.Query, req.TopK)
	if err != nil {
		switch {
		case errors.Is(err, rag.ErrEmptyQuery):
			s.metrics.searchRequestsTotal.WithLabelValues("bad_request").Inc()
			writeError(w, http.StatusBadRequest, "query must not be empty")
		default:
			s.metrics.searchRequestsTotal.WithLabelValues("error").Inc()
			log.Error("search failed", slog.Any("error", err))
			writeError(w, http.StatusBadGateway, "search backend unavailable")
		}
		return
	}

	s.metrics.searchRequestsTotal.WithLabelValues("ok").Inc()
	s.metrics.searchDurationSeconds.Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, searchResponse{Query: req.Query, Results: results})
}

// handleClear handles POST /api/clear. It removes every stored passage and
// returns 204 on success.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	if err := s.store.Clear(r.Context()); err != nil {
		log.Error("clear failed", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "vector store unavailable")
		return
	}

	log.Info("vector store cleared")
	w.WriteHeader(http.StatusNoContent)
}

// handleDocuments handles GET /api/documents. It reports the ingest journal
// alongside the live passage count from the vector store.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	count, err := s.store.Count(r.Context())
	if err != nil {
		log.Error("count failed", slog.Any("error", err))
		writeError(w, http.StatusBadGateway, "vector store unavailable")
		return
	}

	resp := documentsResponse{Documents: []documentEntry{}, StoredPassages: count}
	if s.journal != nil {
		records, err := s.journal.List(r.Context())
		if err != nil {
			log.Error("journal list failed", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, "journal unavailable")
			return
		}
		for _, rec := range records {
			resp.Documents = append(resp.Documents, documentEntry{
				Document:   rec.Document,
				Passages:   rec.Passages,
				IngestedAt: rec.IngestedAt.UTC().Format(time.RFC3339),
			})
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
