package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/54b3r/docsearch-go/internal/extract"
	"github.com/54b3r/docsearch-go/internal/journal"
	"github.com/54b3r/docsearch-go/internal/rag"
)

// fakeExtractor serves canned page text per file name. Names listed in
// broken fail with ErrExtraction.
type fakeExtractor struct {
	pages  map[string]extract.PageText
	broken map[string]bool
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, filename string) (extract.PageText, error) {
	if f.broken[filename] {
		return nil, fmt.Errorf("fake: %s is unreadable: %w", filename, rag.ErrExtraction)
	}
	return f.pages[filename], nil
}

// fakeEmbedder returns a fixed vector per text and counts calls.
type fakeEmbedder struct {
	calls int
	fail  bool
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.fail {
		return nil, fmt.Errorf("fake: backend down: %w", rag.ErrEmbedding)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// fakeJournal records calls in memory.
type fakeJournal struct {
	recorded map[string]int
	fail     bool
}

func (f *fakeJournal) Record(_ context.Context, document string, passages int) error {
	if f.fail {
		return fmt.Errorf("fake: journal unavailable")
	}
	if f.recorded == nil {
		f.recorded = map[string]int{}
	}
	f.recorded[document] = passages
	return nil
}

func (f *fakeJournal) List(_ context.Context) ([]journal.Record, error) {
	return nil, nil
}

func (f *fakeJournal) Close() error {
	return nil
}

func newTestService(t *testing.T, ex extract.Extractor, em rag.Embedder, st rag.VectorStore) *Service {
	t.Helper()
	s, err := New(ex, em, st, nil, &Config{ChunkSize: 50, ChunkOverlap: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func Test_New_InvalidChunkingIsConfigError(t *testing.T) {
	t.Parallel()

	_, err := New(&fakeExtractor{}, &fakeEmbedder{}, rag.NewMemoryStore(), nil,
		&Config{ChunkSize: 100, ChunkOverlap: 100})
	if err == nil {
		t.Fatal("expected construction error")
	}
}

func Test_IngestFiles_EmptyBatch(t *testing.T) {
	t.Parallel()

	em := &fakeEmbedder{}
	s := newTestService(t, &fakeExtractor{}, em, rag.NewMemoryStore())

	resp, err := s.IngestFiles(context.Background(), nil)
	if err != nil {
		t.Fatalf("IngestFiles: %v", err)
	}
	if resp.Message != "No files provided." {
		t.Errorf("message: got %q", resp.Message)
	}
	if len(resp.Files) != 0 {
		t.Errorf("files: got %v", resp.Files)
	}
	if em.calls != 0 {
		t.Errorf("empty batch must not embed, got %d calls", em.calls)
	}
}

func Test_IngestFiles_StoresPassagesWithMetadata(t *testing.T) {
	t.Parallel()

	ex := &fakeExtractor{pages: map[string]extract.PageText{
		"doc.pdf": {1: "page one content", 2: "page two content"},
	}}
	store := rag.NewMemoryStore()
	s := newTestService(t, ex, &fakeEmbedder{}, store)

	resp, err := s.IngestFiles(context.Background(), []File{{Name: "doc.pdf", Data: []byte("%PDF")}})
	if err != nil {
		t.Fatalf("IngestFiles: %v", err)
	}
	if resp.Message != "Successfully ingested 1 PDF document(s)." {
		t.Errorf("message: got %q", resp.Message)
	}
	if len(resp.Files) != 1 || resp.Files[0] != "doc.pdf" {
		t.Errorf("files: got %v", resp.Files)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("want 2 stored passages, got %d", count)
	}

	results, err := store.Query(context.Background(), []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for _, r := range results {
		if r.Source != "doc.pdf" {
			t.Errorf("source: got %q", r.Source)
		}
		if r.Page != 1 && r.Page != 2 {
			t.Errorf("page: got %d", r.Page)
		}
	}
}

func Test_IngestFiles_BrokenFileIsSkippedNotFatal(t *testing.T) {
	t.Parallel()

	ex := &fakeExtractor{
		pages:  map[string]extract.PageText{"good.pdf": {1: "fine content"}},
		broken: map[string]bool{"bad.pdf": true},
	}
	s := newTestService(t, ex, &fakeEmbedder{}, rag.NewMemoryStore())

	resp, err := s.IngestFiles(context.Background(), []File{
		{Name: "bad.pdf", Data: []byte("junk")},
		{Name: "good.pdf", Data: []byte("%PDF")},
	})
	if err != nil {
		t.Fatalf("IngestFiles: %v", err)
	}
	if resp.Message != "Successfully ingested 1 PDF document(s)." {
		t.Errorf("message: got %q", resp.Message)
	}
	if len(resp.Files) != 1 || resp.Files[0] != "good.pdf" {
		t.Errorf("files: got %v", resp.Files)
	}
}

func Test_IngestFiles_AllFailuresYieldZeroMessage(t *testing.T) {
	t.Parallel()

	ex := &fakeExtractor{broken: map[string]bool{"a.pdf": true, "b.pdf": true}}
	s := newTestService(t, ex, &fakeEmbedder{}, rag.NewMemoryStore())

	resp, err := s.IngestFiles(context.Background(), []File{
		{Name: "a.pdf"}, {Name: "b.pdf"},
	})
	if err != nil {
		t.Fatalf("IngestFiles: %v", err)
	}
	if resp.Message != "No files could be processed." {
		t.Errorf("message: got %q", resp.Message)
	}
}

func Test_IngestFiles_EmbedderFailureSkipsFile(t *testing.T) {
	t.Parallel()

	ex := &fakeExtractor{pages: map[string]extract.PageText{"doc.pdf": {1: "content"}}}
	store := rag.NewMemoryStore()
	s := newTestService(t, ex, &fakeEmbedder{fail: true}, store)

	resp, err := s.IngestFiles(context.Background(), []File{{Name: "doc.pdf"}})
	if err != nil {
		t.Fatalf("IngestFiles: %v", err)
	}
	if resp.Message != "No files could be processed." {
		t.Errorf("message: got %q", resp.Message)
	}
	count, _ := store.Count(context.Background())
	if count != 0 {
		t.Errorf("nothing must be stored when embedding fails, got %d", count)
	}
}

func Test_IngestFiles_JournalFailureDoesNotFailIngest(t *testing.T) {
	t.Parallel()

	ex := &fakeExtractor{pages: map[string]extract.PageText{"doc.pdf": {1: "content"}}}
	jnl := &fakeJournal{fail: true}
	s, err := New(ex, &fakeEmbedder{}, rag.NewMemoryStore(), jnl, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := s.IngestFiles(context.Background(), []File{{Name: "doc.pdf"}})
	if err != nil {
		t.Fatalf("IngestFiles: %v", err)
	}
	if resp.Message != "Successfully ingested 1 PDF document(s)." {
		t.Errorf("journal failure must not fail the ingest: %q", resp.Message)
	}
}

func Test_IngestDirectory_MissingDirFailsWholeCall(t *testing.T) {
	t.Parallel()

	s := newTestService(t, &fakeExtractor{}, &fakeEmbedder{}, rag.NewMemoryStore())
	_, err := s.IngestDirectory(context.Background(), "/nonexistent/docs")
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func Test_IngestDirectory_PicksOnlyPDFsSorted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt", "c.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	ex := &fakeExtractor{pages: map[string]extract.PageText{
		"a.PDF": {1: "alpha"},
		"b.pdf": {1: "bravo"},
		"c.pdf": {1: "charlie"},
	}}
	s := newTestService(t, ex, &fakeEmbedder{}, rag.NewMemoryStore())

	resp, err := s.IngestDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("IngestDirectory: %v", err)
	}
	want := []string{"a.PDF", "b.pdf", "c.pdf"}
	if len(resp.Files) != len(want) {
		t.Fatalf("files: got %v, want %v", resp.Files, want)
	}
	for i := range want {
		if resp.Files[i] != want[i] {
			t.Errorf("files[%d]: got %q, want %q", i, resp.Files[i], want[i])
		}
	}
}

func Test_IngestDirectory_UnreadableFileIsSkippedNotFatal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "good.pdf"), []byte("%PDF"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Dangling symlink: listed by ReadDir but fails to read.
	if err := os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "bad.pdf")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	ex := &fakeExtractor{pages: map[string]extract.PageText{"good.pdf": {1: "fine content"}}}
	s := newTestService(t, ex, &fakeEmbedder{}, rag.NewMemoryStore())

	resp, err := s.IngestDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("one unreadable file must not fail the batch: %v", err)
	}
	if resp.Message != "Successfully ingested 1 PDF document(s)." {
		t.Errorf("message: got %q", resp.Message)
	}
	if len(resp.Files) != 1 || resp.Files[0] != "good.pdf" {
		t.Errorf("files: got %v", resp.Files)
	}
}

func Test_IngestDirectory_NoPDFsYieldsEmptyBatchResponse(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "readme.md"), []byte("hi"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := newTestService(t, &fakeExtractor{}, &fakeEmbedder{}, rag.NewMemoryStore())
	resp, err := s.IngestDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("IngestDirectory: %v", err)
	}
	if resp.Message != "No files provided." {
		t.Errorf("message: got %q", resp.Message)
	}
}
