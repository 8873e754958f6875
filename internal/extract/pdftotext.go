package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/54b3r/docsearch-go/internal/rag"
)

// defaultBinary is the poppler CLI used for PDF text extraction. pdftotext
// emits a form-feed character between pages, which is how page boundaries
// are recovered below.
const defaultBinary = "pdftotext"

// PDFToText implements Extractor by shelling out to poppler's pdftotext.
// Safe for concurrent use — each call runs its own subprocess on its own
// temp file.
type PDFToText struct {
	// binary is the pdftotext executable name or path.
	binary string
}

// NewPDFToText constructs a PDFToText extractor using the pdftotext binary
// found on PATH. Override the binary path via NewPDFToTextBinary in tests.
func NewPDFToText() *PDFToText {
	return &PDFToText{binary: defaultBinary}
}

// NewPDFToTextBinary constructs a PDFToText extractor with an explicit
// executable path.
func NewPDFToTextBinary(binary string) *PDFToText {
	return &PDFToText{binary: binary}
}

// Extract parses PDF bytes and returns the text of each non-blank page,
// 1-indexed. The bytes are written to a temp file because pdftotext does
// not read PDF input from stdin.
func (e *PDFToText) Extract(ctx context.Context, data []byte, filename string) (PageText, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("extract: %q is empty — nothing to read: %w", filename, rag.ErrExtraction)
	}

	tmp, err := os.CreateTemp("", "docsearch-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("extract: temp file for %q: %w: %w", filename, rag.ErrExtraction, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("extract: writing %q: %w: %w", filename, rag.ErrExtraction, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("extract: closing temp for %q: %w: %w", filename, rag.ErrExtraction, err)
	}

	// "-" writes the extracted text to stdout, pages separated by \f.
	cmd := exec.CommandContext(ctx, e.binary, "-enc", "UTF-8", tmp.Name(), "-")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("extract: %q could not be parsed as a PDF (%s): %w", filepath.Base(filename), detail, rag.ErrExtraction)
	}

	pages := splitPages(out.String())
	if len(pages) == 0 {
		return nil, fmt.Errorf("extract: %q contains no extractable text (image-only or empty PDF): %w", filename, rag.ErrExtraction)
	}

	return pages, nil
}

// splitPages breaks pdftotext output on form-feed characters into 1-indexed
// pages, dropping pages that are blank after trimming. Page numbers reflect
// the position in the original document, so a blank page 2 leaves a gap
// rather than renumbering page 3.
func splitPages(output string) PageText {
	raw := strings.Split(output, "\f")
	pages := make(PageText, len(raw))
	for i, text := range raw {
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages[i+1] = text
	}
	return pages
}
