// Package splitter turns per-page document text into an ordered list of
// overlapping passages. A sliding character window of width chunkSize moves
// in steps of chunkSize-overlap across each page, so semantic context at a
// window boundary is carried into the next passage:
//
//	[  passage 0  ]
//	        [ passage 1  ]    ← shares `overlap` characters with passage 0
//	                [ passage 2 ]
//
// Windows never cross a page boundary — each page restarts at offset 0 —
// but the sequence index is a single counter across the whole document.
package splitter

import (
	"fmt"
	"strings"

	"github.com/54b3r/docsearch-go/internal/extract"
	"github.com/54b3r/docsearch-go/internal/rag"
)

// Splitter applies a sliding character window to page text.
// Construction validates the window parameters once; Split itself never fails.
type Splitter struct {
	// chunkSize is the maximum number of characters per passage.
	chunkSize int

	// overlap is the number of characters shared between consecutive
	// passages on the same page. Always smaller than chunkSize.
	overlap int
}

// New constructs a Splitter. The overlap must be non-negative and strictly
// smaller than the chunk size, otherwise the window would never advance.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("splitter: chunk size must be positive, got %d: %w", chunkSize, rag.ErrConfig)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("splitter: chunk overlap must not be negative, got %d: %w", overlap, rag.ErrConfig)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("splitter: chunk overlap (%d) must be less than chunk size (%d): %w", overlap, chunkSize, rag.ErrConfig)
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split produces the ordered passage list for one document. Pages are
// visited in ascending page-number order; pages that are blank after
// trimming are skipped. The sequence index increments once per emitted
// passage across the entire document, so the values form the contiguous
// range 0..n-1 in emission order. Empty input yields an empty list.
func (s *Splitter) Split(pages extract.PageText, source string) []rag.Passage {
	if len(pages) == 0 {
		return nil
	}

	var passages []rag.Passage
	sequence := 0

	for _, page := range pages.Pages() {
		text := strings.TrimSpace(pages[page])
		if text == "" {
			continue
		}

		for _, fragment := range s.window(text) {
			passages = append(passages, rag.Passage{
				Text:     fragment,
				Source:   source,
				Page:     page,
				Sequence: sequence,
			})
			sequence++
		}
	}

	return passages
}

// window applies the sliding window to a single block of text, measured in
// runes so a multi-byte character is never cut in half. Fragments are
// trimmed and dropped when blank; a text shorter than the chunk size still
// yields exactly one fragment.
func (s *Splitter) window(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap

	var fragments []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		fragment := strings.TrimSpace(string(runes[start:end]))
		if fragment != "" {
			fragments = append(fragments, fragment)
		}
	}
	return fragments
}
