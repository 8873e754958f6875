// Package extract turns raw document bytes into per-page plain text.
// The rest of the pipeline depends only on the Extractor interface and the
// PageText result — never on how the text was pulled out of the file.
package extract

import (
	"context"
	"sort"
)

// PageText maps a 1-indexed page number to the extracted text of that page.
// Pages containing only whitespace are never present. The zero page number
// is reserved for "page unknown" and is never produced by an extractor.
type PageText map[int]string

// Pages returns the page numbers in ascending order.
func (pt PageText) Pages() []int {
	pages := make([]int, 0, len(pt))
	for n := range pt {
		pages = append(pages, n)
	}
	sort.Ints(pages)
	return pages
}

// Extractor is the interface for pulling plain text out of a document.
// Implementations fail with rag.ErrExtraction when the bytes are empty,
// unparseable, or contain no extractable text on any page. Calls may be
// slow; implementations must honour ctx cancellation.
type Extractor interface {
	// Extract parses data and returns the text of each non-blank page.
	// filename is used only for error messages and logging.
	Extract(ctx context.Context, data []byte, filename string) (PageText, error)
}
