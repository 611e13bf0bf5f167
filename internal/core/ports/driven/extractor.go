package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// PageExtractor turns an uploaded document into plain text per page.
// Pages are returned in document order. A document without extractable
// text yields pages with empty Text (or no pages), not an error.
type PageExtractor interface {
	// Extract reads the whole document from r and returns its pages.
	Extract(ctx context.Context, r io.Reader) ([]domain.Page, error)
}

// Splitter breaks text into overlapping chunks for retrieval.
type Splitter interface {
	// Split returns the chunks in text order. Empty text yields no chunks.
	Split(text string) []string
}
