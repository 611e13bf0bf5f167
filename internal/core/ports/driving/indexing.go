package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IndexingService ingests documents into the vector index.
type IndexingService interface {
	// Ingest extracts, chunks, embeds and stores one document and returns the
	// number of passages stored. Failures are reported as
	// *domain.DocumentProcessingError and leave nothing from the document stored.
	Ingest(ctx context.Context, filename string, r io.Reader) (int, error)
}

// CatalogService inspects and administers the indexed documents.
type CatalogService interface {
	// Documents lists the indexed documents.
	Documents(ctx context.Context) ([]domain.IndexedDocument, error)

	// Reset drops every indexed passage.
	Reset(ctx context.Context) error
}
