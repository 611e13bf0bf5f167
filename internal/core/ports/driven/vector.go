package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorIndex stores embedded passages and answers nearest-neighbour queries.
// Implementations must be safe for concurrent Add and Search calls.
type VectorIndex interface {
	// Add appends passages, which must carry embeddings. The call is atomic:
	// either every passage is stored or none is. Existing passages are never
	// replaced, even when they share a source document name.
	Add(ctx context.Context, passages []domain.Passage) error

	// Search returns up to k passages ordered by similarity to the query,
	// most similar first.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Reset drops every stored passage.
	Reset(ctx context.Context) error

	// Documents lists the indexed documents derived from stored passages,
	// ordered by name.
	Documents(ctx context.Context) ([]domain.IndexedDocument, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Passage is the matched passage.
	Passage domain.Passage

	// Similarity is the cosine similarity score (higher is closer).
	Similarity float64
}
