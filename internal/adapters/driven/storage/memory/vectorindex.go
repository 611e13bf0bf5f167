package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Search is a brute-force cosine scan over every stored passage.
type VectorIndex struct {
	mu         sync.RWMutex
	passages   []domain.Passage
	dimensions int
}

// NewVectorIndex creates a new in-memory vector index.
// The dimension is fixed by the first stored passage.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Add appends passages. Either all passages are stored or none is.
func (v *VectorIndex) Add(_ context.Context, passages []domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	dims := v.dimensions
	for i := range passages {
		if err := validatePassage(passages[i]); err != nil {
			return err
		}
		n := len(passages[i].Embedding)
		if dims == 0 {
			dims = n
		}
		if n != dims {
			return fmt.Errorf("%w: passage %d has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, i, n, dims)
		}
	}

	for i := range passages {
		p := passages[i]
		p.Embedding = append([]float32(nil), p.Embedding...)
		v.passages = append(v.passages, p)
	}
	v.dimensions = dims
	return nil
}

// Search returns the k passages most similar to query.
func (v *VectorIndex) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.dimensions != 0 && len(query) != v.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), v.dimensions)
	}

	candidates := make([]similarity.Candidate, len(v.passages))
	for i := range v.passages {
		candidates[i] = similarity.Candidate{
			Seq:   i,
			Score: similarity.Cosine(query, v.passages[i].Embedding),
		}
	}

	top := similarity.TopK(candidates, k)
	hits := make([]driven.VectorHit, len(top))
	for i, c := range top {
		hits[i] = driven.VectorHit{
			Passage:    v.passages[c.Seq],
			Similarity: c.Score,
		}
	}
	return hits, nil
}

// Reset drops every stored passage.
func (v *VectorIndex) Reset(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.passages = nil
	v.dimensions = 0
	return nil
}

// Documents lists the indexed documents ordered by name.
func (v *VectorIndex) Documents(_ context.Context) ([]domain.IndexedDocument, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	type tally struct {
		passages int
		pages    map[int]struct{}
	}
	byName := make(map[string]*tally)
	for i := range v.passages {
		p := v.passages[i]
		t, ok := byName[p.SourceDocument]
		if !ok {
			t = &tally{pages: make(map[int]struct{})}
			byName[p.SourceDocument] = t
		}
		t.passages++
		if p.HasKnownPage() {
			t.pages[p.Page] = struct{}{}
		}
	}

	docs := make([]domain.IndexedDocument, 0, len(byName))
	for name, t := range byName {
		docs = append(docs, domain.IndexedDocument{
			Name:     name,
			Passages: t.passages,
			Pages:    len(t.pages),
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// Count returns the number of stored passages.
func (v *VectorIndex) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.passages)
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}

func validatePassage(p domain.Passage) error {
	if p.SourceDocument == "" {
		return fmt.Errorf("%w: passage %q has no source document", domain.ErrInvalidInput, p.ID)
	}
	if len(p.Embedding) == 0 {
		return fmt.Errorf("%w: passage %q has no embedding", domain.ErrInvalidInput, p.ID)
	}
	return nil
}
