package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func passage(doc string, page, pos int, text string, emb ...float32) domain.Passage {
	return domain.Passage{
		ID:             doc + "-" + text,
		SourceDocument: doc,
		Page:           page,
		Position:       pos,
		Text:           text,
		Embedding:      emb,
	}
}

func TestVectorIndex_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()

	err := idx.Add(ctx, []domain.Passage{
		passage("a.pdf", 1, 0, "north", 1, 0, 0),
		passage("a.pdf", 1, 1, "east", 0, 1, 0),
		passage("b.pdf", 2, 0, "mostly north", 0.9, 0.1, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Count())

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "north", hits[0].Passage.Text)
	assert.Equal(t, "mostly north", hits[1].Passage.Text)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-9)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestVectorIndex_SearchEmpty(t *testing.T) {
	idx := NewVectorIndex()

	hits, err := idx.Search(context.Background(), []float32{1, 2}, 6)

	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestVectorIndex_SearchNonPositiveK(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	require.NoError(t, idx.Add(ctx, []domain.Passage{passage("a.pdf", 1, 0, "x", 1)}))

	hits, err := idx.Search(ctx, []float32{1}, 0)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVectorIndex_AddIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()

	t.Run("missing embedding rejects whole batch", func(t *testing.T) {
		err := idx.Add(ctx, []domain.Passage{
			passage("a.pdf", 1, 0, "ok", 1, 0),
			passage("a.pdf", 1, 1, "no vector"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, 0, idx.Count())
	})

	t.Run("missing source document rejects whole batch", func(t *testing.T) {
		err := idx.Add(ctx, []domain.Passage{passage("", 1, 0, "orphan", 1, 0)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, 0, idx.Count())
	})

	t.Run("dimension mismatch rejects whole batch", func(t *testing.T) {
		require.NoError(t, idx.Add(ctx, []domain.Passage{passage("a.pdf", 1, 0, "two", 1, 0)}))

		err := idx.Add(ctx, []domain.Passage{
			passage("b.pdf", 1, 0, "fine", 0, 1),
			passage("b.pdf", 1, 1, "three", 1, 0, 0),
		})
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
		assert.Equal(t, 1, idx.Count())
	})
}

func TestVectorIndex_SearchDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	require.NoError(t, idx.Add(ctx, []domain.Passage{passage("a.pdf", 1, 0, "x", 1, 0)}))

	_, err := idx.Search(ctx, []float32{1, 0, 0}, 1)

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestVectorIndex_DuplicateIngestIsKept(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	batch := []domain.Passage{passage("a.pdf", 1, 0, "same", 1, 0)}

	require.NoError(t, idx.Add(ctx, batch))
	require.NoError(t, idx.Add(ctx, batch))

	assert.Equal(t, 2, idx.Count())
}

func TestVectorIndex_AddCopiesEmbedding(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	emb := []float32{1, 0}
	require.NoError(t, idx.Add(ctx, []domain.Passage{{SourceDocument: "a.pdf", Page: 1, Text: "x", Embedding: emb}}))

	emb[0] = 0

	hits, err := idx.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, []float32{1, 0}, hits[0].Passage.Embedding)
}

func TestVectorIndex_Reset(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	require.NoError(t, idx.Add(ctx, []domain.Passage{passage("a.pdf", 1, 0, "x", 1, 0)}))

	require.NoError(t, idx.Reset(ctx))

	assert.Equal(t, 0, idx.Count())
	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)

	// A new dimension is accepted after reset.
	require.NoError(t, idx.Add(ctx, []domain.Passage{passage("b.pdf", 1, 0, "y", 1, 0, 0)}))
}

func TestVectorIndex_Documents(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()
	require.NoError(t, idx.Add(ctx, []domain.Passage{
		passage("b.pdf", 1, 0, "b1", 1, 0),
		passage("a.pdf", 1, 0, "a1", 1, 0),
		passage("a.pdf", 1, 1, "a1b", 1, 0),
		passage("a.pdf", 2, 2, "a2", 1, 0),
		passage("c.pdf", domain.UnknownPage, 0, "c?", 1, 0),
	}))

	docs, err := idx.Documents(ctx)

	require.NoError(t, err)
	assert.Equal(t, []domain.IndexedDocument{
		{Name: "a.pdf", Passages: 3, Pages: 2},
		{Name: "b.pdf", Passages: 1, Pages: 1},
		{Name: "c.pdf", Passages: 1, Pages: 0},
	}, docs)
}

func TestVectorIndex_ConcurrentAddAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := NewVectorIndex()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, idx.Add(ctx, []domain.Passage{passage("a.pdf", 1, 0, "x", 1, 0)}))
		}()
		go func() {
			defer wg.Done()
			_, err := idx.Search(ctx, []float32{1, 0}, 3)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, idx.Count())
}
