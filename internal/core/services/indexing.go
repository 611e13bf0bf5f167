package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure IndexingService implements the interface.
var _ driving.IndexingService = (*IndexingService)(nil)

// IndexingService extracts, chunks, embeds and stores documents.
type IndexingService struct {
	extractor        driven.PageExtractor
	splitter         driven.Splitter
	embeddingService driven.EmbeddingService
	vectorIndex      driven.VectorIndex
}

// NewIndexingService creates a new indexing service.
func NewIndexingService(
	extractor driven.PageExtractor,
	splitter driven.Splitter,
	embeddingService driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
) *IndexingService {
	return &IndexingService{
		extractor:        extractor,
		splitter:         splitter,
		embeddingService: embeddingService,
		vectorIndex:      vectorIndex,
	}
}

// Ingest stores every passage of one document and returns how many were
// stored. On any failure nothing from the document is stored and the error
// is a *domain.DocumentProcessingError.
func (s *IndexingService) Ingest(ctx context.Context, filename string, r io.Reader) (int, error) {
	logger.Section("Ingest")
	logger.Debug("Document: %q", filename)
	start := time.Now()

	if strings.TrimSpace(filename) == "" {
		return 0, domain.NewDocumentProcessingError(filename,
			fmt.Errorf("%w: filename is required", domain.ErrInvalidInput))
	}
	if s.embeddingService == nil {
		return 0, domain.NewDocumentProcessingError(filename, domain.ErrEmbeddingUnavailable)
	}
	if s.vectorIndex == nil {
		return 0, domain.NewDocumentProcessingError(filename, domain.ErrVectorIndexUnavailable)
	}

	pages, err := s.extractor.Extract(ctx, r)
	if err != nil {
		return 0, domain.NewDocumentProcessingError(filename, fmt.Errorf("extract text: %w", err))
	}
	logger.Debug("Extracted %d pages", len(pages))

	passages := s.chunk(filename, pages)
	if len(passages) == 0 {
		logger.Info("No extractable text in %q, nothing stored", filename)
		return 0, nil
	}
	logger.Debug("Split into %d passages", len(passages))

	if err := s.embed(ctx, passages); err != nil {
		return 0, domain.NewDocumentProcessingError(filename, fmt.Errorf("embed passages: %w", err))
	}

	if err := s.vectorIndex.Add(ctx, passages); err != nil {
		return 0, domain.NewDocumentProcessingError(filename, fmt.Errorf("store passages: %w", err))
	}

	logger.Trace().Info("stored passages",
		slog.String("document", filename),
		slog.Int("passages", len(passages)),
		slog.Duration("elapsed", time.Since(start)))
	return len(passages), nil
}

// chunk splits every page and tags the passages with their origin.
// Passages are returned in page order, then chunk order within a page.
func (s *IndexingService) chunk(filename string, pages []domain.Page) []domain.Passage {
	var passages []domain.Passage
	for _, page := range pages {
		number := page.Number
		if number < 0 {
			number = domain.UnknownPage
		}
		for _, text := range s.splitter.Split(page.Text) {
			passages = append(passages, domain.Passage{
				ID:             uuid.New().String(),
				SourceDocument: filename,
				Page:           number,
				Position:       len(passages),
				Text:           text,
			})
		}
	}
	return passages
}

// embed assigns an embedding to every passage in one batch call.
func (s *IndexingService) embed(ctx context.Context, passages []domain.Passage) error {
	texts := make([]string, len(passages))
	for i := range passages {
		texts[i] = passages[i].Text
	}

	embeddings, err := s.embeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(embeddings) != len(passages) {
		return fmt.Errorf("provider returned %d embeddings for %d passages", len(embeddings), len(passages))
	}

	for i := range passages {
		if len(embeddings[i]) == 0 {
			return fmt.Errorf("provider returned an empty embedding for passage %d", i)
		}
		passages[i].Embedding = embeddings[i]
	}
	return nil
}
