package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerConfig tunes retrieval and generation.
type AnswerConfig struct {
	// TopK is the number of passages retrieved per question (default 6).
	TopK int

	// Temperature is passed to the LLM.
	Temperature float64

	// MaxTokens caps the answer length. Zero uses the provider default.
	MaxTokens int
}

// AnswerService answers questions with retrieval-augmented generation.
type AnswerService struct {
	embeddingService driven.EmbeddingService
	vectorIndex      driven.VectorIndex
	llmService       driven.LLMService
	promptStore      driven.PromptStore
	cfg              AnswerConfig
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	embeddingService driven.EmbeddingService,
	vectorIndex driven.VectorIndex,
	llmService driven.LLMService,
	cfg AnswerConfig,
) *AnswerService {
	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultTopK
	}
	return &AnswerService{
		embeddingService: embeddingService,
		vectorIndex:      vectorIndex,
		llmService:       llmService,
		cfg:              cfg,
	}
}

// SetPromptStore sets the prompt store for loading the grounding instruction.
// If not set, the service uses DefaultGroundingPrompt.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Answer retrieves the passages closest to query, asks the LLM once for a
// grounded answer and returns it with deduplicated sources.
func (s *AnswerService) Answer(ctx context.Context, query string) (*domain.AnswerResult, error) {
	logger.Section("Answer")
	logger.Debug("Query: %q", query)

	if strings.TrimSpace(query) == "" {
		return nil, domain.NewQueryProcessingError(
			fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput))
	}
	if s.embeddingService == nil {
		return nil, domain.NewQueryProcessingError(domain.ErrEmbeddingUnavailable)
	}
	if s.vectorIndex == nil {
		return nil, domain.NewQueryProcessingError(domain.ErrVectorIndexUnavailable)
	}
	if s.llmService == nil {
		return nil, domain.NewQueryProcessingError(domain.ErrLLMUnavailable)
	}

	queryVec, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		return nil, domain.NewQueryProcessingError(fmt.Errorf("embed query: %w", err))
	}

	hits, err := s.vectorIndex.Search(ctx, queryVec, s.cfg.TopK)
	if err != nil {
		return nil, domain.NewQueryProcessingError(fmt.Errorf("search index: %w", err))
	}
	logger.Debug("Retrieved %d passages (k=%d)", len(hits), s.cfg.TopK)

	passages := make([]domain.Passage, len(hits))
	for i := range hits {
		passages[i] = hits[i].Passage
		logger.Debug("  [%d] %s p.%d similarity=%.4f", i+1,
			hits[i].Passage.SourceDocument, hits[i].Passage.Page, hits[i].Similarity)
	}

	instruction := loadPrompt(s.promptStore, driven.PromptGrounding, DefaultGroundingPrompt)
	prompt := BuildGroundedPrompt(instruction, query, passages)

	answer, err := s.llmService.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, domain.NewQueryProcessingError(fmt.Errorf("generate answer: %w", err))
	}

	sources := domain.DedupeSources(domain.SourcesFromPassages(passages))
	logger.Info("Answered with %d sources from %d passages", len(sources), len(passages))

	return &domain.AnswerResult{
		Answer:  strings.TrimSpace(answer),
		Sources: sources,
	}, nil
}
