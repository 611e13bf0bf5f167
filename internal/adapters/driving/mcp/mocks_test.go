package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	result    *domain.AnswerResult
	err       error
	questions []string
}

func (m *mockAnswerService) Answer(_ context.Context, query string) (*domain.AnswerResult, error) {
	m.questions = append(m.questions, query)
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.AnswerResult{Sources: []domain.Source{}}, nil
	}
	return m.result, nil
}

// mockIndexingService is a mock implementation of driving.IndexingService.
type mockIndexingService struct {
	passages int
	err      error
	names    []string
	contents []string
}

func (m *mockIndexingService) Ingest(_ context.Context, filename string, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.names = append(m.names, filename)
	m.contents = append(m.contents, string(data))
	return m.passages, m.err
}

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	docs   []domain.IndexedDocument
	err    error
	resets int
}

func (m *mockCatalogService) Documents(_ context.Context) ([]domain.IndexedDocument, error) {
	return m.docs, m.err
}

func (m *mockCatalogService) Reset(_ context.Context) error {
	m.resets++
	return m.err
}
