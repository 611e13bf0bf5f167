package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService lists and resets the indexed documents.
type CatalogService struct {
	vectorIndex driven.VectorIndex
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(vectorIndex driven.VectorIndex) *CatalogService {
	return &CatalogService{vectorIndex: vectorIndex}
}

// Documents lists the indexed documents ordered by name.
func (s *CatalogService) Documents(ctx context.Context) ([]domain.IndexedDocument, error) {
	if s.vectorIndex == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	docs, err := s.vectorIndex.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Reset drops every indexed passage.
func (s *CatalogService) Reset(ctx context.Context) error {
	if s.vectorIndex == nil {
		return domain.ErrVectorIndexUnavailable
	}
	logger.Section("Reset")
	if err := s.vectorIndex.Reset(ctx); err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	logger.Info("Vector index cleared")
	return nil
}
