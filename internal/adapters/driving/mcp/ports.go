package mcp

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions from the indexed documents.
	Answer driving.AnswerService

	// Indexing ingests PDFs from the local filesystem.
	Indexing driving.IndexingService

	// Catalog lists and resets the indexed documents.
	Catalog driving.CatalogService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	// Indexing and Catalog are optional; their tools report unavailability
	return nil
}
