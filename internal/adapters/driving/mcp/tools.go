package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed PDFs"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is one citation of an answer. Page is null when unknown.
type SourceOutput struct {
	Document string `json:"document"`
	Page     *int   `json:"page"`
	Snippet  string `json:"snippet"`
}

// IngestInput is the input schema for the ingest_pdf tool.
type IngestInput struct {
	Path string `json:"path" jsonschema:"absolute path of a PDF file on the server's filesystem"`
}

// IngestOutput is the output schema for the ingest_pdf tool.
type IngestOutput struct {
	Document string `json:"document"`
	Passages int    `json:"passages"`
}

// ListDocumentsInput is the (empty) input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes one indexed document.
type DocumentOutput struct {
	Name     string `json:"name"`
	Passages int    `json:"passages"`
	Pages    int    `json:"pages"`
}

// ClearIndexInput is the input schema for the clear_index tool.
type ClearIndexInput struct {
	Confirm bool `json:"confirm" jsonschema:"must be true; every indexed passage is deleted"`
}

// ClearIndexOutput is the output schema for the clear_index tool.
type ClearIndexOutput struct {
	Message string `json:"message"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed PDF documents, citing document and page",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_pdf",
		Description: "Index a PDF file from the local filesystem so it can be asked about",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the indexed documents with their passage and page counts",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_index",
		Description: "Delete every indexed passage",
	}, s.handleClearIndex)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	result, err := s.ports.Answer.Answer(ctx, input.Question)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  result.Answer,
		Sources: make([]SourceOutput, len(result.Sources)),
	}
	for i, src := range result.Sources {
		output.Sources[i] = SourceOutput{Document: src.Document, Snippet: src.Snippet}
		if src.Page != domain.UnknownPage {
			page := src.Page
			output.Sources[i].Page = &page
		}
	}

	return nil, output, nil
}

// handleIngest handles the ingest_pdf tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Indexing == nil {
		return nil, IngestOutput{}, errors.New("ingestion is not available")
	}

	path := strings.TrimSpace(input.Path)
	if path == "" {
		return nil, IngestOutput{}, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, IngestOutput{}, fmt.Errorf("%w: %s is not a PDF", domain.ErrUnsupportedFileType, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, IngestOutput{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	n, err := s.ports.Indexing.Ingest(ctx, name, f)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{Document: name, Passages: n}, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Catalog == nil {
		return nil, ListDocumentsOutput{Documents: []DocumentOutput{}}, nil
	}

	docs, err := s.ports.Catalog.Documents(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	return nil, ListDocumentsOutput{Documents: toDocumentOutputs(docs), Count: len(docs)}, nil
}

// handleClearIndex handles the clear_index tool invocation.
func (s *Server) handleClearIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClearIndexInput,
) (*mcp.CallToolResult, ClearIndexOutput, error) {
	if s.ports.Catalog == nil {
		return nil, ClearIndexOutput{}, errors.New("index administration is not available")
	}
	if !input.Confirm {
		return nil, ClearIndexOutput{}, fmt.Errorf("%w: set confirm to true to clear the index", domain.ErrInvalidInput)
	}

	if err := s.ports.Catalog.Reset(ctx); err != nil {
		return nil, ClearIndexOutput{}, err
	}

	return nil, ClearIndexOutput{Message: "vector index cleared"}, nil
}

func toDocumentOutputs(docs []domain.IndexedDocument) []DocumentOutput {
	out := make([]DocumentOutput, len(docs))
	for i, d := range docs {
		out[i] = DocumentOutput{Name: d.Name, Passages: d.Passages, Pages: d.Pages}
	}
	return out
}
