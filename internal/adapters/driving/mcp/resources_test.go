package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestExtractDocumentName(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid document URI",
			uri:      "docqa://documents/handbook.pdf",
			expected: "handbook.pdf",
		},
		{
			name:     "escaped name",
			uri:      "docqa://documents/annual%20report.pdf",
			expected: "annual report.pdf",
		},
		{
			name:     "invalid prefix",
			uri:      "file://documents/handbook.pdf",
			expected: "",
		},
		{
			name:     "invalid escape",
			uri:      "docqa://documents/bad%zz.pdf",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentName(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents as JSON", func(t *testing.T) {
		catalog := &mockCatalogService{docs: []domain.IndexedDocument{{Name: "a.pdf", Passages: 3, Pages: 2}}}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Catalog: catalog})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docqa://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "docqa://documents", result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.JSONEq(t, `[{"name":"a.pdf","passages":3,"pages":2}]`, result.Contents[0].Text)
	})

	t.Run("no catalog returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docqa://documents"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		catalog := &mockCatalogService{err: errors.New("db closed")}
		server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Catalog: catalog})
		require.NoError(t, err)

		_, err = server.handleDocumentsResource(ctx, makeReadResourceRequest("docqa://documents"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handleDocumentResource(t *testing.T) {
	ctx := context.Background()
	catalog := &mockCatalogService{docs: []domain.IndexedDocument{
		{Name: "a.pdf", Passages: 3, Pages: 2},
		{Name: "annual report.pdf", Passages: 7, Pages: 4},
	}}
	server, err := NewServer(&Ports{Answer: &mockAnswerService{}, Catalog: catalog})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		result, err := server.handleDocumentResource(ctx, makeReadResourceRequest("docqa://documents/annual%20report.pdf"))

		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"annual report.pdf","passages":7,"pages":4}`, result.Contents[0].Text)
	})

	t.Run("unknown document", func(t *testing.T) {
		_, err := server.handleDocumentResource(ctx, makeReadResourceRequest("docqa://documents/missing.pdf"))

		assert.Error(t, err)
	})

	t.Run("malformed URI", func(t *testing.T) {
		_, err := server.handleDocumentResource(ctx, makeReadResourceRequest("docqa://other"))

		assert.Error(t, err)
	})

	t.Run("no catalog", func(t *testing.T) {
		bare, err := NewServer(&Ports{Answer: &mockAnswerService{}})
		require.NoError(t, err)

		_, err = bare.handleDocumentResource(ctx, makeReadResourceRequest("docqa://documents/a.pdf"))

		assert.Error(t, err)
	})
}

func TestFindDocument(t *testing.T) {
	docs := []domain.IndexedDocument{{Name: "a.pdf", Passages: 3, Pages: 2}}

	doc, err := findDocument(docs, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, DocumentOutput{Name: "a.pdf", Passages: 3, Pages: 2}, doc)

	_, err = findDocument(docs, "b.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), `"b.pdf"`)
}
