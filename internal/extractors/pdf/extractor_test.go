package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// buildPDF writes a minimal PDF with one Helvetica text line per page.
// An empty string produces a page without text.
func buildPDF(pages ...string) []byte {
	var buf bytes.Buffer
	var offsets []int

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		// Objects 1-3 are the catalog, page tree and font; each page adds two.
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		writeObj(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))

		content := ""
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	return buf.Bytes()
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.PageExtractor = (*Extractor)(nil)
}

func TestExtract_Pages(t *testing.T) {
	data := buildPDF("Quarterly revenue grew", "Hiring plan for next year", "Travel policy")

	pages, err := New().Extract(context.Background(), bytes.NewReader(data))

	require.NoError(t, err)
	require.Len(t, pages, 3)
	for i, page := range pages {
		assert.Equal(t, i+1, page.Number)
	}
	assert.Contains(t, pages[0].Text, "Quarterly revenue grew")
	assert.Contains(t, pages[1].Text, "Hiring plan")
	assert.Contains(t, pages[2].Text, "Travel policy")
}

func TestExtract_PageWithoutText(t *testing.T) {
	data := buildPDF("First page", "")

	pages, err := New().Extract(context.Background(), bytes.NewReader(data))

	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 2, pages[1].Number)
	assert.Empty(t, strings.TrimSpace(pages[1].Text))
}

func TestExtract_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{name: "empty", input: nil},
		{name: "plain text", input: []byte("just some text, not a pdf")},
		{name: "truncated pdf", input: []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pages, err := New().Extract(context.Background(), bytes.NewReader(tc.input))
			assert.Error(t, err)
			assert.Nil(t, pages)
		})
	}
}

func TestExtract_NotPDF(t *testing.T) {
	_, err := New().Extract(context.Background(), strings.NewReader("hello"))
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestExtract_NilReader(t *testing.T) {
	_, err := New().Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtract_ReadError(t *testing.T) {
	_, err := New().Extract(context.Background(), failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read document")
}

func TestExtract_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, bytes.NewReader(buildPDF("text")))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trailing spaces", "line one   \nline two\t", "line one\nline two"},
		{"crlf", "a\r\nb", "a\nb"},
		{"surrounding blank lines", "\n\n text \n\n", "text"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalise(tc.input))
		})
	}
}
