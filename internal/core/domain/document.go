package domain

// UnknownPage marks a passage whose page number could not be determined.
// Extracted page numbers are 1-based, so the sentinel never collides with a real page.
const UnknownPage = 0

// Page is the text extracted from a single page of a document.
type Page struct {
	// Number is the 1-based page number, or UnknownPage.
	Number int

	// Text is the plain text content of the page.
	Text string
}

// Passage is a contiguous span of extracted document text.
// Passages are immutable once stored and only removed by a full index reset.
type Passage struct {
	// ID is the unique identifier for the passage.
	ID string

	// SourceDocument is the original filename. Never empty for a stored passage.
	SourceDocument string

	// Page is the page the passage was extracted from, or UnknownPage.
	Page int

	// Position is the extraction order within the source document
	// (page order, then chunk order within the page).
	Position int

	// Text is the passage content.
	Text string

	// Embedding is the vector representation, assigned at indexing time.
	Embedding []float32
}

// HasKnownPage reports whether the passage carries a real page number.
func (p Passage) HasKnownPage() bool {
	return p.Page != UnknownPage
}

// IndexedDocument groups every passage sharing a source document name.
// It is derived from the stored passages and never persisted on its own.
type IndexedDocument struct {
	// Name is the source document filename.
	Name string

	// Passages is the number of stored passages for the document.
	Passages int

	// Pages is the number of distinct known pages with at least one passage.
	Pages int
}
