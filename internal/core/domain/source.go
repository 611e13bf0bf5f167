package domain

// Source is a user-facing citation for an answer.
// Sources are unique by (Document, Page).
type Source struct {
	// Document is the source document filename.
	Document string `json:"document"`

	// Page is the page number, or UnknownPage.
	Page int `json:"page"`

	// Snippet is the full text of the first passage seen for this page.
	Snippet string `json:"snippet"`
}

// sourceKey identifies a citation for deduplication.
type sourceKey struct {
	document string
	page     int
}

// SourceFromPassage projects a passage into a citation.
func SourceFromPassage(p Passage) Source {
	return Source{
		Document: p.SourceDocument,
		Page:     p.Page,
		Snippet:  p.Text,
	}
}

// SourcesFromPassages projects passages into citations, preserving order.
func SourcesFromPassages(passages []Passage) []Source {
	sources := make([]Source, 0, len(passages))
	for i := range passages {
		sources = append(sources, SourceFromPassage(passages[i]))
	}
	return sources
}

// DedupeSources removes citations that repeat an earlier (Document, Page) pair.
// The first occurrence wins and relative order is preserved.
// The result is never nil.
func DedupeSources(sources []Source) []Source {
	seen := make(map[sourceKey]struct{}, len(sources))
	result := make([]Source, 0, len(sources))
	for _, s := range sources {
		key := sourceKey{document: s.Document, page: s.Page}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, s)
	}
	return result
}
