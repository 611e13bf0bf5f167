package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// snippetWidth caps the snippet characters printed under a citation.
const snippetWidth = 160

var (
	successText = color.New(color.FgGreen).SprintFunc()
	failureText = color.New(color.FgRed).SprintFunc()
	headingText = color.New(color.Bold).SprintFunc()
	citeText    = color.New(color.FgCyan, color.Bold).SprintFunc()
	mutedText   = color.New(color.Faint).SprintFunc()
)

// formatCitation renders a source as "document, page N" or "document, page unknown".
func formatCitation(src domain.Source) string {
	if src.Page == domain.UnknownPage {
		return src.Document + ", page unknown"
	}
	return fmt.Sprintf("%s, page %d", src.Document, src.Page)
}

// preview collapses whitespace in s and truncates it to limit runes.
func preview(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// pagePtr converts a page to its JSON form, nil when unknown.
func pagePtr(page int) *int {
	if page == domain.UnknownPage {
		return nil
	}
	return &page
}

// plural returns word with an "s" unless n is one.
func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
