package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DefaultGroundingPrompt is the fallback instruction when no PromptStore is configured.
const DefaultGroundingPrompt = `You are a helpful assistant that answers questions about the user's documents.
Answer based exclusively on the context below. If the context does not contain
the information needed to answer, say so plainly and politely instead of guessing.`

// noContext is placed in the prompt when retrieval found nothing.
const noContext = "(no relevant passages were found)"

// BuildGroundedPrompt assembles the instruction, the retrieved passages and the
// question into a single prompt. Passages appear in retrieval order.
func BuildGroundedPrompt(instruction, query string, passages []domain.Passage) string {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(instruction))
	b.WriteString("\n\nContext:\n")

	if len(passages) == 0 {
		b.WriteString(noContext)
		b.WriteString("\n")
	}
	for i := range passages {
		p := passages[i]
		fmt.Fprintf(&b, "\n[%d] %s, page %s:\n", i+1, p.SourceDocument, pageLabel(p.Page))
		b.WriteString(p.Text)
		b.WriteString("\n")
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(query)
	b.WriteString("\n\nAnswer:")

	return b.String()
}

// pageLabel renders a page number for humans.
func pageLabel(page int) string {
	if page == domain.UnknownPage {
		return "unknown"
	}
	return fmt.Sprintf("%d", page)
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}
