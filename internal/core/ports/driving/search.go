package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AnswerService answers questions from the indexed documents.
type AnswerService interface {
	// Answer retrieves the passages most relevant to query, generates a
	// grounded answer and returns it with deduplicated sources. Failures are
	// reported as *domain.QueryProcessingError.
	Answer(ctx context.Context, query string) (*domain.AnswerResult, error)
}
