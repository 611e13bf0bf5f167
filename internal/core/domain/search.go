package domain

// DefaultTopK is the number of passages retrieved per question.
const DefaultTopK = 6

// AnswerResult is a grounded answer with the sources it was built from.
// It is produced per question and never persisted.
type AnswerResult struct {
	// Answer is the generated free-text answer.
	Answer string `json:"answer"`

	// Sources are the deduplicated citations, in retrieval order.
	Sources []Source `json:"sources"`
}
