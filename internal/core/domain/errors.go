package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFileType indicates an upload that is not a PDF.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index could not be opened.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch indicates an embedding whose size differs from the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// DocumentProcessingError reports a failure to extract, chunk, embed or store
// a single document. Nothing from the document is stored when it is returned.
type DocumentProcessingError struct {
	// Filename is the uploaded document name.
	Filename string

	// Err is the underlying cause.
	Err error
}

// NewDocumentProcessingError wraps err with the document it failed on.
func NewDocumentProcessingError(filename string, err error) *DocumentProcessingError {
	return &DocumentProcessingError{Filename: filename, Err: err}
}

func (e *DocumentProcessingError) Error() string {
	return fmt.Sprintf("processing document %q: %v", e.Filename, e.Err)
}

func (e *DocumentProcessingError) Unwrap() error {
	return e.Err
}

// QueryProcessingError reports a failure to embed a question, search the
// index or generate the answer. No partial answer accompanies it.
type QueryProcessingError struct {
	// Err is the underlying cause.
	Err error
}

// NewQueryProcessingError wraps err as a query failure.
func NewQueryProcessingError(err error) *QueryProcessingError {
	return &QueryProcessingError{Err: err}
}

func (e *QueryProcessingError) Error() string {
	return fmt.Sprintf("processing query: %v", e.Err)
}

func (e *QueryProcessingError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a missing or invalid setting detected at startup.
// It is fatal: the service must not start.
type ConfigurationError struct {
	// Setting is the configuration key at fault (e.g. "llm.api_key").
	Setting string

	// Reason describes what is wrong with it.
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}

// IsDocumentProcessingError reports whether err wraps a DocumentProcessingError.
func IsDocumentProcessingError(err error) bool {
	var target *DocumentProcessingError
	return errors.As(err, &target)
}

// IsQueryProcessingError reports whether err wraps a QueryProcessingError.
func IsQueryProcessingError(err error) bool {
	var target *QueryProcessingError
	return errors.As(err, &target)
}

// IsConfigurationError reports whether err wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
