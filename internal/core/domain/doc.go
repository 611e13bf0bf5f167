// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Page: Text extracted from one page of an uploaded document
//   - Passage: A retrievable, embedded span of page text
//   - IndexedDocument: All passages sharing a source document name
//   - Source: A deduplicated citation attached to an answer
//   - AnswerResult: A grounded answer and its sources
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
