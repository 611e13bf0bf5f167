// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - PageExtractor: Turns uploaded document bytes into per-page text
//   - Splitter: Splits page text into overlapping passages
//   - EmbeddingService: Generates vector embeddings for passages and questions
//   - VectorIndex: Stores embedded passages and returns nearest neighbours
//   - LLMService: Generates the grounded answer
//   - PromptStore: User-editable prompt templates (optional)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
