// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// IndexingService turns uploaded documents into embedded passages,
// AnswerService answers questions from them, and CatalogService
// lists and resets what has been indexed.
package services
