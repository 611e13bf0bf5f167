// Package postgres provides a PostgreSQL implementation of the VectorIndex port
// backed by the pgvector extension.
//
// Passages live in a single table with a fixed-width vector column. Search
// orders by cosine distance (the <=> operator) through an HNSW index.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorIndex = (*Store)(nil)

// Store is a pgvector-backed vector index.
type Store struct {
	pool       *pgxpool.Pool
	dimensions int
}

// NewStore connects to dsn and prepares the passages table for embeddings
// of the given width.
func NewStore(ctx context.Context, dsn string, dimensions int) (*Store, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{pool: pool, dimensions: dimensions}
	if err := s.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// initialize creates the extension, table and indexes when missing.
func (s *Store) initialize(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS passages (
				seq             BIGSERIAL PRIMARY KEY,
				id              TEXT NOT NULL UNIQUE,
				source_document TEXT NOT NULL,
				page            INTEGER NOT NULL DEFAULT 0,
				position        INTEGER NOT NULL DEFAULT 0,
				content         TEXT NOT NULL,
				embedding       vector(%d) NOT NULL,
				created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, s.dimensions),
		`CREATE INDEX IF NOT EXISTS passages_source_document_idx ON passages (source_document)`,
		`CREATE INDEX IF NOT EXISTS passages_embedding_idx ON passages
			USING hnsw (embedding vector_cosine_ops)`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("initializing schema: %w", err)
		}
	}

	// An existing table may have been created for another embedding model.
	var width int
	err := s.pool.QueryRow(ctx, `
		SELECT atttypmod FROM pg_attribute
		WHERE attrelid = 'passages'::regclass AND attname = 'embedding'
	`).Scan(&width)
	if err != nil {
		return fmt.Errorf("reading embedding width: %w", err)
	}
	if width > 0 && width != s.dimensions {
		return fmt.Errorf("%w: table stores %d dimensions, embedder produces %d",
			domain.ErrDimensionMismatch, width, s.dimensions)
	}
	return nil
}

// Dimensions returns the embedding width of the index.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Add stores passages in one transaction. Either all passages are stored or none is.
func (s *Store) Add(ctx context.Context, passages []domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}
	for i := range passages {
		if err := s.validatePassage(i, passages[i]); err != nil {
			return err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for i := range passages {
		p := passages[i]
		batch.Queue(`
			INSERT INTO passages (id, source_document, page, position, content, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, p.ID, p.SourceDocument, p.Page, p.Position, p.Text, pgvector.NewVector(p.Embedding))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting passages: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing passages: %w", err)
	}
	return nil
}

// Search returns the k passages closest to query by cosine distance.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), s.dimensions)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, source_document, page, position, content, embedding,
		       1 - (embedding <=> $1) AS similarity
		FROM passages
		ORDER BY embedding <=> $1, seq
		LIMIT $2
	`, pgvector.NewVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	hits := []driven.VectorHit{}
	for rows.Next() {
		var (
			hit       driven.VectorHit
			embedding pgvector.Vector
		)
		p := &hit.Passage
		if err := rows.Scan(&p.ID, &p.SourceDocument, &p.Page, &p.Position, &p.Text,
			&embedding, &hit.Similarity); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		p.Embedding = embedding.Slice()
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}
	return hits, nil
}

// Reset drops every stored passage.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE passages RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncating passages: %w", err)
	}
	return nil
}

// Documents lists the indexed documents ordered by name.
func (s *Store) Documents(ctx context.Context) ([]domain.IndexedDocument, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT source_document,
		       COUNT(*),
		       COUNT(DISTINCT page) FILTER (WHERE page > 0)
		FROM passages
		GROUP BY source_document
		ORDER BY source_document
	`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.IndexedDocument{}
	for rows.Next() {
		var (
			doc             domain.IndexedDocument
			passages, pages int64
		)
		if err := rows.Scan(&doc.Name, &passages, &pages); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.Passages = int(passages)
		doc.Pages = int(pages)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) validatePassage(i int, p domain.Passage) error {
	switch {
	case p.SourceDocument == "":
		return fmt.Errorf("%w: passage %q has no source document", domain.ErrInvalidInput, p.ID)
	case len(p.Embedding) == 0:
		return fmt.Errorf("%w: passage %q has no embedding", domain.ErrInvalidInput, p.ID)
	case len(p.Embedding) != s.dimensions:
		return fmt.Errorf("%w: passage %d has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, i, len(p.Embedding), s.dimensions)
	}
	return nil
}
