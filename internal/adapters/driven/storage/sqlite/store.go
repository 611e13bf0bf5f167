package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// dbFile is the database filename inside the data directory.
const dbFile = "docqa.db"

// Store is a SQLite-backed persistent vector index.
type Store struct {
	db   *sql.DB
	path string
}

// Ensure Store implements the interface.
var _ driven.VectorIndex = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ./docqa_data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		dataDir = "docqa_data"
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_passages.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Vector Index ====================

// Add stores passages in one transaction. Either all passages are stored or none is.
func (s *Store) Add(ctx context.Context, passages []domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	dims, err := storedDimensions(ctx, tx)
	if err != nil {
		return err
	}
	for i := range passages {
		if err := validatePassage(passages[i]); err != nil {
			return err
		}
		n := len(passages[i].Embedding)
		if dims == 0 {
			dims = n
		}
		if n != dims {
			return fmt.Errorf("%w: passage %d has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, i, n, dims)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (id, source_document, page, position, content, embedding, dimensions)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range passages {
		p := passages[i]
		_, err := stmt.ExecContext(ctx,
			p.ID, p.SourceDocument, p.Page, p.Position, p.Text,
			float32SliceToBytes(p.Embedding), len(p.Embedding))
		if err != nil {
			return fmt.Errorf("inserting passage %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing passages: %w", err)
	}
	return nil
}

// Search returns the k passages most similar to query.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_document, page, position, content, embedding
		FROM passages ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	var (
		passages   []domain.Passage
		candidates []similarity.Candidate
	)
	for rows.Next() {
		var (
			p    domain.Passage
			blob []byte
		)
		if err := rows.Scan(&p.ID, &p.SourceDocument, &p.Page, &p.Position, &p.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning passage: %w", err)
		}
		p.Embedding = bytesToFloat32Slice(blob)
		if len(p.Embedding) != len(query) {
			return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, len(query), len(p.Embedding))
		}
		candidates = append(candidates, similarity.Candidate{
			Seq:   len(passages),
			Score: similarity.Cosine(query, p.Embedding),
		})
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}

	top := similarity.TopK(candidates, k)
	hits := make([]driven.VectorHit, len(top))
	for i, c := range top {
		hits[i] = driven.VectorHit{
			Passage:    passages[c.Seq],
			Similarity: c.Score,
		}
	}
	return hits, nil
}

// Reset drops every stored passage.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM passages"); err != nil {
		return fmt.Errorf("deleting passages: %w", err)
	}
	return nil
}

// Documents lists the indexed documents ordered by name.
func (s *Store) Documents(ctx context.Context) ([]domain.IndexedDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source_document,
		       COUNT(*),
		       COUNT(DISTINCT CASE WHEN page > 0 THEN page END)
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
		var doc domain.IndexedDocument
		if err := rows.Scan(&doc.Name, &doc.Passages, &doc.Pages); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Count returns the number of stored passages.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM passages").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting passages: %w", err)
	}
	return n, nil
}

// ==================== Helper Functions ====================

// storedDimensions returns the embedding width already in the index, or 0 when empty.
func storedDimensions(ctx context.Context, tx *sql.Tx) (int, error) {
	var dims int
	err := tx.QueryRowContext(ctx, "SELECT dimensions FROM passages LIMIT 1").Scan(&dims)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading index dimensions: %w", err)
	}
	return dims, nil
}

func validatePassage(p domain.Passage) error {
	if p.SourceDocument == "" {
		return fmt.Errorf("%w: passage %q has no source document", domain.ErrInvalidInput, p.ID)
	}
	if len(p.Embedding) == 0 {
		return fmt.Errorf("%w: passage %q has no embedding", domain.ErrInvalidInput, p.ID)
	}
	return nil
}

// float32SliceToBytes converts a float32 slice to bytes for BLOB storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts bytes from BLOB storage to a float32 slice.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
