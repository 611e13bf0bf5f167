// Package sqlite provides a SQLite-based implementation of the VectorIndex port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Passages are stored with their embedding
// encoded as a little-endian float32 BLOB and searched with a cosine scan.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database is stored at <index.path>/docqa.db, by default ./docqa_data/docqa.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode, and each Add runs in a single transaction.
package sqlite
