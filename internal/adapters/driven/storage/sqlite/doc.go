// Package sqlite provides a SQLite-backed vector store and document catalog.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Vectors are stored as little-endian float32 blobs and
// queried by a brute-force cosine scan, which is exact and fast enough for
// collections of a few hundred thousand chunks.
//
// # Schema
//
// The schema is managed through versioned migrations in migrations/.
// Applied versions are recorded in schema_migrations.
//
//   - records: chunk_id, document_id, ordinal, page_number, text, vector
//   - documents: per-document catalog
//   - meta: pinned vector dimension
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-pdf/data/vectors.db
//
// # Thread Safety
//
// All operations are thread-safe. The store serialises access through a
// single connection in WAL mode.
package sqlite
