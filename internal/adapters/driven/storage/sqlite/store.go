package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pdf/internal/vectormath"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "vectors.db"

const metaDimensions = "dimensions"

var _ driven.Store = (*Store)(nil)

// Store is a SQLite-backed vector store and document catalog.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.sercha-pdf/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sercha-pdf", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrStoreUnavailable, err)
	}

	dbPath := filepath.Join(dataDir, DBFileName)

	// WAL lets readers proceed during ingest writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrStoreUnavailable, err)
	}
	// One writer at a time; concurrent ingest workers queue here instead of
	// failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrStoreUnavailable, err)
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

// migrate runs all pending migrations, recording each applied version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Vector Store ====================

// Upsert inserts or replaces records by chunk_id in a single transaction.
// The first record ever stored pins the store's vector dimension.
func (s *Store) Upsert(ctx context.Context, records []domain.StoredRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	dims, err := dimensions(ctx, tx)
	if err != nil {
		return err
	}
	if dims == 0 {
		dims = len(records[0].Vector)
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO meta (key, value) VALUES (?, ?)", metaDimensions, strconv.Itoa(dims)); err != nil {
			return unavailable("pinning dimensions", err)
		}
	}

	for _, r := range records {
		if err := r.Validate(dims); err != nil {
			return err
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (chunk_id, document_id, ordinal, page_number, text, vector)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			document_id = excluded.document_id,
			ordinal = excluded.ordinal,
			page_number = excluded.page_number,
			text = excluded.text,
			vector = excluded.vector
	`)
	if err != nil {
		return unavailable("preparing statement", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ChunkID, r.Metadata.DocumentID, r.Metadata.Ordinal,
			r.Metadata.PageNumber, r.Text, float32SliceToBytes(r.Vector)); err != nil {
			return unavailable("saving record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("committing transaction", err)
	}
	return nil
}

// DeleteByDocument removes all records of a document.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE document_id = ?", documentID)
	if err != nil {
		return 0, unavailable("deleting records", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, unavailable("counting deleted records", err)
	}
	return int(n), nil
}

// Query scans every record and returns the topK most similar to vector.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]domain.ScoredRecord, error) {
	if err := domain.ValidateTopK(topK); err != nil {
		return nil, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return nil, unavailable("counting records", err)
	}
	if count == 0 {
		return []domain.ScoredRecord{}, nil
	}

	dims, err := dimensions(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if len(vector) != dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, store holds %d",
			domain.ErrDimensionMismatch, len(vector), dims)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_id, document_id, ordinal, page_number, text, vector FROM records
	`)
	if err != nil {
		return nil, unavailable("querying records", err)
	}
	defer rows.Close()

	top := vectormath.NewTopK(topK)
	for rows.Next() {
		var r domain.StoredRecord
		var blob []byte
		if err := rows.Scan(&r.ChunkID, &r.Metadata.DocumentID, &r.Metadata.Ordinal,
			&r.Metadata.PageNumber, &r.Text, &blob); err != nil {
			return nil, unavailable("scanning record", err)
		}
		r.Vector = bytesToFloat32Slice(blob)
		top.Push(domain.ScoredRecord{Record: r, Score: vectormath.Cosine(vector, r.Vector)})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating records", err)
	}

	return top.Results(), nil
}

// ==================== Document Catalog ====================

// SaveDocument inserts or replaces the catalog entry for doc.
func (s *Store) SaveDocument(ctx context.Context, doc domain.Document, chunkCount int) error {
	ingestedAt := doc.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, path, size, page_count, chunk_count, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path = excluded.path,
			size = excluded.size,
			page_count = excluded.page_count,
			chunk_count = excluded.chunk_count,
			ingested_at = excluded.ingested_at
	`, doc.ID, doc.Path, doc.Size, doc.PageCount, chunkCount, ingestedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return unavailable("saving document", err)
	}
	return nil
}

// DeleteDocument removes a catalog entry.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", documentID); err != nil {
		return unavailable("deleting document", err)
	}
	return nil
}

// ListDocuments returns all catalogued documents ordered by id.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, path, size, page_count, chunk_count, ingested_at
		FROM documents ORDER BY id
	`)
	if err != nil {
		return nil, unavailable("listing documents", err)
	}
	defer rows.Close()

	docs := []domain.DocumentSummary{}
	for rows.Next() {
		var d domain.DocumentSummary
		var ingestedAt string
		if err := rows.Scan(&d.DocumentID, &d.Path, &d.Size, &d.PageCount, &d.ChunkCount, &ingestedAt); err != nil {
			return nil, unavailable("scanning document", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, ingestedAt); err == nil {
			d.IngestedAt = t
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating documents", err)
	}
	return docs, nil
}

// Stats returns document and chunk totals plus the pinned dimension.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats

	row := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM documents), (SELECT COUNT(*) FROM records)
	`)
	if err := row.Scan(&stats.Documents, &stats.Chunks); err != nil {
		return stats, unavailable("counting rows", err)
	}

	dims, err := dimensions(ctx, s.db)
	if err != nil {
		return stats, err
	}
	stats.Dimensions = dims
	return stats, nil
}

// ==================== Helpers ====================

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dimensions returns the pinned vector size, or 0 for an empty store.
func dimensions(ctx context.Context, q queryer) (int, error) {
	var value string
	err := q.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", metaDimensions).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("reading dimensions", err)
	}
	dims, err := strconv.Atoi(value)
	if err != nil {
		return 0, unavailable("parsing dimensions", err)
	}
	return dims, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
