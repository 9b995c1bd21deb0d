package driven

import (
	"context"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

// VectorStore persists StoredRecords and serves similarity queries.
// It is the only stateful component of the pipeline. Scores are cosine
// similarity, ordered best-first with chunk_id ascending on ties.
type VectorStore interface {
	// Upsert inserts or replaces records by chunk_id. Each record is written
	// atomically; the batch as a whole need not be.
	Upsert(ctx context.Context, records []domain.StoredRecord) error

	// DeleteByDocument removes every record of a document and returns how many
	// were removed. Deleting an unknown document is not an error.
	DeleteByDocument(ctx context.Context, documentID string) (int, error)

	// Query returns up to topK records closest to vector.
	// topK outside [1, domain.MaxTopK] fails with domain.ErrInvalidQueryParameter.
	Query(ctx context.Context, vector []float32, topK int) ([]domain.ScoredRecord, error)

	// Close releases resources.
	Close() error
}

// DocumentCatalog tracks per-document metadata next to the vectors.
type DocumentCatalog interface {
	// SaveDocument records a successfully stored document.
	SaveDocument(ctx context.Context, doc domain.Document, chunkCount int) error

	// DeleteDocument removes the catalog entry. Unknown ids are ignored.
	DeleteDocument(ctx context.Context, documentID string) error

	// ListDocuments returns all catalogued documents ordered by id.
	ListDocuments(ctx context.Context) ([]domain.DocumentSummary, error)

	// Stats returns store totals.
	Stats(ctx context.Context) (domain.StoreStats, error)
}

// Store is a VectorStore that also keeps a DocumentCatalog.
// Every backend in this module implements it.
type Store interface {
	VectorStore
	DocumentCatalog
}
