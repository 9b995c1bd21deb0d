package memory

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pdf/internal/vectormath"
)

// Ensure VectorStore implements the interface.
var _ driven.Store = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.Store.
// Contents are lost when the process exits.
type VectorStore struct {
	mu        sync.RWMutex
	records   map[string]domain.StoredRecord
	documents map[string]domain.DocumentSummary
	dims      int
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		records:   make(map[string]domain.StoredRecord),
		documents: make(map[string]domain.DocumentSummary),
	}
}

// Upsert stores or replaces records by chunk_id.
func (s *VectorStore) Upsert(_ context.Context, records []domain.StoredRecord) error {
	if len(records) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dims := s.dims
	if dims == 0 {
		dims = len(records[0].Vector)
	}
	for _, r := range records {
		if err := r.Validate(dims); err != nil {
			return err
		}
	}
	s.dims = dims

	for _, r := range records {
		r.Vector = slices.Clone(r.Vector)
		s.records[r.ChunkID] = r
	}
	return nil
}

// DeleteByDocument removes all records of a document.
func (s *VectorStore) DeleteByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, r := range s.records {
		if r.Metadata.DocumentID == documentID {
			delete(s.records, id)
			n++
		}
	}
	return n, nil
}

// Query scans all records and returns the topK most similar to vector.
func (s *VectorStore) Query(_ context.Context, vector []float32, topK int) ([]domain.ScoredRecord, error) {
	if err := domain.ValidateTopK(topK); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return []domain.ScoredRecord{}, nil
	}
	if len(vector) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, store holds %d",
			domain.ErrDimensionMismatch, len(vector), s.dims)
	}

	top := vectormath.NewTopK(topK)
	for _, r := range s.records {
		top.Push(domain.ScoredRecord{Record: r, Score: vectormath.Cosine(vector, r.Vector)})
	}
	return top.Results(), nil
}

// SaveDocument stores or replaces a catalog entry.
func (s *VectorStore) SaveDocument(_ context.Context, doc domain.Document, chunkCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ingestedAt := doc.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now()
	}
	s.documents[doc.ID] = domain.DocumentSummary{
		DocumentID: doc.ID,
		Path:       doc.Path,
		Size:       doc.Size,
		PageCount:  doc.PageCount,
		ChunkCount: chunkCount,
		IngestedAt: ingestedAt,
	}
	return nil
}

// DeleteDocument removes a catalog entry.
func (s *VectorStore) DeleteDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, documentID)
	return nil
}

// ListDocuments returns catalog entries ordered by id.
func (s *VectorStore) ListDocuments(_ context.Context) ([]domain.DocumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := slices.Collect(maps.Values(s.documents))
	slices.SortFunc(docs, func(a, b domain.DocumentSummary) int {
		return cmp.Compare(a.DocumentID, b.DocumentID)
	})
	if docs == nil {
		docs = []domain.DocumentSummary{}
	}
	return docs, nil
}

// Stats returns store totals.
func (s *VectorStore) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.StoreStats{
		Documents:  len(s.documents),
		Chunks:     len(s.records),
		Dimensions: s.dims,
	}, nil
}

// Close releases resources.
func (s *VectorStore) Close() error {
	return nil
}
