// Package chromem provides a vector store backed by chromem-go, an embeddable
// vector database that persists collections as gob files on disk.
//
// Records live in the "chunks" collection. The document catalog and the pinned
// vector dimension are kept in two small side collections so the whole store
// lives in one chromem database directory.
package chromem

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/philippgille/chromem-go"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pdf/internal/vectormath"
)

// Collection names.
const (
	chunksCollection    = "chunks"
	documentsCollection = "documents"
	metaCollection      = "meta"
)

// Metadata keys stored with each chunk and catalog entry.
const (
	keyDocumentID = "document_id"
	keyOrdinal    = "ordinal"
	keyPage       = "page_number"
	keyNorm       = "norm"
	keyPath       = "path"
	keySize       = "size"
	keyPageCount  = "page_count"
	keyChunkCount = "chunk_count"
	keyIngestedAt = "ingested_at"

	dimensionsID = "dimensions"
)

// placeholder is the embedding of catalog and meta entries, which are never
// ranked by similarity.
var placeholder = []float32{1}

var _ driven.Store = (*Store)(nil)

// Store implements driven.Store on chromem-go.
type Store struct {
	// mu serialises compound operations; chromem only locks single calls.
	mu sync.Mutex

	db        *chromem.DB
	chunks    *chromem.Collection
	documents *chromem.Collection
	meta      *chromem.Collection
	dims      int
}

// NewStore opens (or creates) a persistent chromem database at path.
// An empty path keeps everything in memory.
func NewStore(path string) (*Store, error) {
	var db *chromem.DB
	if path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("%w: opening chromem db: %w", domain.ErrStoreUnavailable, err)
		}
	}

	s := &Store{db: db}

	var err error
	if s.chunks, err = db.GetOrCreateCollection(chunksCollection, map[string]string{"hnsw:space": "cosine"}, nil); err != nil {
		return nil, unavailable("opening chunks collection", err)
	}
	if s.documents, err = db.GetOrCreateCollection(documentsCollection, nil, nil); err != nil {
		return nil, unavailable("opening documents collection", err)
	}
	if s.meta, err = db.GetOrCreateCollection(metaCollection, nil, nil); err != nil {
		return nil, unavailable("opening meta collection", err)
	}

	if s.meta.Count() > 0 {
		doc, err := s.meta.GetByID(context.Background(), dimensionsID)
		if err == nil {
			s.dims, _ = strconv.Atoi(doc.Content)
		}
	}

	return s, nil
}

// Upsert adds or replaces records by chunk_id.
func (s *Store) Upsert(ctx context.Context, records []domain.StoredRecord) error {
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

	if s.dims == 0 {
		if err := s.meta.AddDocument(ctx, chromem.Document{
			ID:        dimensionsID,
			Embedding: placeholder,
			Content:   strconv.Itoa(dims),
		}); err != nil {
			return unavailable("pinning dimensions", err)
		}
		s.dims = dims
	}

	for _, r := range records {
		doc := chromem.Document{
			ID:        r.ChunkID,
			Embedding: storable(r.Vector),
			Content:   r.Text,
			Metadata: map[string]string{
				keyDocumentID: r.Metadata.DocumentID,
				keyOrdinal:    strconv.Itoa(r.Metadata.Ordinal),
				keyPage:       strconv.Itoa(r.Metadata.PageNumber),
				keyNorm:       strconv.FormatFloat(norm(r.Vector), 'g', -1, 64),
			},
		}
		if err := s.chunks.AddDocument(ctx, doc); err != nil {
			return unavailable("saving record", err)
		}
	}
	return nil
}

// DeleteByDocument removes every chunk whose metadata names documentID.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.chunks.Count()
	if before == 0 {
		return 0, nil
	}
	if err := s.chunks.Delete(ctx, map[string]string{keyDocumentID: documentID}, nil); err != nil {
		return 0, unavailable("deleting records", err)
	}
	return before - s.chunks.Count(), nil
}

// Query returns the topK chunks most similar to vector. chromem keeps vectors
// normalised, so each hit is scaled back to its stored norm and rescored with
// vectormath; every backend then ranks identically.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]domain.ScoredRecord, error) {
	if err := domain.ValidateTopK(topK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.chunks.Count()
	if n == 0 {
		return []domain.ScoredRecord{}, nil
	}
	if len(vector) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, store holds %d",
			domain.ErrDimensionMismatch, len(vector), s.dims)
	}

	// Every document is fetched so ties at the cut-off resolve by chunk_id.
	results, err := s.chunks.QueryEmbedding(ctx, storable(vector), n, nil, nil)
	if err != nil {
		return nil, unavailable("querying records", err)
	}

	hits := make([]domain.ScoredRecord, 0, len(results))
	for _, res := range results {
		r := domain.StoredRecord{
			ChunkID: res.ID,
			Vector:  rescale(res.Embedding, res.Metadata[keyNorm]),
			Text:    res.Content,
			Metadata: domain.RecordMetadata{
				DocumentID: res.Metadata[keyDocumentID],
				Ordinal:    atoi(res.Metadata[keyOrdinal]),
				PageNumber: atoi(res.Metadata[keyPage]),
			},
		}
		hits = append(hits, domain.ScoredRecord{Record: r, Score: vectormath.Cosine(vector, r.Vector)})
	}
	return domain.RankScored(hits, topK), nil
}

// SaveDocument inserts or replaces the catalog entry for doc.
func (s *Store) SaveDocument(ctx context.Context, doc domain.Document, chunkCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ingestedAt := doc.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now()
	}

	err := s.documents.AddDocument(ctx, chromem.Document{
		ID:        doc.ID,
		Embedding: placeholder,
		Content:   doc.ID,
		Metadata: map[string]string{
			keyPath:       doc.Path,
			keySize:       strconv.FormatInt(doc.Size, 10),
			keyPageCount:  strconv.Itoa(doc.PageCount),
			keyChunkCount: strconv.Itoa(chunkCount),
			keyIngestedAt: ingestedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return unavailable("saving document", err)
	}
	return nil
}

// DeleteDocument removes a catalog entry.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.documents.Count() == 0 {
		return nil
	}
	if err := s.documents.Delete(ctx, nil, nil, documentID); err != nil {
		return unavailable("deleting document", err)
	}
	return nil
}

// ListDocuments returns all catalogued documents ordered by id.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.DocumentSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := []domain.DocumentSummary{}

	n := s.documents.Count()
	if n == 0 {
		return docs, nil
	}

	results, err := s.documents.QueryEmbedding(ctx, placeholder, n, nil, nil)
	if err != nil {
		return nil, unavailable("listing documents", err)
	}

	for _, res := range results {
		d := domain.DocumentSummary{
			DocumentID: res.ID,
			Path:       res.Metadata[keyPath],
			PageCount:  atoi(res.Metadata[keyPageCount]),
			ChunkCount: atoi(res.Metadata[keyChunkCount]),
		}
		d.Size, _ = strconv.ParseInt(res.Metadata[keySize], 10, 64)
		if t, err := time.Parse(time.RFC3339Nano, res.Metadata[keyIngestedAt]); err == nil {
			d.IngestedAt = t
		}
		docs = append(docs, d)
	}

	slices.SortFunc(docs, func(a, b domain.DocumentSummary) int {
		return cmp.Compare(a.DocumentID, b.DocumentID)
	})
	return docs, nil
}

// Stats returns collection sizes and the pinned dimension.
func (s *Store) Stats(context.Context) (domain.StoreStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.StoreStats{
		Documents:  s.documents.Count(),
		Chunks:     s.chunks.Count(),
		Dimensions: s.dims,
	}, nil
}

// Close is a no-op; persistent collections are written on every change.
func (s *Store) Close() error {
	return nil
}

// storable returns a vector chromem can normalise. chromem divides by the
// vector norm, so an all-zero vector is replaced by a uniform one. Its stored
// norm of zero restores it on the way out.
func storable(v []float32) []float32 {
	for _, x := range v {
		if x != 0 {
			return v
		}
	}
	out := make([]float32, len(v))
	for i := range out {
		out[i] = 1e-6
	}
	return out
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// rescale returns v scaled to the norm recorded at upsert time.
func rescale(v []float32, recorded string) []float32 {
	want, err := strconv.ParseFloat(recorded, 64)
	if err != nil {
		return v
	}
	out := make([]float32, len(v))
	have := norm(v)
	if want == 0 || have == 0 {
		return out
	}
	factor := want / have
	for i, x := range v {
		out[i] = float32(float64(x) * factor)
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
