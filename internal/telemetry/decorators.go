package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
)

// Ensure decorators implement the ports they wrap.
var (
	_ driven.EmbeddingService = (*Embedder)(nil)
	_ driven.Store            = (*Store)(nil)
	_ driving.IngestService   = (*IngestService)(nil)
	_ driving.SearchService   = (*SearchService)(nil)
)

// end closes span, marking it failed when err is set.
func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// ==== Embedder ====

// Embedder times embedding calls.
type Embedder struct {
	next    driven.EmbeddingService
	metrics *Metrics
}

// WrapEmbedder instruments an embedding service.
func WrapEmbedder(next driven.EmbeddingService, m *Metrics) *Embedder {
	return &Embedder{next: next, metrics: m}
}

// Embed generates a vector embedding for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) (v []float32, err error) {
	ctx, span := tracer.Start(ctx, "embed", trace.WithAttributes(
		attribute.String("embedding.model", e.next.ModelName()),
		attribute.Int("embedding.inputs", 1),
	))
	defer func(start time.Time) {
		e.metrics.embedDuration.Observe(time.Since(start).Seconds())
		end(span, err)
	}(time.Now())

	return e.next.Embed(ctx, text)
}

// EmbedBatch generates embeddings for multiple texts.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) (v [][]float32, err error) {
	ctx, span := tracer.Start(ctx, "embed_batch", trace.WithAttributes(
		attribute.String("embedding.model", e.next.ModelName()),
		attribute.Int("embedding.inputs", len(texts)),
	))
	defer func(start time.Time) {
		e.metrics.embedDuration.Observe(time.Since(start).Seconds())
		end(span, err)
	}(time.Now())

	return e.next.EmbedBatch(ctx, texts)
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int { return e.next.Dimensions() }

// ModelName returns the wrapped model name.
func (e *Embedder) ModelName() string { return e.next.ModelName() }

// Ping checks the wrapped service.
func (e *Embedder) Ping(ctx context.Context) error { return e.next.Ping(ctx) }

// Close releases the wrapped service.
func (e *Embedder) Close() error { return e.next.Close() }

// ==== Store ====

// Store times every vector store and catalog operation.
type Store struct {
	next    driven.Store
	metrics *Metrics
}

// WrapStore instruments a store.
func WrapStore(next driven.Store, m *Metrics) *Store {
	return &Store{next: next, metrics: m}
}

func (s *Store) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := tracer.Start(ctx, "store."+op, trace.WithAttributes(attrs...))
	start := time.Now()
	return ctx, func(err error) {
		s.metrics.storeOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		end(span, err)
	}
}

// Upsert inserts or replaces records and counts them once written.
func (s *Store) Upsert(ctx context.Context, records []domain.StoredRecord) error {
	ctx, done := s.observe(ctx, "upsert", attribute.Int("store.records", len(records)))
	err := s.next.Upsert(ctx, records)
	done(err)
	if err == nil {
		s.metrics.chunksStored.Add(float64(len(records)))
	}
	return err
}

// DeleteByDocument removes a document's records.
func (s *Store) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	ctx, done := s.observe(ctx, "delete_by_document", attribute.String("document.id", documentID))
	n, err := s.next.DeleteByDocument(ctx, documentID)
	done(err)
	return n, err
}

// Query returns the closest records.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]domain.ScoredRecord, error) {
	ctx, done := s.observe(ctx, "query", attribute.Int("search.top_k", topK))
	hits, err := s.next.Query(ctx, vector, topK)
	done(err)
	return hits, err
}

// SaveDocument records a catalog entry.
func (s *Store) SaveDocument(ctx context.Context, doc domain.Document, chunkCount int) error {
	ctx, done := s.observe(ctx, "save_document", attribute.String("document.id", doc.ID))
	err := s.next.SaveDocument(ctx, doc, chunkCount)
	done(err)
	return err
}

// DeleteDocument removes a catalog entry.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	ctx, done := s.observe(ctx, "delete_document", attribute.String("document.id", documentID))
	err := s.next.DeleteDocument(ctx, documentID)
	done(err)
	return err
}

// ListDocuments returns the catalog.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.DocumentSummary, error) {
	ctx, done := s.observe(ctx, "list_documents")
	docs, err := s.next.ListDocuments(ctx)
	done(err)
	return docs, err
}

// Stats returns store totals.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	ctx, done := s.observe(ctx, "stats")
	stats, err := s.next.Stats(ctx)
	done(err)
	return stats, err
}

// Close closes the wrapped store.
func (s *Store) Close() error { return s.next.Close() }

// ==== Services ====

// IngestService counts per-document outcomes.
type IngestService struct {
	next    driving.IngestService
	metrics *Metrics
}

// WrapIngestService instruments an ingest service.
func WrapIngestService(next driving.IngestService, m *Metrics) *IngestService {
	return &IngestService{next: next, metrics: m}
}

// IngestFiles processes payloads.
func (s *IngestService) IngestFiles(
	ctx context.Context, inputs []domain.IngestInput,
) (*domain.BatchIngestReport, error) {
	ctx, span := tracer.Start(ctx, "ingest", trace.WithAttributes(attribute.Int("ingest.inputs", len(inputs))))
	report, err := s.next.IngestFiles(ctx, inputs)
	s.record(span, report, err)
	return report, err
}

// IngestPaths processes files from disk.
func (s *IngestService) IngestPaths(ctx context.Context, paths []string) (*domain.BatchIngestReport, error) {
	ctx, span := tracer.Start(ctx, "ingest", trace.WithAttributes(attribute.Int("ingest.inputs", len(paths))))
	report, err := s.next.IngestPaths(ctx, paths)
	s.record(span, report, err)
	return report, err
}

// IngestDirectory processes a directory of PDFs.
func (s *IngestService) IngestDirectory(ctx context.Context, dir string) (*domain.BatchIngestReport, error) {
	ctx, span := tracer.Start(ctx, "ingest", trace.WithAttributes(attribute.String("ingest.directory", dir)))
	report, err := s.next.IngestDirectory(ctx, dir)
	s.record(span, report, err)
	return report, err
}

func (s *IngestService) record(span trace.Span, report *domain.BatchIngestReport, err error) {
	if report != nil {
		for _, res := range report.Results {
			s.metrics.documentsIngested.WithLabelValues(string(res.Status)).Inc()
		}
		span.SetAttributes(
			attribute.Int("ingest.succeeded", report.Succeeded),
			attribute.Int("ingest.failed", report.Failed),
		)
	}
	end(span, err)
}

// SearchService counts queries by outcome.
type SearchService struct {
	next    driving.SearchService
	metrics *Metrics
}

// WrapSearchService instruments a search service.
func WrapSearchService(next driving.SearchService, m *Metrics) *SearchService {
	return &SearchService{next: next, metrics: m}
}

// Search runs the wrapped query.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	ctx, span := tracer.Start(ctx, "search")
	if opts.TopK != nil {
		span.SetAttributes(attribute.Int("search.top_k", *opts.TopK))
	}
	results, err := s.next.Search(ctx, query, opts)

	s.metrics.searches.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		span.SetAttributes(attribute.Int("search.results", len(results)))
	}
	end(span, err)
	return results, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrInvalidQueryParameter), errors.Is(err, domain.ErrInvalidInput):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
