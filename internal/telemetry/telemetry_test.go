package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/embedding/hash"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

type stubIngest struct {
	report *domain.BatchIngestReport
	err    error
}

func (s *stubIngest) IngestFiles(context.Context, []domain.IngestInput) (*domain.BatchIngestReport, error) {
	return s.report, s.err
}

func (s *stubIngest) IngestPaths(context.Context, []string) (*domain.BatchIngestReport, error) {
	return s.report, s.err
}

func (s *stubIngest) IngestDirectory(context.Context, string) (*domain.BatchIngestReport, error) {
	return s.report, s.err
}

type stubSearch struct {
	err error
}

func (s *stubSearch) Search(context.Context, string, domain.SearchOptions) ([]domain.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.SearchResult{{ChunkID: "c"}}, nil
}

func TestEmbedder_ObservesDuration(t *testing.T) {
	m := NewMetrics()
	e := WrapEmbedder(hash.NewEmbeddingService(8), m)

	_, err := e.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	_, err = e.EmbedBatch(context.Background(), []string{"a b", "c d"})
	require.NoError(t, err)

	assert.Equal(t, 1, testutil.CollectAndCount(m.embedDuration))
	assert.Equal(t, 8, e.Dimensions())
	assert.Equal(t, "fnv-hash", e.ModelName())
	assert.NoError(t, e.Ping(context.Background()))
	assert.NoError(t, e.Close())
}

func TestEmbedder_PassesErrorsThrough(t *testing.T) {
	e := WrapEmbedder(hash.NewEmbeddingService(8), NewMetrics())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Embed(ctx, "x")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_CountsStoredChunks(t *testing.T) {
	m := NewMetrics()
	s := WrapStore(memory.NewVectorStore(), m)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, []domain.StoredRecord{
		{ChunkID: "a", Vector: []float32{1, 0}},
		{ChunkID: "b", Vector: []float32{0, 1}},
	}))
	// A rejected batch is not counted.
	require.Error(t, s.Upsert(ctx, []domain.StoredRecord{{ChunkID: "c", Vector: []float32{1}}}))

	hits, err := s.Query(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	require.NoError(t, s.SaveDocument(ctx, domain.Document{ID: "d"}, 2))
	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	_, err = s.DeleteByDocument(ctx, "d")
	require.NoError(t, err)
	require.NoError(t, s.DeleteDocument(ctx, "d"))
	_, err = s.Stats(ctx)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.chunksStored), 1e-9)
	// One series per distinct op label.
	assert.Equal(t, 7, testutil.CollectAndCount(m.storeOpDuration))
	assert.NoError(t, s.Close())
}

func TestIngestService_CountsByStatus(t *testing.T) {
	m := NewMetrics()
	report := domain.NewBatchIngestReport([]domain.IngestResult{
		{Status: domain.IngestSucceeded},
		{Status: domain.IngestSucceeded},
		{Status: domain.IngestFailed},
	})
	svc := WrapIngestService(&stubIngest{report: report}, m)

	_, err := svc.IngestFiles(context.Background(), nil)
	require.NoError(t, err)
	_, err = svc.IngestDirectory(context.Background(), "/docs")
	require.NoError(t, err)

	assert.InDelta(t, 4.0, testutil.ToFloat64(m.documentsIngested.WithLabelValues("succeeded")), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.documentsIngested.WithLabelValues("failed")), 1e-9)
}

func TestIngestService_NilReportOnError(t *testing.T) {
	m := NewMetrics()
	svc := WrapIngestService(&stubIngest{err: domain.ErrInvalidInput}, m)

	_, err := svc.IngestPaths(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, testutil.CollectAndCount(m.documentsIngested))
}

func TestSearchService_CountsOutcomes(t *testing.T) {
	m := NewMetrics()
	ctx := context.Background()

	_, _ = WrapSearchService(&stubSearch{}, m).Search(ctx, "q", domain.SearchOptions{})
	_, _ = WrapSearchService(&stubSearch{err: fmt.Errorf("wrap: %w", domain.ErrInvalidQueryParameter)}, m).
		Search(ctx, "", domain.SearchOptions{})
	_, _ = WrapSearchService(&stubSearch{err: errors.New("boom")}, m).Search(ctx, "q", domain.SearchOptions{})
	_, _ = WrapSearchService(&stubSearch{err: domain.ErrEmbeddingUnavailable}, m).Search(ctx, "q", domain.SearchOptions{})

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.searches.WithLabelValues(OutcomeOK)), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.searches.WithLabelValues(OutcomeInvalid)), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.searches.WithLabelValues(OutcomeError)), 1e-9)
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.chunksStored.Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sercha_pdf_chunks_stored_total 3")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
