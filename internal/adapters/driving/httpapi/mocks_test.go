package httpapi

import (
	"context"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
)

type mockSearchService struct {
	results []domain.SearchResult
	err     error
	query   string
	opts    domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	return m.results, m.err
}

type mockIngestService struct {
	err    error
	inputs []domain.IngestInput
	dir    string
}

func (m *mockIngestService) report(n int) *domain.BatchIngestReport {
	results := make([]domain.IngestResult, n)
	for i := range results {
		results[i] = domain.IngestResult{Status: domain.IngestSucceeded, Stage: domain.StageStored}
	}
	return domain.NewBatchIngestReport(results)
}

func (m *mockIngestService) IngestFiles(_ context.Context, inputs []domain.IngestInput) (*domain.BatchIngestReport, error) {
	m.inputs = inputs
	if m.err != nil {
		return nil, m.err
	}
	return m.report(len(inputs)), nil
}

func (m *mockIngestService) IngestPaths(_ context.Context, paths []string) (*domain.BatchIngestReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.report(len(paths)), nil
}

func (m *mockIngestService) IngestDirectory(_ context.Context, dir string) (*domain.BatchIngestReport, error) {
	m.dir = dir
	if m.err != nil {
		return nil, m.err
	}
	return m.report(2), nil
}

type mockDocumentService struct {
	status *driving.Status
	err    error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.DocumentSummary, error) {
	return nil, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) (int, error) {
	return 0, m.err
}

func (m *mockDocumentService) Status(_ context.Context) (*driving.Status, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.status, nil
}
