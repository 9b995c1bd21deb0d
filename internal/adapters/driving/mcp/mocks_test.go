package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	query   string
	opts    domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	return m.results, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report *domain.BatchIngestReport
	err    error
	dir    string
}

func (m *mockIngestService) IngestFiles(_ context.Context, _ []domain.IngestInput) (*domain.BatchIngestReport, error) {
	return m.report, m.err
}

func (m *mockIngestService) IngestPaths(_ context.Context, _ []string) (*domain.BatchIngestReport, error) {
	return m.report, m.err
}

func (m *mockIngestService) IngestDirectory(_ context.Context, dir string) (*domain.BatchIngestReport, error) {
	m.dir = dir
	return m.report, m.err
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.DocumentSummary
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.DocumentSummary, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) (int, error) {
	return 0, m.err
}

func (m *mockDocumentService) Status(_ context.Context) (*driving.Status, error) {
	return &driving.Status{}, m.err
}
