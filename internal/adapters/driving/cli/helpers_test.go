package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/watcher"
	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-pdf/internal/core/services"
)

type mockSearchService struct {
	results   []domain.SearchResult
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

type mockIngestService struct {
	report   *domain.BatchIngestReport
	err      error
	dir      string
	paths    []string
	inputs   []domain.IngestInput
	lastCall string
}

func (m *mockIngestService) IngestFiles(_ context.Context, inputs []domain.IngestInput) (*domain.BatchIngestReport, error) {
	m.lastCall = "files"
	m.inputs = inputs
	return m.result()
}

func (m *mockIngestService) IngestPaths(_ context.Context, paths []string) (*domain.BatchIngestReport, error) {
	m.lastCall = "paths"
	m.paths = paths
	return m.result()
}

func (m *mockIngestService) IngestDirectory(_ context.Context, dir string) (*domain.BatchIngestReport, error) {
	m.lastCall = "directory"
	m.dir = dir
	return m.result()
}

func (m *mockIngestService) result() (*domain.BatchIngestReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.report == nil {
		return domain.NewBatchIngestReport(nil), nil
	}
	return m.report, nil
}

type mockDocumentService struct {
	docs      []domain.DocumentSummary
	status    *driving.Status
	err       error
	removed   int
	deletedID string
}

func (m *mockDocumentService) List(context.Context) ([]domain.DocumentSummary, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, id string) (int, error) {
	m.deletedID = id
	if m.err != nil {
		return 0, m.err
	}
	return m.removed, nil
}

func (m *mockDocumentService) Status(context.Context) (*driving.Status, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.status == nil {
		return &driving.Status{}, nil
	}
	return m.status, nil
}

type testServices struct {
	search   *mockSearchService
	ingest   *mockIngestService
	document *mockDocumentService
	settings *services.SettingsService
}

// setupTestServices installs mock services and resets command flags.
// Call the returned function to restore the previous state.
func setupTestServices(t *testing.T) (*testServices, func()) {
	t.Helper()

	oldSearch, oldIngest, oldDocument := searchService, ingestService, documentService
	oldSettings, oldMetrics := settingsService, metricsHandler
	oldFactory, oldClose := pipelineFactory, pipelineClose

	ts := &testServices{
		search:   &mockSearchService{},
		ingest:   &mockIngestService{},
		document: &mockDocumentService{},
		settings: services.NewSettingsService(memory.NewConfigStore(), nil),
	}
	SetServices(&Pipeline{Search: ts.search, Ingest: ts.ingest, Document: ts.document})
	SetSettingsService(ts.settings)
	pipelineFactory = nil
	resetFlags()

	return ts, func() {
		searchService, ingestService, documentService = oldSearch, oldIngest, oldDocument
		settingsService, metricsHandler = oldSettings, oldMetrics
		pipelineFactory, pipelineClose = oldFactory, oldClose
		resetFlags()
	}
}

func resetFlags() {
	verbose = false
	searchTopK, searchJSON = 0, false
	ingestDir, ingestIDFromPath, ingestJSON = "", false, false
	documentJSON = false
	statusJSON = false
	serveAddr = ""
	serveMaxUpload = 256 << 20
	watchDebounce, watchInitial = watcher.DefaultDebounce, false
	tuiTopK = 0
	// Changed survives between Execute calls on the shared commands.
	searchCmd.Flags().Lookup("top-k").Changed = false
	tuiCmd.Flags().Lookup("top-k").Changed = false
}

// clearServices removes every pipeline service so ensurePipeline must build one.
func clearServices() {
	searchService, ingestService, documentService = nil, nil, nil
	metricsHandler = nil
	pipelineClose = nil
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}
