package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

func memorySettings() *domain.AppSettings {
	s := domain.DefaultAppSettings()
	s.Store.Backend = domain.StoreBackendMemory
	s.Embedding.Dimensions = 32
	return &s
}

func TestBuildPipeline_Memory(t *testing.T) {
	p, err := buildPipeline(context.Background(), memorySettings())
	require.NoError(t, err)
	defer func() { assert.NoError(t, p.Close()) }()

	results, err := p.Search.Search(context.Background(), "anything", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)

	status, err := p.Document.Status(context.Background())
	require.NoError(t, err)
	assert.Zero(t, status.Documents)
	assert.Equal(t, 32, status.Dimensions)

	rec := httptest.NewRecorder()
	p.Metrics.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "sercha_pdf_searches_total")
}

func TestBuildPipeline_InvalidReader(t *testing.T) {
	s := memorySettings()
	s.Reader.Backend = "ocr"

	_, err := buildPipeline(context.Background(), s)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBuildPipeline_InvalidChunking(t *testing.T) {
	s := memorySettings()
	s.Chunking.Overlap = s.Chunking.Size

	_, err := buildPipeline(context.Background(), s)

	assert.ErrorIs(t, err, domain.ErrInvalidChunkConfig)
}

func TestBuildPipeline_MissingAPIKey(t *testing.T) {
	s := memorySettings()
	s.Embedding.Provider = domain.EmbeddingProviderOpenAI
	s.Embedding.APIKey = ""

	_, err := buildPipeline(context.Background(), s)

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestOpenStore(t *testing.T) {
	tests := []struct {
		name    string
		backend domain.StoreBackend
	}{
		{name: "sqlite", backend: domain.StoreBackendSQLite},
		{name: "chromem", backend: domain.StoreBackendChromem},
		{name: "memory", backend: domain.StoreBackendMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := openStore(domain.StoreSettings{Backend: tt.backend, DataDir: t.TempDir()})
			require.NoError(t, err)
			defer store.Close()

			stats, err := store.Stats(context.Background())
			require.NoError(t, err)
			assert.Zero(t, stats.Chunks)
		})
	}
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, err := openStore(domain.StoreSettings{Backend: "qdrant"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDataDir(t *testing.T) {
	dir, err := dataDir(domain.StoreSettings{DataDir: "/srv/pdf"})
	require.NoError(t, err)
	assert.Equal(t, "/srv/pdf", dir)

	t.Setenv("HOME", "/home/tester")
	dir, err = dataDir(domain.StoreSettings{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".sercha-pdf", "data"), dir)
}
