package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

// mockEmbeddingValidator implements driven.EmbeddingValidator for testing.
type mockEmbeddingValidator struct {
	err    error
	called *domain.EmbeddingSettings
}

func (m *mockEmbeddingValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	m.called = settings
	return m.err
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{
		"chunking.size":        500,
		"chunking.overlap":     50,
		"embedding.provider":   "openai",
		"embedding.api_key":    "sk-test",
		"embedding.rate_limit": 2.5,
		"store.backend":        "chromem",
		"store.data_dir":       "/var/lib/sercha",
		"search.default_top_k": 10,
		"ingest.concurrency":   4,
		"ingest.batch_timeout": "2m",
		"server.addr":          ":9000",
		"reader.backend":       "pdftotext",
		"embedding.dimensions": 512,
		"embedding.base_url":   "http://proxy.local/v1",
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.ChunkConfig{Size: 500, Overlap: 50}, settings.Chunking)
	assert.Equal(t, domain.EmbeddingProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model)
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
	assert.Equal(t, 512, settings.Embedding.Dimensions)
	assert.InDelta(t, 2.5, settings.Embedding.RateLimit, 1e-9)
	assert.Equal(t, "http://proxy.local/v1", settings.Embedding.BaseURL)
	assert.Equal(t, domain.StoreBackendChromem, settings.Store.Backend)
	assert.Equal(t, "/var/lib/sercha", settings.Store.DataDir)
	assert.Equal(t, 10, settings.Search.DefaultTopK)
	assert.Equal(t, 4, settings.Ingest.Concurrency)
	assert.Equal(t, 2*time.Minute, settings.Ingest.BatchTimeout)
	assert.Equal(t, ":9000", settings.Server.Addr)
	assert.Equal(t, "pdftotext", settings.Reader.Backend)
}

func TestSettingsService_Get_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvDataDir, "/tmp/override")
	t.Setenv(EnvEmbeddingAPIKey, "sk-env")

	store := memory.NewConfigStoreWith(map[string]any{
		"store.data_dir":    "/from/file",
		"embedding.api_key": "sk-file",
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/override", settings.Store.DataDir)
	assert.Equal(t, "sk-env", settings.Embedding.APIKey)
}

func TestSettingsService_Get_InvalidTimeout(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{"ingest.batch_timeout": "soon"})
	service := NewSettingsService(store, nil)

	_, err := service.Get()

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  any
	}{
		{"chunking.size", "800", 800},
		{"chunking.overlap", "0", 0},
		{"embedding.rate_limit", "1.5", 1.5},
		{"ingest.batch_timeout", "90s", "1m30s"},
		{"store.backend", "memory", "memory"},
		{"reader.backend", "native", "native"},
		{"server.addr", " 0.0.0.0:8080 ", "0.0.0.0:8080"},
		{"search.default_top_k", "20", 20},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, nil)

			require.NoError(t, service.Set(tt.key, tt.value))

			got, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_Set_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"chunking.size", "0"},
		{"chunking.size", "big"},
		{"chunking.overlap", "-1"},
		{"embedding.provider", "cohere"},
		{"embedding.rate_limit", "-2"},
		{"store.backend", "postgres"},
		{"reader.backend", "ocr"},
		{"ingest.batch_timeout", "10"},
		{"ingest.concurrency", "0"},
		{"unknown.key", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, nil)

			err := service.Set(tt.key, tt.value)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.Keys())
		})
	}
}

func TestSettingsService_Set_ProviderResetsModel(t *testing.T) {
	store := memory.NewConfigStoreWith(map[string]any{
		"embedding.model":      "fnv-hash",
		"embedding.dimensions": 384,
	})
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set("embedding.provider", "ollama"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Zero(t, settings.Embedding.Dimensions)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	want := domain.DefaultAppSettings()
	want.Chunking = domain.ChunkConfig{Size: 300, Overlap: 30}
	want.Embedding.Provider = domain.EmbeddingProviderOllama
	want.Embedding.Model = "all-minilm"
	want.Embedding.Dimensions = 384
	want.Ingest.BatchTimeout = 45 * time.Second
	want.Store.Backend = domain.StoreBackendMemory

	require.NoError(t, service.Save(&want))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestSettingsService_Save_DoesNotPersistEnvKey(t *testing.T) {
	t.Setenv(EnvEmbeddingAPIKey, "sk-env")
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings, err := service.Get()
	require.NoError(t, err)
	require.NoError(t, service.Save(settings))

	_, ok := store.Get("embedding.api_key")
	assert.False(t, ok)
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.NoError(t, service.Validate())
	})

	t.Run("overlap not smaller than size", func(t *testing.T) {
		store := memory.NewConfigStoreWith(map[string]any{"chunking.size": 100, "chunking.overlap": 100})
		service := NewSettingsService(store, nil)
		assert.ErrorIs(t, service.Validate(), domain.ErrInvalidChunkConfig)
	})

	t.Run("cloud provider without key", func(t *testing.T) {
		store := memory.NewConfigStoreWith(map[string]any{"embedding.provider": "gemini"})
		service := NewSettingsService(store, nil)
		assert.ErrorIs(t, service.Validate(), domain.ErrInvalidInput)
	})

	t.Run("unknown reader", func(t *testing.T) {
		store := memory.NewConfigStoreWith(map[string]any{"reader.backend": "ocr"})
		service := NewSettingsService(store, nil)
		assert.ErrorIs(t, service.Validate(), domain.ErrInvalidInput)
	})
}

func TestSettingsService_Keys(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	keys := service.Keys()

	assert.IsNonDecreasing(t, keys)
	assert.Contains(t, keys, "chunking.size")
	assert.Contains(t, keys, "ingest.batch_timeout")

	// Returned slice is a copy.
	keys[0] = "mutated"
	assert.NotEqual(t, "mutated", service.Keys()[0])
}

func TestSettingsService_ValidateEmbeddingConfig(t *testing.T) {
	t.Run("without validator", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.NoError(t, service.ValidateEmbeddingConfig())
	})

	t.Run("passes current settings", func(t *testing.T) {
		validator := &mockEmbeddingValidator{err: errors.New("unreachable")}
		service := NewSettingsService(memory.NewConfigStore(), validator)

		err := service.ValidateEmbeddingConfig()

		require.Error(t, err)
		require.NotNil(t, validator.called)
		assert.Equal(t, domain.EmbeddingProviderHash, validator.called.Provider)
	})
}
