package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantModel   string
		wantDims    int
		wantErr     bool
		errContains string
	}{
		{
			name:        "nil settings",
			settings:    nil,
			wantErr:     true,
			errContains: "no embedding settings",
		},
		{
			name:      "hash provider uses configured dimensions",
			settings:  &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHash, Dimensions: 64},
			wantModel: "fnv-hash",
			wantDims:  64,
		},
		{
			name:      "hash provider default dimensions",
			settings:  &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHash},
			wantModel: "fnv-hash",
			wantDims:  384,
		},
		{
			name: "ollama known model",
			settings: &domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "mxbai-embed-large",
			},
			wantModel: "mxbai-embed-large",
			wantDims:  1024,
		},
		{
			name: "ollama unknown model falls back",
			settings: &domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderOllama,
				Model:    "custom-model",
			},
			wantModel: "custom-model",
			wantDims:  768,
		},
		{
			name: "openai provider",
			settings: &domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-large",
			},
			wantModel: "text-embedding-3-large",
			wantDims:  3072,
		},
		{
			name:        "openai without key",
			settings:    &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOpenAI},
			wantErr:     true,
			errContains: "requires embedding.api_key",
		},
		{
			name:        "gemini without key",
			settings:    &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderGemini},
			wantErr:     true,
			errContains: "requires embedding.api_key",
		},
		{
			name:        "unknown provider",
			settings:    &domain.EmbeddingSettings{Provider: "anthropic", APIKey: "k"},
			wantErr:     true,
			errContains: `unsupported embedding provider "anthropic"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, svc)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, svc)
			assert.Equal(t, tt.wantModel, svc.ModelName())
			assert.Equal(t, tt.wantDims, svc.Dimensions())
			assert.NoError(t, svc.Close())
		})
	}
}

func TestDimensionsFor(t *testing.T) {
	assert.Equal(t, 10, dimensionsFor(&domain.EmbeddingSettings{Dimensions: 10, Model: "all-minilm"}, 5))
	assert.Equal(t, 384, dimensionsFor(&domain.EmbeddingSettings{Model: "all-minilm"}, 5))
	assert.Equal(t, 5, dimensionsFor(&domain.EmbeddingSettings{Model: "mystery"}, 5))
}
