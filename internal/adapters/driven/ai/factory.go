// Package ai turns embedding settings into a concrete embedding adapter.
package ai

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/embedding/gemini"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/embedding/hash"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
)

// constructor builds one provider's adapter. dims is already resolved.
type constructor func(s *domain.EmbeddingSettings, dims int) (driven.EmbeddingService, error)

// provider pairs a constructor with the vector size used when neither the
// settings nor the known-model table give one. Zero lets the adapter decide.
type provider struct {
	build       constructor
	defaultDims int
}

var providers = map[domain.EmbeddingProvider]provider{
	domain.EmbeddingProviderHash: {
		defaultDims: hash.DefaultDimensions,
		build: func(_ *domain.EmbeddingSettings, dims int) (driven.EmbeddingService, error) {
			return hash.NewEmbeddingService(dims), nil
		},
	},
	domain.EmbeddingProviderOllama: {
		defaultDims: ollama.DefaultDimensions,
		build: func(s *domain.EmbeddingSettings, dims int) (driven.EmbeddingService, error) {
			return ollama.NewEmbeddingService(ollama.Config{
				BaseURL: s.BaseURL, Model: s.Model, Dimensions: dims, RateLimit: s.RateLimit,
			}), nil
		},
	},
	domain.EmbeddingProviderOpenAI: {
		build: func(s *domain.EmbeddingSettings, dims int) (driven.EmbeddingService, error) {
			return openai.NewEmbeddingService(openai.Config{
				APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model, Dimensions: dims, RateLimit: s.RateLimit,
			})
		},
	},
	domain.EmbeddingProviderGemini: {
		defaultDims: gemini.DefaultDimensions,
		build: func(s *domain.EmbeddingSettings, dims int) (driven.EmbeddingService, error) {
			return gemini.NewEmbeddingService(context.Background(), gemini.Config{
				APIKey: s.APIKey, Model: s.Model, Dimensions: dims, RateLimit: s.RateLimit,
			})
		},
	},
}

// CreateEmbeddingService builds the adapter named by settings.Provider.
// Failures wrap domain.ErrEmbeddingUnavailable.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrEmbeddingUnavailable)
	}
	p, ok := providers[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrEmbeddingUnavailable, settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: %s requires embedding.api_key", domain.ErrEmbeddingUnavailable, settings.Provider)
	}

	svc, err := p.build(settings, dimensionsFor(settings, p.defaultDims))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrEmbeddingUnavailable, settings.Provider, err)
	}
	return svc, nil
}

// dimensionsFor prefers the explicit setting, then the known-model table.
func dimensionsFor(settings *domain.EmbeddingSettings, fallback int) int {
	if settings.Dimensions > 0 {
		return settings.Dimensions
	}
	if d := domain.EmbeddingDimensions()[settings.Model]; d > 0 {
		return d
	}
	return fallback
}
