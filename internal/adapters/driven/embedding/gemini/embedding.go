// Package gemini provides an embedding service adapter for Google's Gemini API.
package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/embedding"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const provider = "gemini"

// Default configuration values.
const (
	DefaultModel      = "text-embedding-004"
	DefaultDimensions = 768

	// MaxBatchSize is the BatchEmbedContents request limit.
	MaxBatchSize = 100
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// Model is the embedding model (default: text-embedding-004).
	Model string

	// Dimensions is the expected vector size.
	Dimensions int

	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit float64

	// Options are passed to the client, e.g. option.WithEndpoint in tests.
	Options []option.ClientOption
}

// EmbeddingService generates embeddings using the Gemini API.
type EmbeddingService struct {
	client     *genai.Client
	model      *genai.EmbeddingModel
	limiter    *embedding.RateLimiter
	modelName  string
	dimensions int
}

// NewEmbeddingService creates a Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	opts := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, cfg.Options...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &EmbeddingService{
		client:     client,
		model:      client.EmbeddingModel(cfg.Model),
		limiter:    embedding.NewRateLimiter(cfg.RateLimit),
		modelName:  cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, embedding.Unavailable(provider, err)
	}

	resp, err := s.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, embedding.Unavailable(provider, err)
	}
	if resp.Embedding == nil {
		return nil, embedding.Unavailable(provider, fmt.Errorf("empty embedding response"))
	}

	v := toFloat32(resp.Embedding.Values)
	if err := embedding.CheckVectors(provider, [][]float32{v}, 1, s.dimensions); err != nil {
		return nil, err
	}
	return v, nil
}

// EmbedBatch generates embeddings for multiple texts with BatchEmbedContents.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(texts))

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, embedding.Unavailable(provider, err)
		}

		batch := s.model.NewBatch()
		for _, text := range texts[start:end] {
			batch.AddContent(genai.Text(text))
		}

		resp, err := s.model.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, embedding.Unavailable(provider, err)
		}
		for _, e := range resp.Embeddings {
			if e == nil {
				out = append(out, nil)
				continue
			}
			out = append(out, toFloat32(e.Values))
		}
	}

	if err := embedding.CheckVectors(provider, out, len(texts), s.dimensions); err != nil {
		return nil, err
	}
	return out, nil
}

func toFloat32[T float32 | float64](values []T) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.modelName
}

// Ping embeds a short fixed text. Gemini has no cheaper authenticated endpoint
// in this client.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.model.EmbedContent(ctx, genai.Text("ping"))
	if err != nil {
		return embedding.Unavailable(provider, fmt.Errorf("ping failed: %w", err))
	}
	return nil
}

// Close releases the underlying gRPC client.
func (s *EmbeddingService) Close() error {
	return s.client.Close()
}
