// Package ollama provides an embedding service adapter using a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/embedding"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const provider = "ollama"

// Defaults.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768 // nomic-embed-text

	// MaxBatchSize is the number of inputs sent per /api/embed call.
	MaxBatchSize = 64
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int

	// RateLimit caps requests per second. Zero disables limiting.
	RateLimit float64
}

// EmbeddingService embeds text with a local Ollama model.
type EmbeddingService struct {
	client     *embedding.JSONClient
	model      string
	dimensions int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

// NewEmbeddingService creates an Ollama embedder with defaults filled in.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	return &EmbeddingService{
		client:     embedding.NewJSONClient(provider, cfg.BaseURL, cfg.Timeout, cfg.RateLimit),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed embeds a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts through /api/embed, MaxBatchSize at a time.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out, err := embedding.InBatches(texts, MaxBatchSize, func(batch []string) ([][]float32, error) {
		var resp embedResponse
		if err := s.client.Post(ctx, "/api/embed", embedRequest{Model: s.model, Input: batch}, &resp); err != nil {
			return nil, err
		}
		if resp.Error != "" {
			return nil, embedding.Unavailable(provider, errors.New(resp.Error))
		}
		vectors := make([][]float32, len(resp.Embeddings))
		for i, v := range resp.Embeddings {
			vectors[i] = embedding.ToFloat32(v)
		}
		return vectors, nil
	})
	if err != nil {
		return nil, err
	}
	if err := embedding.CheckVectors(provider, out, len(texts), s.dimensions); err != nil {
		return nil, err
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns the embedding model.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping checks the server via /api/tags without loading the model.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.client.Get(ctx, "/api/tags")
}

// Close is a no-op.
func (s *EmbeddingService) Close() error { return nil }
