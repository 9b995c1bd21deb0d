package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-pdf/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService answers semantic queries against the vector store.
type SearchService struct {
	embedder    driven.EmbeddingService
	store       driven.VectorStore
	defaultTopK int
}

// NewSearchService creates a new search service. A defaultTopK outside
// [1, domain.MaxTopK] falls back to domain.DefaultTopK.
func NewSearchService(embedder driven.EmbeddingService, store driven.VectorStore, defaultTopK int) *SearchService {
	if domain.ValidateTopK(defaultTopK) != nil {
		defaultTopK = domain.DefaultTopK
	}
	return &SearchService{
		embedder:    embedder,
		store:       store,
		defaultTopK: defaultTopK,
	}
}

// Search embeds the query and returns the closest chunks, best-first.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidQueryParameter)
	}

	topK := s.defaultTopK
	if opts.TopK != nil {
		topK = *opts.TopK
	}
	if err := domain.ValidateTopK(topK); err != nil {
		return nil, err
	}
	logger.Debug("Top K: %d", topK)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(vector))

	hits, err := s.store.Query(ctx, vector, topK)
	if err != nil {
		logger.Warn("Vector query failed: %v", err)
		return nil, fmt.Errorf("query store: %w", err)
	}

	results := make([]domain.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = domain.SearchResultFromScored(hit)
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}
