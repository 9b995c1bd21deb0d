package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-pdf/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService exposes the document catalog.
type DocumentService struct {
	store    driven.Store
	embedder driven.EmbeddingService
}

// NewDocumentService creates a new document service.
// The embedder is optional and only used to report the model in Status.
func NewDocumentService(store driven.Store, embedder driven.EmbeddingService) *DocumentService {
	return &DocumentService{
		store:    store,
		embedder: embedder,
	}
}

// List returns every ingested document ordered by id.
func (s *DocumentService) List(ctx context.Context) ([]domain.DocumentSummary, error) {
	return s.store.ListDocuments(ctx)
}

// Delete removes a document's chunks and catalog entry.
// It returns the number of chunks removed.
func (s *DocumentService) Delete(ctx context.Context, documentID string) (int, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return 0, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return 0, err
	}
	catalogued := slices.ContainsFunc(docs, func(d domain.DocumentSummary) bool {
		return d.DocumentID == documentID
	})

	removed, err := s.store.DeleteByDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	if !catalogued && removed == 0 {
		return 0, fmt.Errorf("%w: document %s", domain.ErrNotFound, documentID)
	}
	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return removed, err
	}

	logger.Info("Deleted %s (%d chunks)", documentID, removed)
	return removed, nil
}

// Status reports store totals and the active embedding model.
func (s *DocumentService) Status(ctx context.Context) (*driving.Status, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	status := &driving.Status{
		Documents:  stats.Documents,
		Chunks:     stats.Chunks,
		Dimensions: stats.Dimensions,
	}
	if s.embedder != nil {
		status.EmbeddingModel = s.embedder.ModelName()
		if status.Dimensions == 0 {
			status.Dimensions = s.embedder.Dimensions()
		}
	}
	return status, nil
}
