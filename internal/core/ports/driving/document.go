package driving

import (
	"context"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

// DocumentService exposes what has been ingested.
type DocumentService interface {
	// List returns every ingested document ordered by id.
	List(ctx context.Context) ([]domain.DocumentSummary, error)

	// Delete removes a document and all of its chunks.
	// Returns domain.ErrNotFound when nothing was stored for the id.
	Delete(ctx context.Context, documentID string) (int, error)

	// Status reports store totals and the active embedding model.
	Status(ctx context.Context) (*Status, error)
}

// Status is a point-in-time view of the pipeline.
type Status struct {
	Documents      int    `json:"documents"`
	Chunks         int    `json:"chunks"`
	Dimensions     int    `json:"dimensions"`
	EmbeddingModel string `json:"embedding_model"`
}
