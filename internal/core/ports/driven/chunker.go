package driven

import "github.com/custodia-labs/sercha-pdf/internal/core/domain"

// Chunker splits a document's pages into overlapping windows.
// It never blocks and has no side effects.
type Chunker interface {
	// Chunk returns the ordered chunk sequence for one document.
	// A document with no text yields an empty slice and no error.
	Chunk(documentID string, pages []domain.Page) ([]domain.Chunk, error)

	// Config returns the window configuration in use.
	Config() domain.ChunkConfig
}
