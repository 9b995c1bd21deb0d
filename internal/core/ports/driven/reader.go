package driven

import (
	"context"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

// DocumentReader extracts page text from a document payload.
// Implementations are pure: the same bytes always yield the same pages.
type DocumentReader interface {
	// Read returns one Page per PDF page, 1-indexed and in document order.
	// Pages without extractable text are kept with empty Text.
	// Fails with domain.ErrUnreadableDocument when data is not a parseable PDF.
	Read(ctx context.Context, data []byte) ([]domain.Page, error)

	// Name identifies the extraction backend for logs.
	Name() string
}
