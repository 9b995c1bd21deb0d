package driving

import (
	"context"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

// IngestService runs documents through Read → Chunk → Embed → Store.
//
// Per-document failures are reported in the BatchIngestReport and never abort
// the batch. The returned error is reserved for problems that prevent the
// batch from starting at all.
type IngestService interface {
	// IngestFiles processes the given payloads. The report holds exactly one
	// result per input, in input order.
	IngestFiles(ctx context.Context, inputs []domain.IngestInput) (*domain.BatchIngestReport, error)

	// IngestPaths reads and processes files from disk.
	IngestPaths(ctx context.Context, paths []string) (*domain.BatchIngestReport, error)

	// IngestDirectory processes every *.pdf directly inside dir (non-recursive).
	IngestDirectory(ctx context.Context, dir string) (*domain.BatchIngestReport, error)
}
