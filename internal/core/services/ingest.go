package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-pdf/internal/logger"
)

// Ensure IngestionCoordinator implements the interface.
var _ driving.IngestService = (*IngestionCoordinator)(nil)

// IngestionCoordinator drives documents through Read → Chunk → Embed → Store.
//
// A document's previous chunks are removed before its new chunks are written,
// so re-ingesting a shorter file leaves no stale tail. Ingestions of the same
// document id are serialised; different documents run concurrently up to the
// configured limit.
type IngestionCoordinator struct {
	reader   driven.DocumentReader
	chunker  driven.Chunker
	embedder driven.EmbeddingService
	store    driven.Store

	concurrency  int
	batchTimeout time.Duration
	now          func() time.Time

	// Per-document locks
	mu    sync.Mutex
	locks map[string]*docLock
}

type docLock struct {
	mu   sync.Mutex
	refs int
}

// IngestOption configures an IngestionCoordinator.
type IngestOption func(*IngestionCoordinator)

// WithConcurrency sets how many documents are processed at once.
// Values below one are ignored.
func WithConcurrency(n int) IngestOption {
	return func(c *IngestionCoordinator) {
		if n >= 1 {
			c.concurrency = n
		}
	}
}

// WithBatchTimeout bounds a whole batch. Zero disables the bound.
func WithBatchTimeout(d time.Duration) IngestOption {
	return func(c *IngestionCoordinator) {
		if d >= 0 {
			c.batchTimeout = d
		}
	}
}

// WithClock overrides the time source used for ingested_at.
func WithClock(now func() time.Time) IngestOption {
	return func(c *IngestionCoordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewIngestionCoordinator creates a coordinator over the given components.
func NewIngestionCoordinator(
	reader driven.DocumentReader,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	store driven.Store,
	opts ...IngestOption,
) *IngestionCoordinator {
	c := &IngestionCoordinator{
		reader:      reader,
		chunker:     chunker,
		embedder:    embedder,
		store:       store,
		concurrency: 1,
		now:         time.Now,
		locks:       make(map[string]*docLock),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IngestFiles processes the given payloads and reports one result per input.
func (c *IngestionCoordinator) IngestFiles(
	ctx context.Context, inputs []domain.IngestInput,
) (*domain.BatchIngestReport, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no documents supplied", domain.ErrInvalidInput)
	}

	logger.Section("Ingestion")
	logger.Debug("Batch: %d document(s), concurrency=%d, timeout=%s",
		len(inputs), c.concurrency, c.batchTimeout)

	batchCtx := ctx
	if c.batchTimeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, c.batchTimeout)
		defer cancel()
	}

	results := make([]domain.IngestResult, len(inputs))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			results[i] = c.ingestOne(ctx, batchCtx, in)
			return nil
		})
	}
	_ = g.Wait()

	report := domain.NewBatchIngestReport(results)
	logger.Info("%s", report.Message)
	return report, nil
}

// IngestPaths reads each file from disk and ingests it. Files that cannot be
// read are reported as failed without aborting the batch.
func (c *IngestionCoordinator) IngestPaths(ctx context.Context, paths []string) (*domain.BatchIngestReport, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files supplied", domain.ErrInvalidInput)
	}

	inputs := make([]domain.IngestInput, len(paths))
	for i, path := range paths {
		inputs[i] = domain.IngestInput{Name: path}
		data, err := os.ReadFile(path)
		if err != nil {
			inputs[i].ReadErr = fmt.Errorf("%w: %w", domain.ErrUnreadableDocument, err)
			continue
		}
		inputs[i].Data = data
	}
	return c.IngestFiles(ctx, inputs)
}

// IngestDirectory ingests every file directly inside dir whose name ends in
// .pdf (case-insensitive), in lexical order. Subdirectories are not visited.
func (c *IngestionCoordinator) IngestDirectory(ctx context.Context, dir string) (*domain.BatchIngestReport, error) {
	paths, err := ListPDFs(dir)
	if err != nil {
		return nil, err
	}
	logger.Debug("Directory %s: %d PDF file(s)", dir, len(paths))
	return c.IngestPaths(ctx, paths)
}

// ListPDFs returns the sorted paths of the PDF files directly inside dir.
func ListPDFs(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: no PDF files found in %s: %w", domain.ErrInvalidInput, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: no PDF files found in %s: not a directory", domain.ErrInvalidInput, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", domain.ErrInvalidInput, dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !domain.IsPDFName(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no PDF files found in %s", domain.ErrInvalidInput, dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// ingestOne runs a single document to completion or failure.
// parent is the caller's context; batchCtx additionally carries the batch deadline.
func (c *IngestionCoordinator) ingestOne(parent, batchCtx context.Context, in domain.IngestInput) domain.IngestResult {
	id := in.ID()

	fail := func(stage domain.IngestStage, err error) domain.IngestResult {
		// Only a failure caused by the batch deadline counts as a timeout; a
		// document that was unreadable anyway keeps its own error.
		if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
			err = fmt.Errorf("%w: %w", domain.ErrBatchTimeout, err)
		}
		logger.Warn("%s: failed at %s: %v", displayName(in), stage, err)
		return domain.FailedResult(in, stage, err)
	}

	if in.ReadErr != nil {
		return fail(domain.StageReceived, in.ReadErr)
	}
	if id == "" {
		return fail(domain.StageReceived, fmt.Errorf("%w: document has no name or id", domain.ErrInvalidInput))
	}
	if in.Name != "" && !domain.IsPDFName(in.Name) {
		return fail(domain.StageReceived, fmt.Errorf("%w: %s is not a .pdf file", domain.ErrInvalidInput, in.Name))
	}

	unlock := c.lock(id)
	defer unlock()

	if err := batchCtx.Err(); err != nil {
		return fail(domain.StageReceived, err)
	}

	logger.Debug("%s: reading %d bytes with %s", id, len(in.Data), c.reader.Name())
	pages, err := c.reader.Read(batchCtx, in.Data)
	if err != nil {
		return fail(domain.StageRead, err)
	}

	chunks, err := c.chunker.Chunk(id, pages)
	if err != nil {
		return fail(domain.StageChunked, err)
	}
	logger.Debug("%s: %d page(s), %d chunk(s)", id, len(pages), len(chunks))

	records, err := c.embed(batchCtx, chunks)
	if err != nil {
		return fail(domain.StageEmbedded, err)
	}

	// Nothing is written once the batch has run out of time.
	if err := batchCtx.Err(); err != nil {
		return fail(domain.StageEmbedded, err)
	}
	if err := c.replace(batchCtx, id, records); err != nil {
		return fail(domain.StageStored, err)
	}

	doc := domain.Document{
		ID:         id,
		Path:       in.Name,
		Size:       int64(len(in.Data)),
		PageCount:  len(pages),
		IngestedAt: c.now(),
	}
	if err := c.store.SaveDocument(batchCtx, doc, len(records)); err != nil {
		c.purge(batchCtx, id)
		return fail(domain.StageStored, err)
	}

	if len(records) == 0 {
		logger.Info("%s: no extractable text, stored 0 chunks", id)
	}

	return domain.IngestResult{
		DocumentID: id,
		Name:       in.Name,
		Status:     domain.IngestSucceeded,
		ChunkCount: len(records),
		PageCount:  len(pages),
		Stage:      domain.StageStored,
	}
}

func (c *IngestionCoordinator) embed(ctx context.Context, chunks []domain.Chunk) ([]domain.StoredRecord, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	vectors, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbeddingUnavailable, len(vectors), len(chunks))
	}

	records := make([]domain.StoredRecord, len(chunks))
	for i, ch := range chunks {
		records[i] = domain.NewStoredRecord(ch, vectors[i])
	}
	return records, nil
}

// replace swaps a document's chunk set.
func (c *IngestionCoordinator) replace(ctx context.Context, id string, records []domain.StoredRecord) error {
	removed, err := c.store.DeleteByDocument(ctx, id)
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.Debug("%s: replaced %d previous chunk(s)", id, removed)
	}
	if err := c.store.Upsert(ctx, records); err != nil {
		c.purge(ctx, id)
		return err
	}
	return nil
}

// purge removes a document entirely after a write failed part way, so the
// catalog never lists chunks the vector store no longer holds. It runs even
// when ctx has already expired.
func (c *IngestionCoordinator) purge(ctx context.Context, id string) {
	ctx = context.WithoutCancel(ctx)
	if _, err := c.store.DeleteByDocument(ctx, id); err != nil {
		logger.Warn("%s: removing partial chunks: %v", id, err)
	}
	if err := c.store.DeleteDocument(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("%s: removing catalog entry: %v", id, err)
	}
}

// lock serialises work on one document id and returns the release func.
func (c *IngestionCoordinator) lock(id string) func() {
	c.mu.Lock()
	l, ok := c.locks[id]
	if !ok {
		l = &docLock{}
		c.locks[id] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, id)
		}
		c.mu.Unlock()
	}
}

func displayName(in domain.IngestInput) string {
	if in.Name != "" {
		return in.Name
	}
	return in.ID()
}

// IsBatchTimeout reports whether a result failed because its batch ran out of time.
func IsBatchTimeout(r domain.IngestResult) bool {
	return errors.Is(r.Err, domain.ErrBatchTimeout)
}
