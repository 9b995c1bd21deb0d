package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/vectorstore/chromem"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-pdf/internal/chunker"
	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pdf/internal/core/services"
	"github.com/custodia-labs/sercha-pdf/internal/logger"
	"github.com/custodia-labs/sercha-pdf/internal/normalisers/pdf"
	"github.com/custodia-labs/sercha-pdf/internal/telemetry"
)

// chromemDir is the chromem database directory inside the data dir.
const chromemDir = "chromem"

// buildPipeline assembles reader, chunker, embedder and store from settings
// and wraps the embedder, store and services with metrics and tracing.
func buildPipeline(_ context.Context, settings *domain.AppSettings) (*cli.Pipeline, error) {
	extractor, err := pdf.NewExtractor(settings.Reader.Backend)
	if err != nil {
		return nil, err
	}
	reader := pdf.NewWithExtractor(extractor)

	ch, err := chunker.New(chunker.WithConfig(settings.Chunking))
	if err != nil {
		return nil, err
	}

	embedder, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, err
	}

	store, err := openStore(settings.Store)
	if err != nil {
		embedder.Close()
		return nil, err
	}

	logger.Debug("pipeline: reader=%s chunk=%d/%d embedder=%s store=%s",
		reader.Name(), settings.Chunking.Size, settings.Chunking.Overlap,
		embedder.ModelName(), settings.Store.Backend)

	metrics := telemetry.NewMetrics()
	tracedEmbedder := telemetry.WrapEmbedder(embedder, metrics)
	tracedStore := telemetry.WrapStore(store, metrics)

	ingest := services.NewIngestionCoordinator(reader, ch, tracedEmbedder, tracedStore,
		services.WithConcurrency(settings.Ingest.Concurrency),
		services.WithBatchTimeout(settings.Ingest.BatchTimeout),
	)
	search := services.NewSearchService(tracedEmbedder, tracedStore, settings.Search.DefaultTopK)

	return &cli.Pipeline{
		Search:   telemetry.WrapSearchService(search, metrics),
		Ingest:   telemetry.WrapIngestService(ingest, metrics),
		Document: services.NewDocumentService(tracedStore, tracedEmbedder),
		Metrics:  metrics.Handler(),
		Close: func() error {
			return errors.Join(tracedEmbedder.Close(), tracedStore.Close())
		},
	}, nil
}

// openStore opens the configured store backend.
func openStore(s domain.StoreSettings) (driven.Store, error) {
	switch s.Backend {
	case domain.StoreBackendMemory:
		return memory.NewVectorStore(), nil

	case domain.StoreBackendChromem:
		dir, err := dataDir(s)
		if err != nil {
			return nil, err
		}
		store, err := chromem.NewStore(filepath.Join(dir, chromemDir))
		if err != nil {
			return nil, err
		}
		return store, nil

	case domain.StoreBackendSQLite, "":
		dir, err := dataDir(s)
		if err != nil {
			return nil, err
		}
		store, err := sqlite.NewStore(dir)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, s.Backend)
	}
}

// dataDir returns the configured data directory, or ~/.sercha-pdf/data.
func dataDir(s domain.StoreSettings) (string, error) {
	if s.DataDir != "" {
		return s.DataDir, nil
	}
	base, err := file.DefaultDir()
	if err != nil {
		return "", fmt.Errorf("%w: resolving data directory: %w", domain.ErrStoreUnavailable, err)
	}
	return filepath.Join(base, "data"), nil
}
