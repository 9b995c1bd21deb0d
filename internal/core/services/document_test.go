package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

func TestDocumentService_List(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()
	_, err := f.service.IngestFiles(ctx, []domain.IngestInput{
		input("zeta.pdf", solarText),
		input("alpha.pdf", oceanText),
	})
	require.NoError(t, err)

	docs, err := NewDocumentService(f.store, f.embedder).List(ctx)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "alpha.pdf", docs[0].DocumentID)
	assert.Equal(t, 2, docs[0].PageCount)
	assert.Equal(t, "zeta.pdf", docs[1].DocumentID)
	assert.Positive(t, docs[1].ChunkCount)
}

func TestDocumentService_Delete(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()
	report, err := f.service.IngestFiles(ctx, []domain.IngestInput{
		input("keep.pdf", solarText),
		input("drop.pdf", oceanText),
	})
	require.NoError(t, err)
	service := NewDocumentService(f.store, f.embedder)

	removed, err := service.Delete(ctx, "drop.pdf")

	require.NoError(t, err)
	assert.Equal(t, report.Results[1].ChunkCount, removed)

	docs, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "keep.pdf", docs[0].DocumentID)

	status, err := service.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.Results[0].ChunkCount, status.Chunks)
}

func TestDocumentService_Delete_ZeroChunkDocument(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()
	_, err := f.service.IngestFiles(ctx, []domain.IngestInput{input("blank.pdf", " ")})
	require.NoError(t, err)
	service := NewDocumentService(f.store, f.embedder)

	removed, err := service.Delete(ctx, "blank.pdf")

	require.NoError(t, err)
	assert.Zero(t, removed)
	docs, err := service.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentService_Delete_NotFound(t *testing.T) {
	service := NewDocumentService(memory.NewVectorStore(), nil)

	_, err := service.Delete(context.Background(), "missing.pdf")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentService_Delete_EmptyID(t *testing.T) {
	service := NewDocumentService(memory.NewVectorStore(), nil)

	_, err := service.Delete(context.Background(), "  ")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentService_Status(t *testing.T) {
	t.Run("empty store reports embedder dimensions", func(t *testing.T) {
		service := NewDocumentService(memory.NewVectorStore(), &mockEmbeddingService{embedding: make([]float32, 12)})

		status, err := service.Status(context.Background())

		require.NoError(t, err)
		assert.Zero(t, status.Documents)
		assert.Zero(t, status.Chunks)
		assert.Equal(t, 12, status.Dimensions)
		assert.Equal(t, "mock-embed", status.EmbeddingModel)
	})

	t.Run("after ingestion", func(t *testing.T) {
		f := newIngestFixture(t)
		ctx := context.Background()
		report, err := f.service.IngestFiles(ctx, []domain.IngestInput{input("a.pdf", solarText)})
		require.NoError(t, err)

		status, err := NewDocumentService(f.store, f.embedder).Status(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, status.Documents)
		assert.Equal(t, report.Results[0].ChunkCount, status.Chunks)
		assert.Equal(t, 64, status.Dimensions)
		assert.Equal(t, "fnv-hash", status.EmbeddingModel)
	})

	t.Run("without embedder", func(t *testing.T) {
		status, err := NewDocumentService(memory.NewVectorStore(), nil).Status(context.Background())

		require.NoError(t, err)
		assert.Empty(t, status.EmbeddingModel)
	})
}
