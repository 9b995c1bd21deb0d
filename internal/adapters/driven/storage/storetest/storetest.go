// Package storetest runs the behaviour every driven.Store backend must share.
// Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
)

// Factory returns a fresh, empty store. The store is closed by the suite.
type Factory func(t *testing.T) driven.Store

// Record builds a stored record for document docID.
func Record(docID string, ordinal int, vector ...float32) domain.StoredRecord {
	return domain.StoredRecord{
		ChunkID: fmt.Sprintf("%s-%03d", docID, ordinal),
		Vector:  vector,
		Text:    fmt.Sprintf("%s chunk %d", docID, ordinal),
		Metadata: domain.RecordMetadata{
			DocumentID: docID,
			Ordinal:    ordinal,
			PageNumber: ordinal + 1,
		},
	}
}

// Run executes the shared conformance suite against newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	open := func(t *testing.T) driven.Store {
		t.Helper()
		s := newStore(t)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	t.Run("QueryEmptyStore", func(t *testing.T) {
		s := open(t)

		hits, err := s.Query(context.Background(), []float32{1, 0, 0}, 5)

		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("QueryRanksByCosine", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Upsert(ctx, []domain.StoredRecord{
			Record("a", 0, 1, 0, 0),
			Record("a", 1, 0.8, 0.6, 0),
			Record("b", 0, 0, 1, 0),
			Record("b", 1, -1, 0, 0),
		}))

		hits, err := s.Query(ctx, []float32{1, 0, 0}, 3)

		require.NoError(t, err)
		require.Len(t, hits, 3)
		assert.Equal(t, "a-000", hits[0].Record.ChunkID)
		assert.InDelta(t, 1.0, hits[0].Score, 1e-5)
		assert.Equal(t, "a-001", hits[1].Record.ChunkID)
		assert.InDelta(t, 0.8, hits[1].Score, 1e-5)
		assert.Equal(t, "b-000", hits[2].Record.ChunkID)
		assert.InDelta(t, 0.0, hits[2].Score, 1e-5)

		for i := 1; i < len(hits); i++ {
			assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
		}
	})

	t.Run("QueryReturnsFullRecord", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		want := Record("doc.pdf", 7, 0.1, 0.2, 0.3)
		require.NoError(t, s.Upsert(ctx, []domain.StoredRecord{want}))

		hits, err := s.Query(ctx, []float32{0.1, 0.2, 0.3}, 1)

		require.NoError(t, err)
		require.Len(t, hits, 1)
		got := hits[0].Record
		assert.Equal(t, want.ChunkID, got.ChunkID)
		assert.Equal(t, want.Text, got.Text)
		assert.Equal(t, want.Metadata, got.Metadata)
		assert.InDeltaSlice(t, want.Vector, got.Vector, 1e-6)
	})

	t.Run("QueryTieBreaksByChunkID", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Upsert(ctx, []domain.StoredRecord{
			Record("c", 0, 0, 1),
			Record("a", 0, 0, 1),
			Record("b", 0, 0, 1),
		}))

		hits, err := s.Query(ctx, []float32{0, 1}, 2)

		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "a-000", hits[0].Record.ChunkID)
		assert.Equal(t, "b-000", hits[1].Record.ChunkID)
	})

	t.Run("QueryFewerThanTopK", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Upsert(ctx, []domain.StoredRecord{Record("a", 0, 1, 1)}))

		hits, err := s.Query(ctx, []float32{1, 1}, domain.MaxTopK)

		require.NoError(t, err)
		assert.Len(t, hits, 1)
	})

	t.Run("QueryRejectsTopK", func(t *testing.T) {
		s := open(t)
		for _, k := range []int{0, -1, domain.MaxTopK + 1} {
			_, err := s.Query(context.Background(), []float32{1}, k)
			assert.ErrorIs(t, err, domain.ErrInvalidQueryParameter, "top_k %d", k)
		}
	})

	t.Run("UpsertReplacesByChunkID", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		first := Record("a", 0, 1, 0)
		require.NoError(t, s.Upsert(ctx, []domain.StoredRecord{first}))

		second := first
		second.Text = "replaced"
		second.Vector = []float32{0, 1}
		require.NoError(t, s.Upsert(ctx, []domain.StoredRecord{second}))

		hits, err := s.Query(ctx, []float32{0, 1}, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "replaced", hits[0].Record.Text)
		assert.InDelta(t, 1.0, hits[0].Score, 1e-5)

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Chunks)
	})

	t.Run("UpsertEmptyBatch", func(t *testing.T) {
		s := open(t)
		assert.NoError(t, s.Upsert(context.Background(), nil))
	})

	t.Run("DimensionIsPinned", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Upsert(ctx, []domain.StoredRecord{Record("a", 0, 1, 0, 0)}))

		err := s.Upsert(ctx, []domain.StoredRecord{Record("b", 0, 1, 0)})
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

		_, err = s.Query(ctx, []float32{1, 0}, 1)
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Dimensions)
		assert.Equal(t, 1, stats.Chunks)
	})

	t.Run("QueryEmptiedStoreIgnoresDimension", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Upsert(ctx, []domain.StoredRecord{Record("a", 0, 1, 0, 0)}))
		_, err := s.DeleteByDocument(ctx, "a")
		require.NoError(t, err)

		hits, err := s.Query(ctx, []float32{1, 0}, 5)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("UpsertRejectsInvalidRecords", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		err := s.Upsert(ctx, []domain.StoredRecord{{ChunkID: "", Vector: []float32{1}}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		err = s.Upsert(ctx, []domain.StoredRecord{{ChunkID: "x"}})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("DeleteByDocument", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Upsert(ctx, []domain.StoredRecord{
			Record("a", 0, 1, 0),
			Record("a", 1, 1, 0.1),
			Record("b", 0, 1, 0.2),
		}))

		n, err := s.DeleteByDocument(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		hits, err := s.Query(ctx, []float32{1, 0}, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, "b", hits[0].Record.Metadata.DocumentID)

		n, err = s.DeleteByDocument(ctx, "missing")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("Catalog", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		require.NoError(t, s.SaveDocument(ctx, domain.Document{
			ID: "b.pdf", Path: "/tmp/b.pdf", Size: 2048, PageCount: 3, IngestedAt: at,
		}, 4))
		require.NoError(t, s.SaveDocument(ctx, domain.Document{
			ID: "a.pdf", Path: "/tmp/a.pdf", Size: 1024, PageCount: 1, IngestedAt: at,
		}, 1))

		docs, err := s.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "a.pdf", docs[0].DocumentID)
		assert.Equal(t, "b.pdf", docs[1].DocumentID)
		assert.Equal(t, "/tmp/b.pdf", docs[1].Path)
		assert.Equal(t, int64(2048), docs[1].Size)
		assert.Equal(t, 3, docs[1].PageCount)
		assert.Equal(t, 4, docs[1].ChunkCount)
		assert.True(t, at.Equal(docs[1].IngestedAt), "ingested_at %v", docs[1].IngestedAt)

		// Saving again replaces the entry.
		require.NoError(t, s.SaveDocument(ctx, domain.Document{ID: "a.pdf", PageCount: 9, IngestedAt: at}, 2))
		docs, err = s.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, 9, docs[0].PageCount)
		assert.Equal(t, 2, docs[0].ChunkCount)

		require.NoError(t, s.DeleteDocument(ctx, "a.pdf"))
		require.NoError(t, s.DeleteDocument(ctx, "never-existed"))

		docs, err = s.ListDocuments(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "b.pdf", docs[0].DocumentID)
	})

	t.Run("ListDocumentsEmpty", func(t *testing.T) {
		s := open(t)

		docs, err := s.ListDocuments(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, docs)
		assert.Empty(t, docs)
	})

	t.Run("Stats", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.StoreStats{}, stats)

		require.NoError(t, s.Upsert(ctx, []domain.StoredRecord{
			Record("a", 0, 1, 0),
			Record("a", 1, 0, 1),
		}))
		require.NoError(t, s.SaveDocument(ctx, domain.Document{ID: "a"}, 2))

		stats, err = s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.StoreStats{Documents: 1, Chunks: 2, Dimensions: 2}, stats)
	})
}
