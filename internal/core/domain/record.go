package domain

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// RecordMetadata is the metadata persisted alongside each vector.
type RecordMetadata struct {
	DocumentID string
	Ordinal    int
	PageNumber int
}

// StoredRecord is the persisted tuple owned by the vector store.
// An upsert always replaces the full tuple.
type StoredRecord struct {
	// ChunkID is the primary key.
	ChunkID string

	// Vector is the embedding of Text.
	Vector []float32

	// Text is the chunk text.
	Text string

	// Metadata locates the chunk within its document.
	Metadata RecordMetadata
}

// NewStoredRecord builds the record for an embedded chunk.
func NewStoredRecord(c Chunk, vector []float32) StoredRecord {
	return StoredRecord{
		ChunkID: c.ID,
		Vector:  vector,
		Text:    c.Text,
		Metadata: RecordMetadata{
			DocumentID: c.DocumentID,
			Ordinal:    c.Ordinal,
			PageNumber: c.PageNumber,
		},
	}
}

// Validate checks the record can be stored next to vectors of the given size.
// A dimensions value of zero skips the size check.
func (r StoredRecord) Validate(dimensions int) error {
	if r.ChunkID == "" {
		return fmt.Errorf("%w: record has no chunk id", ErrInvalidInput)
	}
	if len(r.Vector) == 0 {
		return fmt.Errorf("%w: record %s has no vector", ErrInvalidInput, r.ChunkID)
	}
	if dimensions > 0 && len(r.Vector) != dimensions {
		return fmt.Errorf("%w: record %s has %d dimensions, store holds %d",
			ErrDimensionMismatch, r.ChunkID, len(r.Vector), dimensions)
	}
	return nil
}

// ScoredRecord is a query hit. Score is cosine similarity, higher is closer.
type ScoredRecord struct {
	Record StoredRecord
	Score  float64
}

// CompareScored orders hits best-first with chunk_id ascending on equal scores.
func CompareScored(a, b ScoredRecord) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.Record.ChunkID, b.Record.ChunkID)
}

// RankScored sorts hits in place and truncates to topK.
func RankScored(hits []ScoredRecord, topK int) []ScoredRecord {
	slices.SortFunc(hits, CompareScored)
	if topK >= 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// DocumentSummary describes one document held by the vector store.
type DocumentSummary struct {
	DocumentID string    `json:"document_id"`
	Path       string    `json:"path,omitempty"`
	Size       int64     `json:"size"`
	PageCount  int       `json:"page_count"`
	ChunkCount int       `json:"chunk_count"`
	IngestedAt time.Time `json:"ingested_at"`
}

// StoreStats reports vector store totals.
type StoreStats struct {
	Documents  int `json:"documents"`
	Chunks     int `json:"chunks"`
	Dimensions int `json:"dimensions"`
}
