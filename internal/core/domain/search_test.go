package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestValidateTopK tests the retrieval bounds
func TestValidateTopK(t *testing.T) {
	tests := []struct {
		topK  int
		valid bool
	}{
		{topK: -1, valid: false},
		{topK: 0, valid: false},
		{topK: 1, valid: true},
		{topK: DefaultTopK, valid: true},
		{topK: MaxTopK, valid: true},
		{topK: MaxTopK + 1, valid: false},
	}

	for _, tt := range tests {
		err := ValidateTopK(tt.topK)
		if tt.valid {
			assert.NoError(t, err, "top_k=%d", tt.topK)
		} else {
			assert.ErrorIs(t, err, ErrInvalidQueryParameter, "top_k=%d", tt.topK)
		}
	}
}

// TestSearchResultFromScored tests hit conversion
func TestSearchResultFromScored(t *testing.T) {
	hit := ScoredRecord{
		Record: StoredRecord{
			ChunkID: "c-1",
			Vector:  []float32{1, 0},
			Text:    "hello",
			Metadata: RecordMetadata{
				DocumentID: "a.pdf",
				Ordinal:    3,
				PageNumber: 2,
			},
		},
		Score: 0.75,
	}

	res := SearchResultFromScored(hit)

	assert.Equal(t, "c-1", res.ChunkID)
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, "a.pdf", res.DocumentID)
	assert.Equal(t, 2, res.PageNumber)
	assert.Equal(t, 3, res.Ordinal)
	assert.InDelta(t, 0.75, res.Score, 1e-9)
}
