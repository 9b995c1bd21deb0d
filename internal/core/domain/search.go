package domain

import "fmt"

// Retrieval bounds.
const (
	// DefaultTopK is used when a caller does not request a result count.
	DefaultTopK = 5

	// MaxTopK is the largest result count a query may request.
	MaxTopK = 100
)

// SearchOptions configures a search query.
type SearchOptions struct {
	// TopK is the maximum number of results. Nil means the service default;
	// any explicit value, zero included, must lie in 1..MaxTopK.
	TopK *int
}

// WithTopK returns options requesting exactly k results.
func WithTopK(k int) SearchOptions {
	return SearchOptions{TopK: &k}
}

// SearchResult represents a single search hit.
type SearchResult struct {
	ChunkID    string  `json:"chunk_id"`
	Text       string  `json:"text"`
	DocumentID string  `json:"document_id"`
	PageNumber int     `json:"page_number"`
	Ordinal    int     `json:"ordinal"`
	Score      float64 `json:"score"`
}

// SearchResultFromScored converts a store hit to a search result.
func SearchResultFromScored(hit ScoredRecord) SearchResult {
	return SearchResult{
		ChunkID:    hit.Record.ChunkID,
		Text:       hit.Record.Text,
		DocumentID: hit.Record.Metadata.DocumentID,
		PageNumber: hit.Record.Metadata.PageNumber,
		Ordinal:    hit.Record.Metadata.Ordinal,
		Score:      hit.Score,
	}
}

// ValidateTopK checks 1 ≤ topK ≤ MaxTopK.
func ValidateTopK(topK int) error {
	if topK < 1 || topK > MaxTopK {
		return fmt.Errorf("%w: top_k must be between 1 and %d, got %d", ErrInvalidQueryParameter, MaxTopK, topK)
	}
	return nil
}
