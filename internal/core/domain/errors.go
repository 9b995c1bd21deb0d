package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Pipeline Errors.

	// ErrUnreadableDocument indicates the byte stream is not a parseable PDF.
	// Corrupt headers, zero-length payloads and unsupported encryption all map here.
	ErrUnreadableDocument = errors.New("unreadable document")

	// ErrInvalidChunkConfig indicates chunk_size/chunk_overlap are out of range.
	ErrInvalidChunkConfig = errors.New("invalid chunk config")

	// ErrEmbeddingUnavailable indicates the embedding model cannot be invoked.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrInvalidQueryParameter indicates a caller supplied an invalid query or top_k.
	ErrInvalidQueryParameter = errors.New("invalid query parameter")

	// ErrStoreUnavailable indicates a vector store I/O failure.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates a vector's length differs from the store's pinned dimension.
	// It is a kind of ErrInvalidInput.
	ErrDimensionMismatch = fmt.Errorf("%w: vector dimension mismatch", ErrInvalidInput)

	// ErrBatchTimeout marks documents still in flight when a batch deadline fired.
	ErrBatchTimeout = errors.New("batch timeout")
)
