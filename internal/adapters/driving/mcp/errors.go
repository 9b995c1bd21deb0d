// Package mcp provides an MCP (Model Context Protocol) server adapter for sercha-pdf.
// It lets assistants search ingested PDFs and trigger ingestion of a local directory.
package mcp

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// errToolUnavailable is reported when an optional port was not wired.
var errToolUnavailable = errors.New("tool not available in this server")

// toolError prefixes caller mistakes and outages so the assistant can tell
// them apart. The SDK reports a returned handler error as an IsError result.
func toolError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQueryParameter), errors.Is(err, domain.ErrInvalidInput):
		return fmt.Errorf("invalid arguments: %w", err)
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrStoreUnavailable):
		return fmt.Errorf("service unavailable: %w", err)
	default:
		return err
	}
}
