// Package tui is the interactive terminal front end: a query box over the
// vector store and a browsable list of ingested documents.
package tui

import (
	"errors"

	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
)

// ErrMissingSearchService is returned by NewApp without a search service.
var ErrMissingSearchService = errors.New("tui: search service is required")

// Ports are the services the TUI drives. Document is optional; without it
// the documents screen reports that no catalog is available and the header
// shows no totals.
type Ports struct {
	Search   driving.SearchService
	Document driving.DocumentService

	// TopK is sent with every query. Nil defers to the service default.
	TopK *int
}

// Validate reports a missing required service.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
