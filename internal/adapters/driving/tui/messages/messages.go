// Package messages holds the tea.Msg values passed between TUI views.
package messages

import (
	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
)

// Screen names a top-level view.
type Screen int

const (
	ScreenSearch Screen = iota
	ScreenDocuments
)

func (s Screen) String() string {
	if s == ScreenDocuments {
		return "documents"
	}
	return "search"
}

// Navigate asks the app to show another screen.
type Navigate struct {
	To Screen
}

// SearchCompleted carries one query's hits, or the error that stopped it.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// DocumentsLoaded carries the ingested-document catalog.
type DocumentsLoaded struct {
	Documents []domain.DocumentSummary
	Err       error
}

// StatusLoaded carries store totals for the header line.
type StatusLoaded struct {
	Status *driving.Status
	Err    error
}

// Quit ends the program.
type Quit struct{}
