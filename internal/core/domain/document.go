package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Document represents one ingested PDF.
// It is created when ingestion begins and never mutated afterwards.
type Document struct {
	// ID is the stable identifier, derived from the file name or caller supplied.
	ID string

	// Path is the original location (file path or upload name).
	Path string

	// Size is the length of the PDF payload in bytes.
	Size int64

	// PageCount is the number of pages reported by the reader.
	PageCount int

	// IngestedAt is when the current chunk set was written.
	IngestedAt time.Time
}

// Page is the extracted text of a single PDF page.
type Page struct {
	// Number is the 1-indexed page number in document order.
	Number int

	// Text is the extracted page text. Empty for image-only pages.
	Text string
}

// IsBlank reports whether the page carries no extractable text.
func (p Page) IsBlank() bool {
	return strings.TrimSpace(p.Text) == ""
}

// Chunk is a contiguous window of text drawn from one document.
type Chunk struct {
	// ID is derived from DocumentID and Ordinal, see ChunkID.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Ordinal is the 0-based position within the document's chunk sequence.
	Ordinal int

	// Text is the window content.
	Text string

	// CharStart is the rune offset of the window start within its page's text.
	CharStart int

	// CharEnd is CharStart plus the window length in runes.
	CharEnd int

	// PageNumber is the page owning the window's start offset.
	PageNumber int
}

// DocumentIDFromPath derives a document id from a file path or upload name.
// The base name is used so the same file ingested from different staging
// directories maps to the same id.
func DocumentIDFromPath(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return base
}

// IsPDFName reports whether name carries a .pdf extension (case-insensitive).
func IsPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
