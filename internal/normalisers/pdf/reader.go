// Package pdf extracts per-page text from PDF documents.
//
// Two extraction backends are available:
//
//   - native: pure Go parsing with github.com/ledongthuc/pdf (default)
//   - pdftotext: shells out to poppler's pdftotext, which copes better
//     with unusual font encodings
//
// Both produce one entry per page. Pages without extractable text (scanned
// or image-only) come back empty rather than as errors.
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-pdf/internal/logger"
)

// Ensure Reader implements the interface.
var _ driven.DocumentReader = (*Reader)(nil)

// headerWindow is how far into the payload the %PDF- marker may appear.
const headerWindow = 1024

var pdfMagic = []byte("%PDF-")

// Backend names accepted by NewExtractor.
const (
	BackendNative    = "native"
	BackendPDFToText = "pdftotext"
)

// Extractor returns the raw text of every page, in order.
type Extractor interface {
	ExtractPages(ctx context.Context, data []byte) ([]string, error)
	Name() string
}

// Reader validates PDF payloads and normalises extracted page text.
type Reader struct {
	extractor Extractor
}

// New creates a reader using the native extractor.
func New() *Reader {
	return NewWithExtractor(NewNativeExtractor())
}

// NewWithExtractor creates a reader with a specific extraction backend.
func NewWithExtractor(e Extractor) *Reader {
	return &Reader{extractor: e}
}

// NewExtractor builds an extractor by backend name.
func NewExtractor(backend string) (Extractor, error) {
	switch backend {
	case "", BackendNative:
		return NewNativeExtractor(), nil
	case BackendPDFToText:
		if err := CheckAvailable(); err != nil {
			return nil, err
		}
		return NewPopplerExtractor(), nil
	default:
		return nil, fmt.Errorf("%w: unknown pdf backend %q", domain.ErrInvalidInput, backend)
	}
}

// Name returns the extraction backend name.
func (r *Reader) Name() string {
	return r.extractor.Name()
}

// Read extracts page text from a PDF payload.
func (r *Reader) Read(ctx context.Context, data []byte) ([]domain.Page, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrUnreadableDocument)
	}
	if !hasPDFHeader(data) {
		return nil, fmt.Errorf("%w: missing %%PDF header", domain.ErrUnreadableDocument)
	}

	texts, err := r.extractor.ExtractPages(ctx, data)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if errors.Is(err, domain.ErrUnreadableDocument) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrUnreadableDocument, r.extractor.Name(), err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: document has no pages", domain.ErrUnreadableDocument)
	}

	pages := make([]domain.Page, len(texts))
	blank := 0
	for i, text := range texts {
		pages[i] = domain.Page{Number: i + 1, Text: cleanText(text)}
		if pages[i].IsBlank() {
			blank++
		}
	}
	if blank > 0 {
		logger.Debug("pdf: %d of %d pages have no extractable text", blank, len(pages))
	}

	return pages, nil
}

func hasPDFHeader(data []byte) bool {
	head := data[:min(len(data), headerWindow)]
	return bytes.Contains(head, pdfMagic)
}

// cleanText drops control characters (other than newlines and tabs),
// collapses runs of blank lines and trims the result.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\r' || r == '\f' || r == '\v':
			return '\n'
		case unicode.IsControl(r) || r == unicode.ReplacementChar:
			return -1
		default:
			return r
		}
	}, s)

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blankRun := 0
	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line == "" {
			blankRun++
			if blankRun > 1 {
				continue
			}
		} else {
			blankRun = 0
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
