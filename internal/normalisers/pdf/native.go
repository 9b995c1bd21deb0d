package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// NativeExtractor parses PDFs in-process.
type NativeExtractor struct{}

// NewNativeExtractor creates the pure Go extractor.
func NewNativeExtractor() *NativeExtractor {
	return &NativeExtractor{}
}

// Name returns the backend name.
func (e *NativeExtractor) Name() string {
	return BackendNative
}

// ExtractPages returns the plain text of every page.
// The parser panics on some malformed inputs; those are reported as errors.
func (e *NativeExtractor) ExtractPages(ctx context.Context, data []byte) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("parse: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	n := reader.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}
