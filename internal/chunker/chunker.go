// Package chunker provides a fixed-size sliding window text chunker.
//
// Pages are concatenated in order, joined by a single newline that belongs
// to the preceding page. A window of chunkSize runes slides across the text
// with a stride of chunkSize-overlap. Windows that are blank after trimming
// are skipped and do not consume an ordinal.
package chunker

import (
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 150

// pageSeparator joins consecutive non-blank pages.
const pageSeparator = '\n'

// idNamespace scopes chunk UUIDs to this application.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/custodia-labs/sercha-pdf/chunk"))

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Chunker splits page text into overlapping fixed-size windows.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// WithConfig applies a domain chunk configuration.
func WithConfig(cfg domain.ChunkConfig) Option {
	return func(c *Chunker) {
		c.chunkSize = cfg.Size
		c.overlap = cfg.Overlap
	}
}

// New creates a chunker. Invalid window settings fail with
// domain.ErrInvalidChunkConfig rather than being corrected.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.Config().Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Config returns the window configuration in use.
func (c *Chunker) Config() domain.ChunkConfig {
	return domain.ChunkConfig{Size: c.chunkSize, Overlap: c.overlap}
}

// ChunkID derives the stable identifier for a chunk position.
func ChunkID(documentID string, ordinal int) string {
	return uuid.NewSHA1(idNamespace, []byte(documentID+"#"+strconv.Itoa(ordinal))).String()
}

// pageSpan records where a page's text starts in the concatenated runes.
type pageSpan struct {
	number int
	start  int
}

// Chunk returns the ordered chunk sequence for a document.
func (c *Chunker) Chunk(documentID string, pages []domain.Page) ([]domain.Chunk, error) {
	text, spans := concatenate(pages)
	if len(text) == 0 {
		return nil, nil
	}

	step := c.chunkSize - c.overlap
	chunks := make([]domain.Chunk, 0, len(text)/step+1)

	for start := 0; start < len(text); start += step {
		end := min(start+c.chunkSize, len(text))
		window := text[start:end]

		if !isBlank(window) {
			span := spanAt(spans, start)
			ordinal := len(chunks)
			charStart := start - span.start
			chunks = append(chunks, domain.Chunk{
				ID:         ChunkID(documentID, ordinal),
				DocumentID: documentID,
				Ordinal:    ordinal,
				Text:       string(window),
				CharStart:  charStart,
				CharEnd:    charStart + len(window),
				PageNumber: span.number,
			})
		}

		// The window reached end-of-text; any later window would be a suffix of it.
		if end == len(text) {
			break
		}
	}

	return chunks, nil
}

// concatenate joins non-blank pages and records each page's start offset.
func concatenate(pages []domain.Page) ([]rune, []pageSpan) {
	var (
		text  []rune
		spans []pageSpan
	)

	for _, p := range pages {
		if p.IsBlank() {
			continue
		}
		if len(text) > 0 {
			text = append(text, pageSeparator)
		}
		spans = append(spans, pageSpan{number: p.Number, start: len(text)})
		text = append(text, []rune(strings.TrimSpace(p.Text))...)
	}

	return text, spans
}

// spanAt returns the page owning offset. Separators map to the preceding page.
func spanAt(spans []pageSpan, offset int) pageSpan {
	i := sort.Search(len(spans), func(i int) bool {
		return spans[i].start > offset
	})
	return spans[i-1]
}

func isBlank(runes []rune) bool {
	for _, r := range runes {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
