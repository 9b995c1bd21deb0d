package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

func testResults() []domain.SearchResult {
	return []domain.SearchResult{
		{ChunkID: "a", DocumentID: "alpha.pdf", PageNumber: 1, Score: 0.91, Text: "first\nchunk   text"},
		{ChunkID: "b", DocumentID: "beta.pdf", PageNumber: 7, Score: 0.42, Text: "second chunk"},
		{ChunkID: "c", DocumentID: "gamma.pdf", PageNumber: 3, Score: 0.12, Text: "third chunk"},
	}
}

func TestResultList_Empty(t *testing.T) {
	r := NewResultList(nil)

	assert.Contains(t, r.View(), "No matching chunks")
	assert.Nil(t, r.SelectedResult())
	assert.Zero(t, r.Count())
}

func TestResultList_View(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(testResults())

	out := r.View()

	assert.Contains(t, out, "Results (3)")
	assert.Contains(t, out, "0.910")
	assert.Contains(t, out, "alpha.pdf")
	assert.Contains(t, out, "p.7")
	assert.Contains(t, out, "first chunk text")
}

func TestResultList_Navigation(t *testing.T) {
	r := NewResultList(nil)
	r.SetResults(testResults())

	r.MoveUp()
	assert.Equal(t, 0, r.Selected())

	r.MoveDown()
	r.MoveDown()
	r.MoveDown()
	assert.Equal(t, 2, r.Selected())
	require.NotNil(t, r.SelectedResult())
	assert.Equal(t, "c", r.SelectedResult().ChunkID)

	r.SetResults(testResults()[:1])
	assert.Equal(t, 0, r.Selected())
}

func TestResultList_WindowFollowsSelection(t *testing.T) {
	r := NewResultList(nil)
	r.SetDimensions(80, 4)
	r.SetResults(testResults())

	assert.Contains(t, r.View(), "alpha.pdf")
	r.MoveDown()
	r.MoveDown()

	out := r.View()
	assert.Contains(t, out, "gamma.pdf")
	assert.NotContains(t, out, "alpha.pdf")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd...", Truncate("abcdefghij", 7))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, "日本...", Truncate("日本語のテキスト", 5))
}

func TestFlatten(t *testing.T) {
	assert.Equal(t, "a b c", Flatten("  a\n\tb   c \n"))
}
