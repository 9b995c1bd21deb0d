// Package list provides the navigable search result list.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

// linesPerResult is the height of one rendered result (heading plus preview).
const linesPerResult = 2

// ResultList displays search results best-first.
type ResultList struct {
	results  []domain.SearchResult
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates an empty result list.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{styles: s, width: 80, height: 12}
}

// View renders the visible window of results around the selection.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No matching chunks")
	}

	start, end := r.window()
	lines := make([]string, 0, (end-start)*linesPerResult+2)
	lines = append(lines, r.styles.Header.Render(fmt.Sprintf("Results (%d)", len(r.results))), "")
	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i))
	}
	return strings.Join(lines, "\n")
}

func (r *ResultList) window() (int, int) {
	visible := max((r.height-2)/linesPerResult, 1)
	start := 0
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	return start, min(start+visible, len(r.results))
}

// renderResult shows "score  document  p.N" over a one-line preview.
func (r *ResultList) renderResult(i int) string {
	res := r.results[i]

	indicator := "  "
	if i == r.selected {
		indicator = "> "
	}
	score := r.styles.Score(res.Score).Render(fmt.Sprintf("%.3f", res.Score))
	doc := r.styles.Document.Render(Truncate(res.DocumentID, max(r.width-24, 10)))
	page := r.styles.Page.Render(fmt.Sprintf("p.%d", res.PageNumber))

	heading := indicator + score + "  " + doc + "  " + page
	if i == r.selected {
		heading = r.styles.Selected.Render(indicator) + score + "  " + doc + "  " + page
	}

	preview := r.styles.Muted.Render("    " + Truncate(Flatten(res.Text), max(r.width-6, 20)))
	return heading + "\n" + preview
}

// SetResults replaces the results and resets the selection.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() []domain.SearchResult {
	return r.results
}

// Selected returns the index of the selected result.
func (r *ResultList) Selected() int {
	return r.selected
}

// SelectedResult returns the currently selected result, or nil if none.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp moves selection up.
func (r *ResultList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *ResultList) MoveDown() {
	if r.selected < len(r.results)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}

// Flatten collapses runs of whitespace, including newlines, to single spaces.
func Flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
