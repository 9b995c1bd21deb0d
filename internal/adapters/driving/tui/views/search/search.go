// Package search provides the query box and result list view.
package search

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
)

// ErrNoSearchService indicates that no search service was provided.
var ErrNoSearchService = errors.New("search service is required")

// View is the search screen. It is either in input mode (typing a query) or
// results mode (browsing hits).
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     textinput.Model
	list      *list.ResultList
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context
	topK          *int

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool
	expanded   bool
	lastQuery  string
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask something about your PDFs..."
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	v := &View{
		styles:        s,
		keymap:        km,
		input:         ti,
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s),
		searchService: searchService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
		focusInput:    true,
	}
	v.statusbar.SetHints(km.InputHelp())
	return v
}

// WithContext sets the context used for queries.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithTopK sets the result count requested per query. Nil uses the service default.
func (v *View) WithTopK(topK *int) *View {
	v.topK = topK
	return v
}

// Init starts the cursor blinking.
func (v *View) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		if v.focusInput {
			return v.handleInputKey(msg)
		}
		return v.handleResultsKey(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Search):
		query := strings.TrimSpace(v.input.Value())
		if query == "" {
			return v, nil
		}
		v.statusbar.SetState(status.StateSearching, "")
		return v, v.performSearch(query)

	case key.Matches(msg, v.keymap.Clear):
		v.input.Reset()
		v.err = nil
		v.statusbar.SetState(status.StateReady, "")
		return v, nil

	case key.Matches(msg, v.keymap.SwitchView):
		return v, changeView(messages.ScreenDocuments)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleResultsKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		v.list.MoveUp()
		v.expanded = false
	case key.Matches(msg, v.keymap.Down):
		v.list.MoveDown()
		v.expanded = false
	case key.Matches(msg, v.keymap.Expand):
		v.expanded = !v.expanded && v.list.SelectedResult() != nil
	case key.Matches(msg, v.keymap.NewSearch), key.Matches(msg, v.keymap.Back):
		v.focusSearch()
		return v, textinput.Blink
	case key.Matches(msg, v.keymap.SwitchView):
		return v, changeView(messages.ScreenDocuments)
	case key.Matches(msg, v.keymap.QuitList):
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

func changeView(to messages.Screen) tea.Cmd {
	return func() tea.Msg { return messages.Navigate{To: to} }
}

func (v *View) focusSearch() {
	v.focusInput = true
	v.expanded = false
	v.input.Focus()
	v.input.CursorEnd()
	v.statusbar.SetHints(v.keymap.InputHelp())
}

// performSearch runs the query off the update loop.
func (v *View) performSearch(query string) tea.Cmd {
	svc, ctx, topK := v.searchService, v.ctx, v.topK
	return func() tea.Msg {
		if svc == nil {
			return messages.SearchCompleted{Query: query, Err: ErrNoSearchService}
		}
		results, err := svc.Search(ctx, query, domain.SearchOptions{TopK: topK})
		return messages.SearchCompleted{Query: query, Results: results, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	v.lastQuery = msg.Query
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError, msg.Err.Error())
		return
	}

	v.err = nil
	v.expanded = false
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults, "")
	v.statusbar.SetResultCount(len(msg.Results))

	if len(msg.Results) == 0 {
		return
	}
	v.focusInput = false
	v.input.Blur()
	v.statusbar.SetHints(v.keymap.ResultsHelp())
}

// View renders the search view.
func (v *View) View() string {
	sections := []string{
		v.styles.Title.Render("sercha-pdf"),
		"",
		v.styles.Input.Render(v.input.View()),
		"",
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	sections = append(sections, v.list.View())

	if sel := v.list.SelectedResult(); v.expanded && sel != nil {
		sections = append(sections, "", v.styles.Preview.Width(max(v.width-4, 20)).Render(sel.Text))
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.Width = max(width-8, 20)
	v.list.SetDimensions(width, height-9)
	v.statusbar.SetWidth(width)
}

// Ready returns whether a window size has been received.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the text in the query box.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the text in the query box.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// LastQuery returns the last query that completed.
func (v *View) LastQuery() string {
	return v.lastQuery
}

// Results returns the current search results.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// SelectedResult returns the currently selected result.
func (v *View) SelectedResult() *domain.SearchResult {
	return v.list.SelectedResult()
}

// Err returns the last search error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the query box has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Expanded returns whether the selected chunk's full text is shown.
func (v *View) Expanded() bool {
	return v.expanded
}
