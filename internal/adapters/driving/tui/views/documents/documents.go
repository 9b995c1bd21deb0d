// Package documents provides the ingested documents list view.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
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

// ErrNoDocumentService indicates the view has nothing to list from.
var ErrNoDocumentService = errors.New("document service not available")

// View is the documents list view.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	statusbar       *status.Bar
	documentService driving.DocumentService
	ctx             context.Context

	documents []domain.DocumentSummary
	selected  int
	width     int
	height    int
	loading   bool
	err       error
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, km *keymap.KeyMap, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	bar := status.NewBar(s)
	bar.SetHints(km.DocumentsHelp())

	return &View{
		styles:          s,
		keymap:          km,
		statusbar:       bar,
		documentService: documentService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context used to list documents.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Load returns a command that fetches the document catalog.
func (v *View) Load() tea.Cmd {
	v.loading = true
	svc, ctx := v.documentService, v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		docs, err := svc.List(ctx)
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.statusbar.SetWidth(msg.Width)

	case messages.DocumentsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			v.statusbar.SetState(status.StateError, msg.Err.Error())
			return v, nil
		}
		v.err = nil
		v.documents = msg.Documents
		v.selected = min(v.selected, max(len(v.documents)-1, 0))
		v.statusbar.SetState(status.StateReady, fmt.Sprintf("%d document(s)", len(v.documents)))

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case key.Matches(msg, v.keymap.Down):
		if v.selected < len(v.documents)-1 {
			v.selected++
		}
	case key.Matches(msg, v.keymap.Reload):
		return v, v.Load()
	case key.Matches(msg, v.keymap.Back), key.Matches(msg, v.keymap.SwitchView):
		return v, func() tea.Msg { return messages.Navigate{To: messages.ScreenSearch} }
	case key.Matches(msg, v.keymap.QuitList):
		return v, func() tea.Msg { return messages.Quit{} }
	}
	return v, nil
}

// View renders the documents view.
func (v *View) View() string {
	sections := []string{v.styles.Title.Render("Ingested documents"), ""}

	switch {
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case len(v.documents) == 0:
		sections = append(sections, v.styles.Muted.Render("Nothing ingested yet. Run: sercha-pdf ingest <file.pdf>"))
	default:
		sections = append(sections, v.renderTable())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderTable() string {
	nameWidth := max(v.width-36, 16)
	lines := []string{
		v.styles.Header.Render(fmt.Sprintf("  %-*s %6s %7s %10s", nameWidth, "DOCUMENT", "PAGES", "CHUNKS", "SIZE")),
	}

	visible := max(v.height-6, 1)
	start := 0
	if v.selected >= visible {
		start = v.selected - visible + 1
	}
	end := min(start+visible, len(v.documents))

	for i := start; i < end; i++ {
		d := v.documents[i]
		row := fmt.Sprintf("%-*s %6d %7d %10s",
			nameWidth, list.Truncate(d.DocumentID, nameWidth), d.PageCount, d.ChunkCount, FormatBytes(d.Size))
		if i == v.selected {
			lines = append(lines, v.styles.Selected.Render("> "+row))
		} else {
			lines = append(lines, v.styles.Normal.Render("  "+row))
		}
	}
	return strings.Join(lines, "\n")
}

// Documents returns the loaded catalog.
func (v *View) Documents() []domain.DocumentSummary {
	return v.documents
}

// Selected returns the selected row.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
