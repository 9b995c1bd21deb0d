package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
)

var _ tea.Model = (*App)(nil)

// App owns both screens and a header with store totals. Key presses go to
// the visible screen; results of background commands go to whichever
// screen asked for them.
type App struct {
	ctx    context.Context
	ports  *Ports
	styles *styles.Styles
	keys   *keymap.KeyMap

	screen    messages.Screen
	search    *search.View
	documents *documents.View

	status    *driving.Status
	statusErr error
}

// NewApp builds the model. The search screen is shown first.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	st := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	return &App{
		ctx:       context.Background(),
		ports:     ports,
		styles:    st,
		keys:      km,
		screen:    messages.ScreenSearch,
		search:    search.NewView(st, km, ports.Search).WithTopK(ports.TopK),
		documents: documents.NewView(st, km, ports.Document),
	}, nil
}

// WithContext sets the context handed to every service call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.search.WithContext(ctx)
	a.documents.WithContext(ctx)
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("sercha-pdf"), a.search.Init(), a.loadStatus())
}

// loadStatus fetches store totals. It is re-run whenever the documents
// screen loads so the header follows deletions made elsewhere.
func (a *App) loadStatus() tea.Cmd {
	svc, ctx := a.ports.Document, a.ctx
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		st, err := svc.Status(ctx)
		return messages.StatusLoaded{Status: st, Err: err}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
	case messages.Quit:
		return a, tea.Quit

	case tea.WindowSizeMsg:
		// Both screens keep their layout in sync; one row goes to the header.
		resized := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 1}
		a.search, _ = a.search.Update(resized)
		a.documents, _ = a.documents.Update(resized)
		return a, nil

	case messages.Navigate:
		a.screen = msg.To
		if msg.To == messages.ScreenDocuments {
			return a, tea.Batch(a.documents.Load(), a.loadStatus())
		}
		return a, nil

	case messages.StatusLoaded:
		a.status, a.statusErr = msg.Status, msg.Err
		return a, nil

	case messages.SearchCompleted:
		a.search, cmd = a.search.Update(msg)
		return a, cmd

	case messages.DocumentsLoaded:
		a.documents, cmd = a.documents.Update(msg)
		return a, cmd
	}

	if a.screen == messages.ScreenDocuments {
		a.documents, cmd = a.documents.Update(msg)
	} else {
		a.search, cmd = a.search.Update(msg)
	}
	return a, cmd
}

func (a *App) View() string {
	body := a.search.View()
	if a.screen == messages.ScreenDocuments {
		body = a.documents.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.header(), body)
}

func (a *App) header() string {
	switch {
	case a.statusErr != nil:
		return a.styles.Error.Render("store: " + a.statusErr.Error())
	case a.status == nil:
		return a.styles.Muted.Render(a.screen.String())
	}
	return a.styles.Muted.Render(fmt.Sprintf("%s · %d documents · %d chunks · %s",
		a.screen, a.status.Documents, a.status.Chunks, a.status.EmbeddingModel))
}

// CurrentView returns the visible screen.
func (a *App) CurrentView() messages.Screen {
	return a.screen
}

// Run blocks on the alternate screen until the user quits or ctx ends.
func Run(ctx context.Context, ports *Ports) error {
	app, err := NewApp(ports)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(app.WithContext(ctx), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
