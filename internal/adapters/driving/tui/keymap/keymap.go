// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits from anywhere.
	Quit key.Binding

	// QuitList exits when no text input has focus.
	QuitList key.Binding

	// Search runs the typed query.
	Search key.Binding

	// Clear empties the query box.
	Clear key.Binding

	// Up and Down move through a list.
	Up   key.Binding
	Down key.Binding

	// Expand toggles the full text of the selected chunk.
	Expand key.Binding

	// NewSearch returns focus to the query box.
	NewSearch key.Binding

	// SwitchView flips between search and documents.
	SwitchView key.Binding

	// Back leaves the current list.
	Back key.Binding

	// Reload refreshes the documents list.
	Reload key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		QuitList:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Search:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
		Clear:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Expand:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "full text")),
		NewSearch:  key.NewBinding(key.WithKeys("/", "n"), key.WithHelp("/", "new search")),
		SwitchView: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "documents")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

// InputHelp returns hints shown while typing a query.
func (k *KeyMap) InputHelp() []key.Binding {
	return []key.Binding{k.Search, k.Clear, k.SwitchView, k.Quit}
}

// ResultsHelp returns hints shown while browsing results.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Expand, k.NewSearch, k.QuitList}
}

// DocumentsHelp returns hints shown on the documents list.
func (k *KeyMap) DocumentsHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Reload, k.Back, k.QuitList}
}
