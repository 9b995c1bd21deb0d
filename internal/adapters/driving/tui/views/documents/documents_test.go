package documents

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
)

type mockDocumentService struct {
	docs []domain.DocumentSummary
	err  error
}

func (m *mockDocumentService) List(context.Context) ([]domain.DocumentSummary, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Delete(context.Context, string) (int, error) { return 0, nil }

func (m *mockDocumentService) Status(context.Context) (*driving.Status, error) {
	return &driving.Status{}, nil
}

func testDocs() []domain.DocumentSummary {
	return []domain.DocumentSummary{
		{DocumentID: "annual-report.pdf", PageCount: 42, ChunkCount: 180, Size: 3 << 20},
		{DocumentID: "memo.pdf", PageCount: 1, ChunkCount: 2, Size: 900},
	}
}

func load(t *testing.T, v *View) {
	t.Helper()
	cmd := v.Load()
	require.NotNil(t, cmd)
	v.Update(cmd())
}

func TestView_LoadAndRender(t *testing.T) {
	v := NewView(nil, nil, &mockDocumentService{docs: testDocs()})
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 20})

	load(t, v)

	require.Len(t, v.Documents(), 2)
	out := v.View()
	assert.Contains(t, out, "annual-report.pdf")
	assert.Contains(t, out, "180")
	assert.Contains(t, out, "3.0 MiB")
	assert.Contains(t, out, "900 B")
	assert.Contains(t, out, "2 document(s)")
}

func TestView_Empty(t *testing.T) {
	v := NewView(nil, nil, &mockDocumentService{})

	load(t, v)

	assert.Contains(t, v.View(), "Nothing ingested yet")
}

func TestView_LoadError(t *testing.T) {
	v := NewView(nil, nil, &mockDocumentService{err: errors.New("vector store unavailable")})

	load(t, v)

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "vector store unavailable")
}

func TestView_NilService(t *testing.T) {
	v := NewView(nil, nil, nil)

	load(t, v)

	assert.ErrorIs(t, v.Err(), ErrNoDocumentService)
}

func TestView_Keys(t *testing.T) {
	v := NewView(nil, nil, &mockDocumentService{docs: testDocs()})
	load(t, v)

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, v.Selected())
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")})
	assert.Equal(t, 0, v.Selected())

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.Navigate{To: messages.ScreenSearch}, cmd())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	assert.IsType(t, messages.DocumentsLoaded{}, cmd())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.Quit{}, cmd())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Equal(t, "1023 B", FormatBytes(1023))
	assert.Equal(t, "1.0 KiB", FormatBytes(1024))
	assert.Equal(t, "1.5 MiB", FormatBytes(3<<19))
}
