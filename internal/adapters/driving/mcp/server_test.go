package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

// connect starts s on an in-memory transport and returns a client session.
func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverT, clientT := mcp.NewInMemoryTransports()

	ss, err := s.Connect(ctx, serverT)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func toolNames(t *testing.T, cs *mcp.ClientSession) []string {
	t.Helper()
	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)
	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	return names
}

func TestNewServer_RequiresSearch(t *testing.T) {
	server, err := NewServer(&Ports{Ingest: &mockIngestService{}})

	require.Error(t, err)
	assert.Nil(t, server)
	assert.ErrorIs(t, err, ErrMissingSearchService)
}

func TestServer_Handler(t *testing.T) {
	server, err := NewServer(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)

	assert.NotNil(t, server.Handler())
}

func TestServer_RegisteredTools(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  []string
	}{
		{
			name:  "search only",
			ports: &Ports{Search: &mockSearchService{}},
			want:  []string{"search"},
		},
		{
			name: "full pipeline",
			ports: &Ports{
				Search:   &mockSearchService{},
				Ingest:   &mockIngestService{},
				Document: &mockDocumentService{},
			},
			want: []string{"ingest_directory", "list_documents", "search"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := NewServer(tt.ports)
			require.NoError(t, err)

			assert.Equal(t, tt.want, toolNames(t, connect(t, server)))
		})
	}
}

func TestServer_Instructions(t *testing.T) {
	server, err := NewServer(&Ports{Search: &mockSearchService{}})
	require.NoError(t, err)

	cs := connect(t, server)

	info := cs.InitializeResult()
	require.NotNil(t, info)
	assert.Equal(t, ServerName, info.ServerInfo.Name)
	assert.Contains(t, info.Instructions, "page number")
}

func TestServer_CallSearch(t *testing.T) {
	search := &mockSearchService{results: []domain.SearchResult{
		{ChunkID: "c-1", Text: "orbital mechanics", DocumentID: "space.pdf", PageNumber: 4, Score: 0.8},
	}}
	server, err := NewServer(&Ports{Search: search})
	require.NoError(t, err)
	cs := connect(t, server)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "search",
		Arguments: map[string]any{"query": "orbits", "top_k": 3},
	})

	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "orbits", search.query)
	require.NotNil(t, search.opts.TopK)
	assert.Equal(t, 3, *search.opts.TopK)

	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var out SearchOutput
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "space.pdf", out.Results[0].DocumentID)
}

func TestServer_CallSearch_ErrorResult(t *testing.T) {
	search := &mockSearchService{err: fmt.Errorf("%w: query must not be empty", domain.ErrInvalidQueryParameter)}
	server, err := NewServer(&Ports{Search: search})
	require.NoError(t, err)
	cs := connect(t, server)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "search",
		Arguments: map[string]any{"query": ""},
	})

	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestPorts_Validate(t *testing.T) {
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingSearchService)
	assert.NoError(t, (&Ports{Search: &mockSearchService{}}).Validate())
}
