package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"natural language query to match against ingested PDF text"`
	TopK  *int   `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (1-100, server default when omitted)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// IngestDirectoryInput is the input schema for the ingest_directory tool.
type IngestDirectoryInput struct {
	Directory string `json:"directory" jsonschema:"absolute path of a local directory; every *.pdf directly inside it is ingested"`
}

// IngestOutput is the output schema for the ingest_directory tool.
type IngestOutput struct {
	Results   []IngestResultOutput `json:"results"`
	Total     int                  `json:"total"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	Message   string               `json:"message"`
}

// IngestResultOutput is the outcome of one document.
type IngestResultOutput struct {
	DocumentID string `json:"document_id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Stage      string `json:"stage"`
	ChunkCount int    `json:"chunk_count"`
	PageCount  int    `json:"page_count"`
	Error      string `json:"error,omitempty"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes one ingested document.
type DocumentOutput struct {
	DocumentID string `json:"document_id"`
	Path       string `json:"path,omitempty"`
	Size       int64  `json:"size"`
	PageCount  int    `json:"page_count"`
	ChunkCount int    `json:"chunk_count"`
	IngestedAt string `json:"ingested_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Semantic search over ingested PDF chunks. Returns text, document id, page and score.",
	}, s.handleSearch)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_directory",
			Description: "Ingest every PDF in a local directory, replacing earlier versions of the same documents",
		}, s.handleIngestDirectory)
	}

	if s.ports.Document != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_documents",
			Description: "List ingested documents with their page and chunk counts",
		}, s.handleListDocuments)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Search.Search(ctx, input.Query, domain.SearchOptions{TopK: input.TopK})
	if err != nil {
		return nil, SearchOutput{}, toolError(err)
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

// handleIngestDirectory handles the ingest_directory tool invocation.
// Per-document failures are part of the report, not a tool error.
func (s *Server) handleIngestDirectory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestDirectoryInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, errToolUnavailable
	}

	report, err := s.ports.Ingest.IngestDirectory(ctx, strings.TrimSpace(input.Directory))
	if err != nil {
		return nil, IngestOutput{}, toolError(err)
	}

	out := IngestOutput{
		Results:   make([]IngestResultOutput, len(report.Results)),
		Total:     report.Total,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Message:   report.Message,
	}
	for i, r := range report.Results {
		out.Results[i] = IngestResultOutput{
			DocumentID: r.DocumentID,
			Name:       r.Name,
			Status:     string(r.Status),
			Stage:      string(r.Stage),
			ChunkCount: r.ChunkCount,
			PageCount:  r.PageCount,
			Error:      r.Error,
		}
	}

	return nil, out, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	if s.ports.Document == nil {
		return nil, ListDocumentsOutput{}, errToolUnavailable
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, toolError(err)
	}

	out := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i, d := range docs {
		out.Documents[i] = toDocumentOutput(d)
	}

	return nil, out, nil
}

func toDocumentOutput(d domain.DocumentSummary) DocumentOutput {
	out := DocumentOutput{
		DocumentID: d.DocumentID,
		Path:       d.Path,
		Size:       d.Size,
		PageCount:  d.PageCount,
		ChunkCount: d.ChunkCount,
	}
	if !d.IngestedAt.IsZero() {
		out.IngestedAt = d.IngestedAt.UTC().Format(time.RFC3339)
	}
	return out
}
