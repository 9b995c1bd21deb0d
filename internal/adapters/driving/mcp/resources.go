package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Resource URIs.
const (
	DocumentsURI = "sercha-pdf://documents"
	StatusURI    = "sercha-pdf://status"
)

const jsonMIME = "application/json"

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         DocumentsURI,
		Name:        "documents",
		Description: "Ingested PDF documents with page and chunk counts",
		MIMEType:    jsonMIME,
	}, s.handleDocumentsResource)

	if s.ports.Document != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         StatusURI,
			Name:        "status",
			Description: "Document and chunk totals, vector dimensions and embedding model",
			MIMEType:    jsonMIME,
		}, s.handleStatusResource)
	}
}

// handleDocumentsResource serves the catalog. Without a document service the
// catalog is an empty array rather than an error.
func (s *Server) handleDocumentsResource(
	ctx context.Context, req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs := []DocumentOutput{}
	if s.ports.Document != nil {
		listed, err := s.ports.Document.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}
		for _, d := range listed {
			docs = append(docs, toDocumentOutput(d))
		}
	}
	return jsonResource(req.Params.URI, docs)
}

func (s *Server) handleStatusResource(
	ctx context.Context, req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	st, err := s.ports.Document.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}
	return jsonResource(req.Params.URI, st)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: jsonMIME, Text: string(data)}},
	}, nil
}
