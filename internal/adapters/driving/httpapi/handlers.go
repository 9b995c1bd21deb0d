package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/logger"
)

// SearchRequest is the body of POST /search. An omitted top_k uses the
// configured default; an explicit one must lie in 1..100.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

// SearchResponse is the body of a successful POST /search.
type SearchResponse struct {
	Results []domain.SearchResult `json:"results"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	Documents      int    `json:"documents"`
	Chunks         int    `json:"chunks"`
	Dimensions     int    `json:"dimensions"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll() //nolint:errcheck
	}

	var files []*multipart.FileHeader
	if r.MultipartForm != nil {
		files = r.MultipartForm.File["files"]
	}
	directory := strings.TrimSpace(r.FormValue("directory"))

	switch {
	case len(files) > 0 && directory != "":
		writeError(w, http.StatusBadRequest, "supply either files or directory, not both")
		return
	case len(files) == 0 && directory == "":
		writeError(w, http.StatusBadRequest, "supply files or a directory")
		return
	}

	var report *domain.BatchIngestReport
	if directory != "" {
		report, err = s.ports.Ingest.IngestDirectory(r.Context(), directory)
	} else {
		report, err = s.ports.Ingest.IngestFiles(r.Context(), readUploads(files))
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// readUploads stages multipart parts as ingest inputs. A part that cannot be
// read becomes a failed document rather than failing the request.
func readUploads(files []*multipart.FileHeader) []domain.IngestInput {
	inputs := make([]domain.IngestInput, len(files))
	for i, fh := range files {
		inputs[i] = domain.IngestInput{Name: fh.Filename}

		f, err := fh.Open()
		if err != nil {
			inputs[i].ReadErr = fmt.Errorf("%w: %w", domain.ErrUnreadableDocument, err)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close() //nolint:errcheck
		if err != nil {
			inputs[i].ReadErr = fmt.Errorf("%w: %w", domain.ErrUnreadableDocument, err)
			continue
		}
		inputs[i].Data = data
	}
	return inputs
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	results, err := s.ports.Search.Search(r.Context(), req.Query, domain.SearchOptions{TopK: req.TopK})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, err := s.ports.Document.Status(r.Context())
	if err != nil {
		logger.Warn("health check failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:         "ok",
		Documents:      status.Documents,
		Chunks:         status.Chunks,
		Dimensions:     status.Dimensions,
		EmbeddingModel: status.EmbeddingModel,
	})
}
