package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-pdf/internal/logger"
)

// DefaultMaxUploadBytes bounds a single /ingest request body.
const DefaultMaxUploadBytes int64 = 256 << 20

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temp files.
const multipartMemory = 32 << 20

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	Search   driving.SearchService
	Ingest   driving.IngestService
	Document driving.DocumentService

	// Metrics serves GET /metrics. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil || p.Ingest == nil || p.Document == nil {
		return ErrMissingService
	}
	return nil
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes caps the /ingest request body. Non-positive values are ignored.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// Server is the HTTP front end of the pipeline.
type Server struct {
	ports          Ports
	maxUploadBytes int64
	mux            *http.ServeMux
}

// NewServer creates a server for the given ports.
func NewServer(ports Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		ports:          ports,
		maxUploadBytes: DefaultMaxUploadBytes,
		mux:            http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("POST /ingest", s.handleIngest)
	s.mux.HandleFunc("POST /search", s.handleSearch)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	if ports.Metrics != nil {
		s.mux.Handle("GET /metrics", ports.Metrics)
	}

	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
