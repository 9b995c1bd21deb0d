package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/httpapi"
)

var (
	serveAddr      string
	serveMaxUpload int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the pipeline over HTTP.

Routes:
  POST /ingest   multipart "files" uploads, or a "directory" form field
  POST /search   {"query": "...", "top_k": 5}
  GET  /health   store totals; 503 when the store is unreachable
  GET  /metrics  Prometheus metrics

The listen address defaults to server.addr from the settings.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	serveCmd.Flags().Int64Var(&serveMaxUpload, "max-upload", httpapi.DefaultMaxUploadBytes, "maximum request body size in bytes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := ensurePipeline(cmd); err != nil {
		return err
	}
	if searchService == nil || ingestService == nil || documentService == nil {
		return errors.New("pipeline services not configured")
	}

	addr := serveAddr
	if addr == "" && settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		addr = settings.Server.Addr
	}
	if addr == "" {
		return errors.New("no listen address: pass --addr or set server.addr")
	}

	server, err := httpapi.NewServer(httpapi.Ports{
		Search:   searchService,
		Ingest:   ingestService,
		Document: documentService,
		Metrics:  metricsHandler,
	}, httpapi.WithMaxUploadBytes(serveMaxUpload))
	if err != nil {
		return err
	}

	cmd.Printf("HTTP API listening on http://%s\n", addr)
	return server.Run(cmd.Context(), addr)
}
