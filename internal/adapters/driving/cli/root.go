// Package cli provides the sercha-pdf command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-pdf/internal/logger"
)

// version is overridden at build time.
var version = "dev"

var verbose bool

// Services used by the commands. They are injected by main, or built on
// first use by the pipeline factory.
var (
	searchService   driving.SearchService
	ingestService   driving.IngestService
	documentService driving.DocumentService
	settingsService driving.SettingsService
	metricsHandler  http.Handler
)

// Pipeline is the set of services built from the effective settings.
type Pipeline struct {
	Search   driving.SearchService
	Ingest   driving.IngestService
	Document driving.DocumentService

	// Metrics serves the Prometheus registry. Optional.
	Metrics http.Handler

	// Close releases the embedder and store. Optional.
	Close func() error
}

// PipelineFactory builds a Pipeline for the given settings.
type PipelineFactory func(ctx context.Context, settings *domain.AppSettings) (*Pipeline, error)

var (
	pipelineFactory PipelineFactory
	pipelineClose   func() error
)

var rootCmd = &cobra.Command{
	Use:   "sercha-pdf",
	Short: "Ingest PDFs and search them semantically",
	Long: `sercha-pdf extracts text from PDF files, splits it into overlapping chunks,
embeds each chunk and stores the vectors locally. Queries return the closest
chunks with their document and page.

Configuration lives in ~/.sercha-pdf/config.toml. See "sercha-pdf settings".`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version printed by "sercha-pdf version".
func SetVersion(v string) {
	version = v
}

// SetSettingsService injects the settings service.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetPipelineFactory registers the builder used by commands that need the pipeline.
func SetPipelineFactory(f PipelineFactory) {
	pipelineFactory = f
}

// SetServices injects ready-made pipeline services, bypassing the factory.
func SetServices(p *Pipeline) {
	searchService = p.Search
	ingestService = p.Ingest
	documentService = p.Document
	metricsHandler = p.Metrics
	pipelineClose = p.Close
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx and releases the pipeline afterwards.
func ExecuteContext(ctx context.Context) error {
	defer closePipeline()
	return rootCmd.ExecuteContext(ctx)
}

// ensurePipeline builds the pipeline services the first time a command needs them.
// Commands that only touch settings never pay for opening the store.
func ensurePipeline(cmd *cobra.Command) error {
	if searchService != nil && ingestService != nil && documentService != nil {
		return nil
	}
	if pipelineFactory == nil {
		return errors.New("pipeline not configured")
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("invalid settings (see 'sercha-pdf settings'): %w", err)
	}

	p, err := pipelineFactory(cmd.Context(), settings)
	if err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}
	SetServices(p)
	return nil
}

func closePipeline() {
	if pipelineClose == nil {
		return
	}
	if err := pipelineClose(); err != nil {
		logger.Warn("closing pipeline: %v", err)
	}
	pipelineClose = nil
}
