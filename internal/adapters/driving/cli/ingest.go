package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

var (
	ingestDir        string
	ingestIDFromPath bool
	ingestJSON       bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file.pdf...]",
	Short: "Ingest PDF files",
	Long: `Extracts, chunks, embeds and stores one or more PDF files.

Re-ingesting a document replaces all of its previous chunks. A document's id
is its file name unless --id-from-path is given, in which case the absolute
path is used so equally named files in different folders stay apart.

Examples:
  sercha-pdf ingest report.pdf appendix.pdf
  sercha-pdf ingest --dir ./papers`,
	Args: func(cmd *cobra.Command, args []string) error {
		if ingestDir != "" && len(args) > 0 {
			return errors.New("pass files or --dir, not both")
		}
		if ingestDir == "" && len(args) == 0 {
			return errors.New("requires at least one PDF file or --dir")
		}
		return nil
	},
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestDir, "dir", "d", "", "ingest every *.pdf directly inside this directory")
	ingestCmd.Flags().BoolVar(&ingestIDFromPath, "id-from-path", false, "use the absolute file path as document id")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensurePipeline(cmd); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()
	var (
		report *domain.BatchIngestReport
		err    error
	)
	switch {
	case ingestDir != "":
		report, err = ingestService.IngestDirectory(ctx, ingestDir)
	case ingestIDFromPath:
		report, err = ingestService.IngestFiles(ctx, readInputsWithPathIDs(args))
	default:
		report, err = ingestService.IngestPaths(ctx, args)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
	} else {
		outputIngestReport(cmd, report)
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed", report.Failed, report.Total)
	}
	return nil
}

// readInputsWithPathIDs stages files keyed by absolute path.
func readInputsWithPathIDs(paths []string) []domain.IngestInput {
	inputs := make([]domain.IngestInput, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		inputs[i] = domain.IngestInput{DocumentID: abs, Name: p}

		data, err := os.ReadFile(p)
		if err != nil {
			inputs[i].ReadErr = fmt.Errorf("%w: %w", domain.ErrUnreadableDocument, err)
			continue
		}
		inputs[i].Data = data
	}
	return inputs
}

func outputIngestReport(cmd *cobra.Command, report *domain.BatchIngestReport) {
	for _, r := range report.Results {
		if r.Succeeded() {
			cmd.Printf("  ok    %s (%d pages, %d chunks)\n", r.DocumentID, r.PageCount, r.ChunkCount)
			continue
		}
		cmd.Printf("  FAIL  %s at %s: %s\n", displayName(r), r.Stage, r.Error)
	}
	cmd.Println()
	cmd.Println(report.Message)
}

func displayName(r domain.IngestResult) string {
	if r.DocumentID != "" {
		return r.DocumentID
	}
	return r.Name
}
