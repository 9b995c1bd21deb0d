package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/watcher"
	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

var (
	watchDebounce time.Duration
	watchInitial  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest PDFs as they appear in a directory",
	Long: `Watch a directory and ingest every PDF that is created or rewritten in it.

Changes are collected until the directory has been quiet for the debounce
period and then ingested as one batch. Subdirectories are not watched.
Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a batch runs")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "ingest existing PDFs before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := ensurePipeline(cmd); err != nil {
		return err
	}
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	w, err := watcher.New(ingestService, args[0],
		watcher.WithDebounce(watchDebounce),
		watcher.WithInitialScan(watchInitial),
		watcher.WithReportHandler(func(report *domain.BatchIngestReport) {
			outputIngestReport(cmd, report)
		}),
	)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", w.Dir())
	return w.Run(cmd.Context())
}
