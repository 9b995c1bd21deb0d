package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/tui"
	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

var tuiTopK int

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal interface.

Type a query and press Enter to search. Tab switches to the list of
ingested documents. Press Ctrl+C to quit.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiTopK, "top-k", "k", 0, "results per query (configured default when unset)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if err := ensurePipeline(cmd); err != nil {
		return err
	}
	if searchService == nil {
		return errors.New("search service not configured")
	}

	ports := &tui.Ports{Search: searchService, Document: documentService}
	if cmd.Flags().Changed("top-k") {
		if err := domain.ValidateTopK(tuiTopK); err != nil {
			return err
		}
		k := tuiTopK
		ports.TopK = &k
	}
	return tui.Run(cmd.Context(), ports)
}
