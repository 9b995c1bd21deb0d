package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store totals and the embedding model",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := ensurePipeline(cmd); err != nil {
		return err
	}
	if documentService == nil {
		return errors.New("document service not configured")
	}

	status, err := documentService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Documents:  %d\n", status.Documents)
	cmd.Printf("Chunks:     %d\n", status.Chunks)
	cmd.Printf("Dimensions: %d\n", status.Dimensions)
	cmd.Printf("Model:      %s\n", orUnset(status.EmbeddingModel))
	return nil
}
