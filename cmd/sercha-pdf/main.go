// Command sercha-pdf ingests PDF files into a local vector store and
// searches them semantically.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-pdf/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-pdf/internal/core/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cli.SetVersion(version)

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: opening config:", err)
		return err
	}

	cli.SetSettingsService(services.NewSettingsService(configStore, ai.NewConfigValidator()))
	cli.SetPipelineFactory(buildPipeline)

	return cli.ExecuteContext(ctx)
}
