package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// pageBreak is the form feed pdftotext emits after every page.
const pageBreak = "\f"

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PopplerExtractor runs pdftotext on a temporary copy of the payload.
type PopplerExtractor struct {
	runner CommandRunner
}

// NewPopplerExtractor creates an extractor backed by the pdftotext binary.
func NewPopplerExtractor() *PopplerExtractor {
	return NewPopplerExtractorWithRunner(execRunner{})
}

// NewPopplerExtractorWithRunner creates an extractor with a custom runner.
func NewPopplerExtractorWithRunner(runner CommandRunner) *PopplerExtractor {
	return &PopplerExtractor{runner: runner}
}

// Name returns the backend name.
func (e *PopplerExtractor) Name() string {
	return BackendPDFToText
}

// ExtractPages runs pdftotext and splits its output on form feeds.
func (e *PopplerExtractor) ExtractPages(ctx context.Context, data []byte) ([]string, error) {
	tmp, err := os.CreateTemp("", "sercha-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("stage temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("stage temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("stage temp file: %w", err)
	}

	out, err := e.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", "-layout", tmp.Name(), "-")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("pdftotext failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("pdftotext failed: %w", err)
	}

	return splitPages(string(out)), nil
}

// splitPages splits pdftotext output into pages. The trailing form feed
// after the last page does not start a new page.
func splitPages(out string) []string {
	out = strings.TrimSuffix(out, pageBreak)
	if out == "" {
		return []string{""}
	}
	return strings.Split(out, pageBreak)
}

// CheckAvailable verifies that pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform-specific installation instructions.
func InstallInstructions() string {
	return `pdftotext is part of poppler. Install it with:
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils
Or set reader.backend = "native" to use the built-in parser.`
}
