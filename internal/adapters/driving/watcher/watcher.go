// Package watcher ingests PDFs as they appear in a directory.
//
// Create and write events are collected until the directory has been quiet
// for the debounce interval, then the pending files go through the ingest
// service as one batch. Subdirectories are not watched.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-pdf/internal/logger"
)

// DefaultDebounce is how long the directory must be quiet before a batch runs.
const DefaultDebounce = 2 * time.Second

// ReportHandler receives the report of every batch the watcher runs.
type ReportHandler func(*domain.BatchIngestReport)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithReportHandler registers a callback for batch reports.
func WithReportHandler(h ReportHandler) Option {
	return func(w *Watcher) {
		w.onReport = h
	}
}

// WithInitialScan ingests the PDFs already in the directory before watching.
func WithInitialScan(enabled bool) Option {
	return func(w *Watcher) {
		w.initialScan = enabled
	}
}

// Watcher feeds new or changed PDFs in one directory to the ingest service.
type Watcher struct {
	ingest      driving.IngestService
	dir         string
	debounce    time.Duration
	initialScan bool
	onReport    ReportHandler
}

// New creates a watcher for dir.
func New(ingest driving.IngestService, dir string, opts ...Option) (*Watcher, error) {
	if ingest == nil {
		return nil, errors.New("watcher: ingest service is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	w := &Watcher{
		ingest:   ingest,
		dir:      abs,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Dir returns the absolute watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run watches until ctx is cancelled. Files still pending at cancellation
// are dropped.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.Info("Watching %s for PDF files", w.dir)

	if w.initialScan {
		w.scan(ctx)
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			path, ok := w.handleFsEvent(ev)
			if !ok {
				continue
			}
			logger.Debug("queued %s (%s)", path, ev.Op)
			pending[path] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			slices.Sort(paths)
			w.flush(ctx, paths)
		}
	}
}

// handleFsEvent returns the path to ingest for ev, if any.
func (w *Watcher) handleFsEvent(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return "", false
	}
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") || !domain.IsPDFName(name) {
		return "", false
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return ev.Name, true
}

func (w *Watcher) scan(ctx context.Context) {
	report, err := w.ingest.IngestDirectory(ctx, w.dir)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			logger.Info("no existing PDFs in %s", w.dir)
			return
		}
		logger.Warn("initial scan failed: %v", err)
		return
	}
	w.report(report)
}

func (w *Watcher) flush(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	report, err := w.ingest.IngestPaths(ctx, paths)
	if err != nil {
		logger.Warn("ingesting %d file(s) failed: %v", len(paths), err)
		return
	}
	w.report(report)
}

func (w *Watcher) report(report *domain.BatchIngestReport) {
	logger.Info("%s", report.Message)
	for _, r := range report.Results {
		if !r.Succeeded() {
			logger.Warn("%s: %s", r.Name, r.Error)
		}
	}
	if w.onReport != nil {
		w.onReport(report)
	}
}
