package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "sercha-pdf", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ingest", "search", "document", "status", "settings", "serve", "mcp", "watch", "tui", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
}

func TestEnsurePipeline_UsesFactory(t *testing.T) {
	ts, cleanup := setupTestServices(t)
	defer cleanup()
	clearServices()

	var (
		got    *domain.AppSettings
		closed bool
	)
	pipelineFactory = func(_ context.Context, s *domain.AppSettings) (*Pipeline, error) {
		got = s
		return &Pipeline{
			Search:   ts.search,
			Ingest:   ts.ingest,
			Document: ts.document,
			Close: func() error {
				closed = true
				return nil
			},
		}, nil
	}

	_, err := execute(t, "status")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.DefaultTopK, got.Search.DefaultTopK)

	closePipeline()
	assert.True(t, closed)
}

func TestEnsurePipeline_FactoryError(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()
	clearServices()

	pipelineFactory = func(context.Context, *domain.AppSettings) (*Pipeline, error) {
		return nil, errors.New("store locked")
	}

	_, err := execute(t, "status")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start pipeline")
	assert.Contains(t, err.Error(), "store locked")
}

func TestEnsurePipeline_InvalidSettings(t *testing.T) {
	ts, cleanup := setupTestServices(t)
	defer cleanup()
	clearServices()

	called := false
	pipelineFactory = func(context.Context, *domain.AppSettings) (*Pipeline, error) {
		called = true
		return &Pipeline{}, nil
	}
	require.NoError(t, ts.settings.Set("chunking.size", "100"))
	require.NoError(t, ts.settings.Set("chunking.overlap", "100"))

	_, err := execute(t, "status")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
	assert.False(t, called)
}

func TestEnsurePipeline_NoFactory(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()
	clearServices()

	_, err := execute(t, "status")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline not configured")
}

func TestClosePipeline_Idempotent(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	calls := 0
	pipelineClose = func() error {
		calls++
		return errors.New("already closed")
	}

	closePipeline()
	closePipeline()

	assert.Equal(t, 1, calls)
}
