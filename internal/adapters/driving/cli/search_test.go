package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
	assert.Equal(t, "Search ingested documents", searchCmd.Short)
}

func TestSearchCmd_Flags(t *testing.T) {
	flag := searchCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
	assert.NotNil(t, searchCmd.Flags().Lookup("json"))
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	_, err := execute(t, "search")

	assert.Error(t, err)
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	ts, cleanup := setupTestServices(t)
	defer cleanup()
	ts.search.results = []domain.SearchResult{
		{ChunkID: "c1", Text: "Solar panels\nconvert light", DocumentID: "solar.pdf", PageNumber: 3, Score: 0.91},
		{ChunkID: "c2", Text: "Wind turbines", DocumentID: "wind.pdf", PageNumber: 1, Score: 0.42},
	}

	out, err := execute(t, "search", "solar", "energy", "-k", "2")

	require.NoError(t, err)
	assert.Equal(t, "solar energy", ts.search.lastQuery)
	require.NotNil(t, ts.search.lastOpts.TopK)
	assert.Equal(t, 2, *ts.search.lastOpts.TopK)
	assert.Contains(t, out, "[1] 0.9100  solar.pdf  p.3")
	assert.Contains(t, out, "Solar panels convert light")
	assert.Contains(t, out, "[2] 0.4200  wind.pdf  p.1")
}

func TestSearchCmd_NoResults(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices(t)
	defer cleanup()
	ts.search.results = []domain.SearchResult{{ChunkID: "c1", DocumentID: "a.pdf", PageNumber: 2, Score: 0.5}}

	out, err := execute(t, "search", "q", "--json")

	require.NoError(t, err)
	var got []domain.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, ts.search.results, got)
}

func TestSearchCmd_JSONEmpty(t *testing.T) {
	_, cleanup := setupTestServices(t)
	defer cleanup()

	out, err := execute(t, "search", "q", "--json")

	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestSearchCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices(t)
	defer cleanup()
	ts.search.err = fmt.Errorf("%w: top_k must be between 1 and 100", domain.ErrInvalidQueryParameter)

	_, err := execute(t, "search", "q", "-k", "500")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidQueryParameter)
	assert.Contains(t, err.Error(), "search failed")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n b\t\tc", 10))
	assert.Equal(t, "héll...", snippet("héllo world", 4))
	assert.Empty(t, snippet("   ", 5))
}

func TestSearchCmd_TopK(t *testing.T) {
	t.Run("unset defers to the service default", func(t *testing.T) {
		ts, cleanup := setupTestServices(t)
		defer cleanup()

		_, err := execute(t, "search", "query")

		require.NoError(t, err)
		assert.Nil(t, ts.search.lastOpts.TopK)
	})

	t.Run("explicit zero is passed through", func(t *testing.T) {
		ts, cleanup := setupTestServices(t)
		defer cleanup()

		_, err := execute(t, "search", "query", "--top-k", "0")

		require.NoError(t, err)
		require.NotNil(t, ts.search.lastOpts.TopK)
		assert.Zero(t, *ts.search.lastOpts.TopK)
	})
}
