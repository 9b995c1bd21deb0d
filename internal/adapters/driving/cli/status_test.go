package cli

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
	"github.com/custodia-labs/sercha-pdf/internal/core/ports/driving"
)

func TestStatusCmd(t *testing.T) {
	ts, cleanup := setupTestServices(t)
	defer cleanup()
	ts.document.status = &driving.Status{Documents: 2, Chunks: 40, Dimensions: 384, EmbeddingModel: "fnv-hash"}

	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents:  2")
	assert.Contains(t, out, "Chunks:     40")
	assert.Contains(t, out, "Dimensions: 384")
	assert.Contains(t, out, "Model:      fnv-hash")
}

func TestStatusCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices(t)
	defer cleanup()
	ts.document.status = &driving.Status{Documents: 1, Chunks: 3, Dimensions: 8, EmbeddingModel: "m"}

	out, err := execute(t, "status", "--json")

	require.NoError(t, err)
	var got driving.Status
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, *ts.document.status, got)
}

func TestStatusCmd_StoreUnavailable(t *testing.T) {
	ts, cleanup := setupTestServices(t)
	defer cleanup()
	ts.document.err = fmt.Errorf("%w: database is locked", domain.ErrStoreUnavailable)

	_, err := execute(t, "status")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
