package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

func TestNewRateLimiter_DisabledWhenZero(t *testing.T) {
	var r *RateLimiter = NewRateLimiter(0)
	assert.Nil(t, r)

	// A nil limiter never blocks and ignores backoff.
	r.Backoff("10")
	assert.NoError(t, r.Wait(context.Background()))
}

func TestRateLimiter_WaitAllowsBurst(t *testing.T) {
	r := NewRateLimiter(100)
	require.NotNil(t, r)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for range 5 {
		require.NoError(t, r.Wait(ctx))
	}
}

func TestRateLimiter_BackoffHonoursContext(t *testing.T) {
	r := NewRateLimiter(100)
	r.Backoff("60")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_BackoffDefault(t *testing.T) {
	r := NewRateLimiter(1)
	r.Backoff("not-a-number")

	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	assert.WithinDuration(t, time.Now().Add(DefaultBackoff), retryAt, time.Second)
}

func TestUnavailable(t *testing.T) {
	err := Unavailable("openai", context.Canceled)

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "openai")
}

func TestCheckVectors(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float32
		inputs  int
		dims    int
		wantErr error
	}{
		{name: "ok", vectors: [][]float32{{1, 2}, {3, 4}}, inputs: 2, dims: 2},
		{name: "dims unchecked", vectors: [][]float32{{1, 2, 3}}, inputs: 1, dims: 0},
		{name: "count mismatch", vectors: [][]float32{{1, 2}}, inputs: 2, dims: 2, wantErr: domain.ErrEmbeddingUnavailable},
		{name: "empty vector", vectors: [][]float32{{}}, inputs: 1, dims: 2, wantErr: domain.ErrEmbeddingUnavailable},
		{name: "wrong size", vectors: [][]float32{{1, 2, 3}}, inputs: 1, dims: 2, wantErr: domain.ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVectors("test", tt.vectors, tt.inputs, tt.dims)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestToFloat32(t *testing.T) {
	assert.Equal(t, []float32{0.5, -1}, ToFloat32([]float64{0.5, -1}))
	assert.Empty(t, ToFloat32(nil))
}
