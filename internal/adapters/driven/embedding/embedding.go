// Package embedding holds helpers shared by the embedding provider adapters.
// Each provider lives in its own subpackage.
package embedding

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

// DefaultBackoff is used when a provider answers 429 without Retry-After.
const DefaultBackoff = 30 * time.Second

// RateLimiter throttles calls to a remote embedding provider.
// It uses a token bucket with an extra backoff window after 429 responses.
// A nil *RateLimiter never blocks.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained calls.
// Returns nil when requestsPerSecond is not positive, which disables limiting.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Wait blocks until a request may be sent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return r.limiter.Wait(ctx)
}

// Backoff delays further requests after the provider reported throttling.
// retryAfter is the raw Retry-After header value, in seconds.
func (r *RateLimiter) Backoff(retryAfter string) {
	if r == nil {
		return
	}

	wait := DefaultBackoff
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
		wait = time.Duration(secs) * time.Second
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(wait)
}

// Unavailable wraps err as an embedding failure for provider.
// Context cancellation is kept visible to callers through errors.Is.
func Unavailable(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrEmbeddingUnavailable, provider, err)
}

// CheckVectors verifies a provider returned one vector of the expected size per input.
func CheckVectors(provider string, vectors [][]float32, inputs, dimensions int) error {
	if len(vectors) != inputs {
		return Unavailable(provider, fmt.Errorf("expected %d embeddings, got %d", inputs, len(vectors)))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return Unavailable(provider, fmt.Errorf("embedding %d is empty", i))
		}
		if dimensions > 0 && len(v) != dimensions {
			return Unavailable(provider, fmt.Errorf("%w: got %d, expected %d",
				domain.ErrDimensionMismatch, len(v), dimensions))
		}
	}
	return nil
}

// ToFloat32 converts a provider's float64 vector.
func ToFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
