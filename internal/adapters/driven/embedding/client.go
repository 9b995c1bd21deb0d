package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response is quoted in errors.
const maxErrorBody = 512

// JSONClient talks to a provider's JSON-over-HTTP API. Every request waits
// on the shared rate limiter and every failure is reported as
// domain.ErrEmbeddingUnavailable.
type JSONClient struct {
	provider string
	baseURL  string
	header   http.Header
	http     *http.Client
	limiter  *RateLimiter
}

// NewJSONClient creates a client for provider rooted at baseURL.
// requestsPerSecond of zero disables rate limiting.
func NewJSONClient(provider, baseURL string, timeout time.Duration, requestsPerSecond float64) *JSONClient {
	return &JSONClient{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		header:   make(http.Header),
		http:     &http.Client{Timeout: timeout},
		limiter:  NewRateLimiter(requestsPerSecond),
	}
}

// SetHeader adds a header sent with every request.
func (c *JSONClient) SetHeader(key, value string) {
	c.header.Set(key, value)
}

// BaseURL returns the API root.
func (c *JSONClient) BaseURL() string {
	return c.baseURL
}

// Post sends in as JSON to path and decodes the response into out.
func (c *JSONClient) Post(ctx context.Context, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return Unavailable(c.provider, err)
	}

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")

	data, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return Unavailable(c.provider, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// Get requests path and discards the body. Used for connectivity checks
// that must not run inference.
func (c *JSONClient) Get(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	_, err = c.do(req)
	return err
}

func (c *JSONClient) do(req *http.Request) ([]byte, error) {
	for k, v := range c.header {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, Unavailable(c.provider, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Unavailable(c.provider, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.Backoff(resp.Header.Get("Retry-After"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody] + "..."
		}
		return nil, Unavailable(c.provider, fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}
	return data, nil
}

// InBatches calls embed on consecutive slices of at most size texts and
// concatenates the results in input order.
func InBatches(texts []string, size int, embed func([]string) ([][]float32, error)) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		batch, err := embed(texts[start:min(start+size, len(texts))])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}
