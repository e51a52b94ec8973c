package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/johnquangdev/interview-scoring/internal/domain/entities"
)

// maxResponseBytes bounds how much of an upstream body is read
const maxResponseBytes = 4 << 20

// retryPolicy bounds how often a client repeats a call that failed transiently
type retryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var defaultRetry = retryPolicy{
	MaxRetries:      2,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     4 * time.Second,
}

// do runs op until it succeeds, fails permanently or the retries are spent.
// Only ErrUpstreamUnavailable is retried. The last backend error is returned
// even when ctx ended the loop, so callers keep the error kind.
func (p retryPolicy) do(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.MaxInterval = p.MaxInterval
	bo.MaxElapsedTime = 0

	var last error
	err := backoff.Retry(func() error {
		last = op()
		if last != nil && !entities.IsRetryable(last) {
			return backoff.Permanent(last)
		}
		return last
	}, backoff.WithContext(backoff.WithMaxRetries(bo, p.MaxRetries), ctx))
	if err != nil && last != nil {
		return last
	}
	return err
}

// doJSON posts body and returns the response payload. Transport failures and
// non-2xx statuses come back as retryable BackendErrors.
func doJSON(ctx context.Context, client *http.Client, backend, method, url string, body []byte, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, entities.Unavailable(backend, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, entities.Unavailable(backend, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, entities.Unavailable(backend, resp.StatusCode, fmt.Errorf("upstream said: %s", truncate(string(data), 200)))
	}
	return data, nil
}

// doJSONRetry is doJSON under the retry policy
func doJSONRetry(ctx context.Context, p retryPolicy, client *http.Client, backend, method, url string, body []byte, headers map[string]string) ([]byte, error) {
	var data []byte
	err := p.do(ctx, func() error {
		var err error
		data, err = doJSON(ctx, client, backend, method, url, body, headers)
		return err
	})
	return data, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
