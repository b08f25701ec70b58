package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/chartdeck/pkg/buildinfo"
	"github.com/matzehuels/chartdeck/pkg/errors"
	"github.com/matzehuels/chartdeck/pkg/httputil"
	"github.com/matzehuels/chartdeck/pkg/observability"
)

// HTTP posts events as JSON to a webhook.
type HTTP struct {
	url      string
	client   *http.Client
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// HTTPOption configures an HTTP notifier.
type HTTPOption func(*HTTP)

// WithClient sets the HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) HTTPOption {
	return func(h *HTTP) { h.headers[key] = value }
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.attempts = attempts
		h.delay = delay
	}
}

// NewHTTP creates a webhook notifier for url.
func NewHTTP(url string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		url:      url,
		client:   httputil.NewClient(0),
		headers:  map[string]string{},
		attempts: 3,
		delay:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Notify posts e. Network failures and 5xx/429 responses are retried.
func (h *HTTP) Notify(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode event")
	}

	err = httputil.Retry(ctx, h.attempts, h.delay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", buildinfo.UserAgent())
		for k, v := range h.headers {
			req.Header.Set(k, v)
		}

		hooks := observability.HTTP()
		host, path := req.URL.Host, req.URL.Path
		hooks.OnRequest(ctx, req.Method, host, path)
		start := time.Now()
		resp, err := h.client.Do(req)
		if err != nil {
			hooks.OnError(ctx, req.Method, host, path, err)
			return &httputil.RetryableError{Err: fmt.Errorf("post event: %w", err)}
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
		return httputil.CheckStatus(resp)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotifierDelivery, err, "deliver %s", e)
	}
	return nil
}
