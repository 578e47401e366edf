// Package web fetches a single website page for analysis.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ainager-onboarding/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// UserAgent mimics a desktop browser; many company sites reject bare Go clients.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

const maxRedirects = 5

// Fetcher performs one bounded GET per call. It never retries.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher creates a Fetcher whose requests time out after timeout and whose
// bodies are truncated at maxBytes.
func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
	}
}

// Fetch returns the body of url. Every failure wraps domain.ErrUpstreamFetch
// together with the underlying cause.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w: %w", url, domain.ErrUpstreamFetch, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w: %w", url, domain.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch %s: %w: unexpected status %d", url, domain.ErrUpstreamFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w: %w", url, domain.ErrUpstreamFetch, err)
	}
	return string(body), nil
}
