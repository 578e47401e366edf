// Package website turns a company domain into extracted page content.
package website

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ainager-onboarding/internal/domain"
	"github.com/ainager-onboarding/internal/infrastructure/telemetry"
	"github.com/ainager-onboarding/internal/pkg/company"
)

// Fetcher retrieves the raw HTML at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Page is the analysis input for the knowledge synthesizer.
type Page struct {
	Domain string
	URL    string
	Extracted
}

type Analyzer struct {
	fetcher Fetcher
	metrics *telemetry.Metrics
}

func NewAnalyzer(fetcher Fetcher, metrics *telemetry.Metrics) *Analyzer {
	return &Analyzer{fetcher: fetcher, metrics: metrics}
}

// Analyze fetches the candidate website for d and extracts its content.
// A failed fetch fails the whole analysis; there is no retry.
func (a *Analyzer) Analyze(ctx context.Context, d string) (*Page, error) {
	url, html, err := a.Fetch(ctx, d)
	if err != nil {
		return nil, err
	}
	return a.Parse(d, url, html)
}

// Fetch downloads the candidate website for d and returns the URL used.
func (a *Analyzer) Fetch(ctx context.Context, d string) (string, string, error) {
	url := company.CandidateURL(d)

	start := time.Now()
	html, err := a.fetcher.Fetch(ctx, url)
	if a.metrics != nil {
		a.metrics.FetchDuration.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		return url, "", err
	}
	return url, html, nil
}

// Parse extracts page content. An untitled page is named after its domain.
func (a *Analyzer) Parse(d, url, html string) (*Page, error) {
	ex, err := Extract(html)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", url, domain.ErrUpstreamFetch, err)
	}
	if ex.Title == UntitledTitle {
		ex.Title = company.DisplayName(d)
	}
	slog.Debug("website extracted", "domain", d, "title", ex.Title, "content_chars", len(ex.Content))
	return &Page{Domain: d, URL: url, Extracted: ex}, nil
}
