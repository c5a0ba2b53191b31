package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"

	"github.com/pfrederiksen/fixture-sync/internal/logger"
)

const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultReferer        = "https://www.google.com/"
	DefaultAcceptLanguage = "pt-BR,pt;q=0.9,en-US;q=0.8,en;q=0.7"
	DefaultTimeout        = 30 * time.Second
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = time.Second
)

// FetchError is returned when a page could not be retrieved after all attempts.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Page is the outcome of a fetch. NotPublished is set for 404/410 responses, which mean
// the source has not published the page yet.
type Page struct {
	URL          string
	Body         string
	StatusCode   int
	NotPublished bool
}

// FetcherConfig configures a Fetcher. Zero values fall back to the defaults above.
type FetcherConfig struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	Timeout        time.Duration
	UserAgent      string
	Referer        string
	AcceptLanguage string
}

// Fetcher retrieves source pages with retries and browser-like headers
type Fetcher struct {
	client      *resty.Client
	maxAttempts int
	baseDelay   time.Duration
}

// NewFetcher creates a new Fetcher
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Referer == "" {
		cfg.Referer = DefaultReferer
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = DefaultAcceptLanguage
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Referer", cfg.Referer).
		SetHeader("Accept-Language", cfg.AcceptLanguage).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return &Fetcher{
		client:      client,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   cfg.BaseDelay,
	}
}

// linearBackOff waits attempt×step before each retry.
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.step
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

// Fetch retrieves url. A 404 or 410 response yields a Page with NotPublished set and a nil
// error. Other failures are retried and end in a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Page, error) {
	page := Page{URL: url}
	attempts := 0

	operation := func() error {
		attempts++

		resp, err := f.client.R().SetContext(ctx).Get(url)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return errors.Wrap(err, "request failed")
		}

		page.StatusCode = resp.StatusCode()
		switch {
		case resp.StatusCode() == http.StatusNotFound || resp.StatusCode() == http.StatusGone:
			page.NotPublished = true
			return nil
		case resp.IsSuccess():
			page.Body = resp.String()
			return nil
		default:
			return errors.Newf("unexpected status code: %d", resp.StatusCode())
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: f.baseDelay}, uint64(f.maxAttempts-1)),
		ctx,
	)

	notify := func(err error, wait time.Duration) {
		logger.Warn("Fetch attempt failed, retrying", logger.Fields{
			"url":     url,
			"attempt": attempts,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return Page{URL: url, StatusCode: page.StatusCode}, &FetchError{URL: url, Attempts: attempts, Err: err}
	}

	return page, nil
}
