package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ppiankov/dii/internal/model"
)

const (
	fetchAttempts = 3
	maxRetryAfter = 30 * time.Second
)

// keptHeaders are copied into FetchMeta for the report.
var keptHeaders = []string{"Content-Length", "Server", "Cache-Control", "ETag"}

// StatusError is a non-2xx reply from a company site.
type StatusError struct {
	URL        string
	Code       int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s answered %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Temporary reports whether asking again later may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Fetcher downloads company pages for enrichment.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64

	// wait pauses between attempts; it returns early with ctx's error.
	wait func(ctx context.Context, d time.Duration) error
}

func NewFetcher(client *http.Client, userAgent string, maxBytes int64) *Fetcher {
	return &Fetcher{client: client, userAgent: userAgent, maxBytes: maxBytes, wait: sleepCtx}
}

// Page is a downloaded company page.
type Page struct {
	HTML     string
	Meta     model.FetchMeta
	FinalURL string
}

// Fetch makes a single attempt. Bodies beyond maxBytes are cut off.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("company url: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")
	req.Header.Set("Accept-Language", "en;q=0.9,*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			URL:        rawURL,
			Code:       resp.StatusCode,
			RetryAfter: retryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}

	meta := model.FetchMeta{
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		Headers:      map[string]string{},
	}
	for _, h := range keptHeaders {
		if v := resp.Header.Get(h); v != "" {
			meta.Headers[h] = v
		}
	}
	return &Page{HTML: string(body), Meta: meta, FinalURL: resp.Request.URL.String()}, nil
}

// FetchWithRetry repeats Fetch after connection failures, 429 and 5xx
// replies. The pause grows by a second per attempt unless the site asks
// for a longer one with Retry-After.
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*Page, error) {
	for attempt := 1; ; attempt++ {
		page, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		pause, retry := retryable(err)
		if !retry || attempt == fetchAttempts || ctx.Err() != nil {
			return nil, err
		}
		pause = max(pause, time.Duration(attempt)*time.Second)
		if werr := f.wait(ctx, pause); werr != nil {
			return nil, errors.Join(err, werr)
		}
	}
}

type transportError struct{ err error }

func (e *transportError) Error() string { return "fetch: " + e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// retryable classifies a Fetch error and returns the pause the server asked for.
func retryable(err error) (time.Duration, bool) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.RetryAfter, se.Temporary()
	}
	var te *transportError
	return 0, errors.As(err, &te)
}

// retryAfter reads a Retry-After value in seconds or as an HTTP date.
func retryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	var d time.Duration
	if secs, err := strconv.Atoi(v); err == nil {
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(v); err == nil {
		d = at.Sub(now)
	}
	return min(max(d, 0), maxRetryAfter)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
