package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/dii/internal/util"
)

// scriptedSite replies with statuses in order, then serves page.
func scriptedSite(t *testing.T, page string, statuses ...int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(hits.Add(1))
		if n <= len(statuses) {
			if statuses[n-1] == http.StatusTooManyRequests {
				w.Header().Set("Retry-After", "7")
			}
			w.WriteHeader(statuses[n-1])
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// recordingFetcher never sleeps and records the requested pauses.
func recordingFetcher(maxBytes int64) (*Fetcher, *[]time.Duration) {
	var pauses []time.Duration
	f := NewFetcher(util.NewHTTPClient(5*time.Second, nil), "dii-test", maxBytes)
	f.wait = func(ctx context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return ctx.Err()
	}
	return f, &pauses
}

func TestFetchWithRetry(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		wantHits   int32
		wantPauses []time.Duration
		wantErr    bool
	}{
		{"first try", nil, 1, nil, false},
		{"recovers from 503", []int{503, 503}, 3, []time.Duration{time.Second, 2 * time.Second}, false},
		{"honours Retry-After", []int{429}, 2, []time.Duration{7 * time.Second}, false},
		{"gives up after three", []int{500, 502, 503, 504}, 3, []time.Duration{time.Second, 2 * time.Second}, true},
		{"404 is final", []int{404}, 1, nil, true},
		{"403 is final", []int{403}, 1, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, hits := scriptedSite(t, "<html>Acme Retail</html>", tt.statuses...)
			f, pauses := recordingFetcher(1 << 20)

			page, err := f.FetchWithRetry(context.Background(), srv.URL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && page.HTML != "<html>Acme Retail</html>" {
				t.Errorf("HTML = %q", page.HTML)
			}
			if hits.Load() != tt.wantHits {
				t.Errorf("hits = %d, want %d", hits.Load(), tt.wantHits)
			}
			if fmt.Sprint(*pauses) != fmt.Sprint(tt.wantPauses) {
				t.Errorf("pauses = %v, want %v", *pauses, tt.wantPauses)
			}
		})
	}
}

func TestFetchWithRetry_StatusError(t *testing.T) {
	srv, _ := scriptedSite(t, "", 404)
	f, _ := recordingFetcher(1 << 20)

	_, err := f.FetchWithRetry(context.Background(), srv.URL)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %T %v, want *StatusError", err, err)
	}
	if se.Code != http.StatusNotFound || se.Temporary() {
		t.Errorf("unexpected status error %+v", se)
	}
}

func TestFetchWithRetry_CancelDuringPause(t *testing.T) {
	srv, hits := scriptedSite(t, "", 503, 503, 503)
	f, _ := recordingFetcher(1 << 20)

	ctx, cancel := context.WithCancel(context.Background())
	f.wait = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := f.FetchWithRetry(ctx, srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if hits.Load() != 1 {
		t.Errorf("hits = %d, want 1", hits.Load())
	}
}

func TestFetchWithRetry_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	f, pauses := recordingFetcher(1 << 20)
	if _, err := f.FetchWithRetry(context.Background(), addr); err == nil {
		t.Fatal("expected an error from a closed server")
	}
	if len(*pauses) != fetchAttempts-1 {
		t.Errorf("pauses = %v, want %d retries", *pauses, fetchAttempts-1)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		retry bool
		pause time.Duration
	}{
		{"nil", nil, false, 0},
		{"cancelled", context.Canceled, false, 0},
		{"deadline inside transport", &transportError{err: context.DeadlineExceeded}, false, 0},
		{"connection reset", &transportError{err: errors.New("connection reset by peer")}, true, 0},
		{"429 with pause", &StatusError{Code: 429, RetryAfter: 3 * time.Second}, true, 3 * time.Second},
		{"500", &StatusError{Code: 500}, true, 0},
		{"401", &StatusError{Code: 401}, false, 0},
		{"bad url", errors.New("company url: parse error"), false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pause, retry := retryable(tt.err)
			if retry != tt.retry || pause != tt.pause {
				t.Errorf("retryable = (%v, %v), want (%v, %v)", pause, retry, tt.pause, tt.retry)
			}
		})
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	tests := map[string]time.Duration{
		"":                              0,
		"5":                             5 * time.Second,
		"-4":                            0,
		"3600":                          maxRetryAfter,
		"Mon, 02 Mar 2026 10:00:12 GMT": 12 * time.Second,
		"soon":                          0,
	}
	for in, want := range tests {
		if got := retryAfter(in, now); got != want {
			t.Errorf("retryAfter(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFetch_MetaAndLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "dii-test" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Server", "nginx")
		w.Header().Set("Last-Modified", "Mon, 02 Mar 2026 10:00:00 GMT")
		_, _ = fmt.Fprint(w, "<html>0123456789</html>")
	}))
	defer srv.Close()

	f, _ := recordingFetcher(10)
	page, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if page.HTML != "<html>0123" {
		t.Errorf("body not cut at 10 bytes: %q", page.HTML)
	}
	if page.Meta.StatusCode != http.StatusOK || page.Meta.ContentType != "text/html" || page.Meta.LastModified == "" {
		t.Errorf("meta = %+v", page.Meta)
	}
	if page.Meta.Headers["ETag"] != `"v1"` || page.Meta.Headers["Server"] != "nginx" {
		t.Errorf("headers = %v", page.Meta.Headers)
	}
}

func TestSleepCtx(t *testing.T) {
	if err := sleepCtx(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("sleepCtx: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepCtx(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
