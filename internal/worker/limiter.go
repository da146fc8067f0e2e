package worker

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// Per-host limiters idle longer than this are dropped.
const limiterIdle = 30 * time.Minute

// Limiter rate-limits outbound requests per host. It is shared by website
// enrichment and the remote question and incident providers.
type Limiter struct {
	limiters     *gocache.Cache
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter allowing requestsPerSecond per host. A
// non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     gocache.New(limiterIdle, limiterIdle/2),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until a request to rawURL's host is allowed.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host, err := Host(rawURL)
	if err != nil {
		return err
	}
	return l.forHost(host).Wait(ctx)
}

// Allow reports whether a request may happen now, consuming a token if so.
func (l *Limiter) Allow(rawURL string) bool {
	host, err := Host(rawURL)
	if err != nil {
		return false
	}
	return l.forHost(host).Allow()
}

// WaitWithDelay waits for the limiter and then for an extra delay, such as a
// robots.txt crawl delay.
func (l *Limiter) WaitWithDelay(ctx context.Context, rawURL string, delay time.Duration) error {
	if err := l.Wait(ctx, rawURL); err != nil {
		return err
	}
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SetHostRate overrides the rate for one host. Overrides never expire.
func (l *Limiter) SetHostRate(host string, requestsPerSecond float64, burst int) {
	if burst <= 0 {
		burst = l.defaultBurst
	}
	l.limiters.Set(host, rate.NewLimiter(rate.Limit(requestsPerSecond), burst), gocache.NoExpiration)
}

func (l *Limiter) forHost(host string) *rate.Limiter {
	if v, ok := l.limiters.Get(host); ok {
		return v.(*rate.Limiter)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.limiters.Get(host); ok {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters.SetDefault(host, limiter)
	return limiter
}

// Host returns the host part of rawURL.
func Host(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("parse URL %q: missing host", rawURL)
	}
	return parsed.Host, nil
}
