package provider

import (
	"context"
	"sync"
)

// Latest holds the newest successful result of a repeated boundary call.
// Every call takes a token from Begin; a result is kept only if no newer
// call has started since and the call succeeded. Stale and failed results
// are dropped without an error.
type Latest[T any] struct {
	mu    sync.Mutex
	token uint64
	value T
	ok    bool
}

// Begin starts a call and supersedes every earlier one.
func (l *Latest[T]) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.token++
	return l.token
}

// Offer stores v if token is still current and err is nil. It reports
// whether v was kept.
func (l *Latest[T]) Offer(token uint64, v T, err error) bool {
	if err != nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if token != l.token {
		return false
	}
	l.value, l.ok = v, true
	return true
}

// Get returns the last kept value.
func (l *Latest[T]) Get() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.ok
}

// Fetch runs call under a fresh token and returns its value if it was kept.
func Fetch[T any](ctx context.Context, l *Latest[T], call func(context.Context) (T, error)) (T, bool) {
	token := l.Begin()
	v, err := call(ctx)
	if !l.Offer(token, v, err) {
		var zero T
		return zero, false
	}
	return v, true
}
