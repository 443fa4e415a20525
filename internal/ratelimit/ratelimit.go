package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter throttles actions per caller identifier over a fixed window.
// Injected everywhere so tests can reset state deterministically.
type Limiter interface {
	// Allow records one attempt for key and reports whether it is within
	// the limit. When blocked, retryAfter is the time until the window
	// resets.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
	// Reset clears the counter for key (e.g. after a successful login).
	Reset(ctx context.Context, key string) error
}

type entry struct {
	count     int
	resetTime time.Time
}

// MemoryLimiter is a process-local fixed-window limiter. Windows reset
// lazily on the first attempt past resetTime; state is lost on restart,
// which is acceptable for a low-volume moderation workflow.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*entry
	now     func() time.Time
}

// NewMemoryLimiter creates an in-memory limiter allowing limit attempts
// per window
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow implements Limiter
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || now.After(e.resetTime) {
		l.entries[key] = &entry{count: 1, resetTime: now.Add(l.window)}
		return true, 0, nil
	}

	if e.count >= l.limit {
		return false, e.resetTime.Sub(now), nil
	}
	e.count++
	return true, 0, nil
}

// Reset implements Limiter
func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
	return nil
}
