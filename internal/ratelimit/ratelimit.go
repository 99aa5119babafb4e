// Package ratelimit provides the per-user, per-endpoint request limiter
// consulted before expensive scoring calls.
package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of one limit check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter is a fixed-window counter keyed by (user, endpoint). Windows
// are swept lazily on access.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

// New returns an empty limiter.
func New() *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Check consumes one request from the (userID, endpoint) window and
// reports whether it was allowed, how many requests remain, and when
// the window resets. A non-positive limit always allows.
func (l *Limiter) Check(userID, endpoint string, limit int, windowMinutes int) Result {
	if limit <= 0 {
		return Result{Allowed: true, Remaining: 0, ResetTime: l.now()}
	}

	key := userID + "|" + endpoint
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(time.Duration(windowMinutes) * time.Minute)}
		l.windows[key] = w
	}

	if w.count >= limit {
		return Result{Allowed: false, Remaining: 0, ResetTime: w.resetAt}
	}
	w.count++
	return Result{Allowed: true, Remaining: limit - w.count, ResetTime: w.resetAt}
}

// Reset clears the window for a key, for tests and admin overrides.
func (l *Limiter) Reset(userID, endpoint string) {
	l.mu.Lock()
	delete(l.windows, userID+"|"+endpoint)
	l.mu.Unlock()
}
