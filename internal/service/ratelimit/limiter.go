package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type window struct {
	start time.Time
	count int
}

// Limiter tracks request counts per client key with window-reset semantics:
// the first request after the window elapses resets the count to 1.
type Limiter struct {
	mu    sync.Mutex
	m     map[string]*window
	clock clockwork.Clock
}

func New(clock clockwork.Clock) *Limiter {
	return &Limiter{m: make(map[string]*window), clock: clock}
}

// Allow reports whether clientKey may make another upstream request within
// the current window.
func (l *Limiter) Allow(_ context.Context, clientKey string, maxRequests int, windowDur time.Duration) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.m[clientKey]
	if !ok || !now.Before(w.start.Add(windowDur)) {
		l.m[clientKey] = &window{start: now, count: 1}
		return true
	}

	w.count++
	return w.count <= maxRequests
}

// Prune drops windows that ended before the cutoff so the map does not grow
// without bound across many distinct client keys.
func (l *Limiter) Prune(olderThan time.Duration) int {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.m {
		if now.Sub(w.start) > olderThan {
			delete(l.m, key)
			removed++
		}
	}
	return removed
}
