package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type entry struct {
	v         any
	writtenAt time.Time
	ttl       time.Duration
}

// Store is the capability-keyed cache. Entries past their TTL are reported
// as stale but stay readable until the reaper removes them: a stale value is
// the last line of defense when every upstream source is down.
type Store struct {
	mu          sync.RWMutex
	m           map[string]entry
	clock       clockwork.Clock
	staleFactor int
}

// NewStore creates a store. staleFactor controls how long stale entries are
// retained: an entry is reaped once its age exceeds staleFactor times its TTL.
func NewStore(clock clockwork.Clock, staleFactor int) *Store {
	if staleFactor < 1 {
		staleFactor = 4
	}
	return &Store{
		m:           make(map[string]entry),
		clock:       clock,
		staleFactor: staleFactor,
	}
}

// Get returns the cached value, whether it was present at all, and whether
// it is still within its TTL.
func (s *Store) Get(key string) (any, bool, bool) {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, false
	}
	fresh := s.clock.Now().Sub(e.writtenAt) < e.ttl
	return e.v, true, fresh
}

// Set stores a value with the capability-specific TTL supplied by the caller.
func (s *Store) Set(key string, v any, ttl time.Duration) {
	s.mu.Lock()
	s.m[key] = entry{v: v, writtenAt: s.clock.Now(), ttl: ttl}
	s.mu.Unlock()
}

// Invalidate removes an entry regardless of freshness.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}

// Len returns the number of entries, stale ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// EvictDead removes entries whose age exceeds staleFactor x TTL and returns
// the count removed. Entries that are merely stale survive.
func (s *Store) EvictDead() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	evicted := 0
	for key, e := range s.m {
		if now.Sub(e.writtenAt) > time.Duration(s.staleFactor)*e.ttl {
			delete(s.m, key)
			evicted++
		}
	}
	return evicted
}

// StartReaper launches a background sweep at the given interval and returns
// a stop function.
func (s *Store) StartReaper(interval time.Duration, onEvict func(int)) func() {
	ticker := s.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				if n := s.EvictDead(); n > 0 && onEvict != nil {
					onEvict(n)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
