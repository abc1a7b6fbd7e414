package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

const (
	maxRequests = 30
	windowDur   = time.Minute
)

func TestAllowUpToQuota(t *testing.T) {
	l := New(clockwork.NewFakeClock())
	ctx := context.Background()

	for i := 0; i < maxRequests; i++ {
		assert.True(t, l.Allow(ctx, "client-a", maxRequests, windowDur), "request %d", i+1)
	}
	assert.False(t, l.Allow(ctx, "client-a", maxRequests, windowDur))
}

func TestWindowResetRestoresQuota(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock)
	ctx := context.Background()

	for i := 0; i < maxRequests; i++ {
		l.Allow(ctx, "client-a", maxRequests, windowDur)
	}
	assert.False(t, l.Allow(ctx, "client-a", maxRequests, windowDur))

	clock.Advance(windowDur)

	// The first request after the window elapses starts a new count at 1.
	assert.True(t, l.Allow(ctx, "client-a", maxRequests, windowDur))
	for i := 0; i < maxRequests-1; i++ {
		assert.True(t, l.Allow(ctx, "client-a", maxRequests, windowDur), "request %d of new window", i+2)
	}
	assert.False(t, l.Allow(ctx, "client-a", maxRequests, windowDur))
}

func TestClientsAreIndependent(t *testing.T) {
	l := New(clockwork.NewFakeClock())
	ctx := context.Background()

	for i := 0; i < maxRequests; i++ {
		l.Allow(ctx, "client-a", maxRequests, windowDur)
	}
	assert.False(t, l.Allow(ctx, "client-a", maxRequests, windowDur))
	assert.True(t, l.Allow(ctx, "client-b", maxRequests, windowDur))
}

func TestPrune(t *testing.T) {
	clock := clockwork.NewFakeClock()
	l := New(clock)
	ctx := context.Background()

	l.Allow(ctx, "old", maxRequests, windowDur)
	clock.Advance(10 * time.Minute)
	l.Allow(ctx, "recent", maxRequests, windowDur)

	assert.Equal(t, 1, l.Prune(5*time.Minute))
	assert.Equal(t, 0, l.Prune(5*time.Minute))
}
