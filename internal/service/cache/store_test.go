package cache

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissingKey(t *testing.T) {
	s := NewStore(clockwork.NewFakeClock(), 4)

	v, found, fresh := s.Get("quote:AAPL")
	assert.Nil(t, v)
	assert.False(t, found)
	assert.False(t, fresh)
}

func TestGetFreshWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewStore(clock, 4)

	s.Set("quote:AAPL", 101.5, 15*time.Second)
	clock.Advance(10 * time.Second)

	v, found, fresh := s.Get("quote:AAPL")
	require.True(t, found)
	assert.True(t, fresh)
	assert.Equal(t, 101.5, v)
}

func TestStaleEntryStaysReadable(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewStore(clock, 4)

	s.Set("quote:AAPL", 101.5, 15*time.Second)
	clock.Advance(20 * time.Second)

	v, found, fresh := s.Get("quote:AAPL")
	require.True(t, found)
	assert.False(t, fresh)
	assert.Equal(t, 101.5, v)
}

func TestFreshnessBoundaryIsExclusive(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewStore(clock, 4)

	s.Set("quote:AAPL", 101.5, 15*time.Second)
	clock.Advance(15 * time.Second)

	// At exactly TTL the entry is stale: fresh requires age strictly below TTL.
	_, found, fresh := s.Get("quote:AAPL")
	require.True(t, found)
	assert.False(t, fresh)
}

func TestInvalidate(t *testing.T) {
	s := NewStore(clockwork.NewFakeClock(), 4)

	s.Set("quote:AAPL", 101.5, 15*time.Second)
	s.Invalidate("quote:AAPL")

	_, found, _ := s.Get("quote:AAPL")
	assert.False(t, found)
}

func TestEvictDeadKeepsMerelyStale(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewStore(clock, 4)

	s.Set("stale", "a", 15*time.Second)
	s.Set("dead", "b", 1*time.Second)

	// 20s: "stale" is past TTL but under 4x; "dead" is far past 4x its TTL.
	clock.Advance(20 * time.Second)
	evicted := s.EvictDead()

	assert.Equal(t, 1, evicted)
	_, found, _ := s.Get("stale")
	assert.True(t, found)
	_, found, _ = s.Get("dead")
	assert.False(t, found)
}

func TestEvictDeadAtExactBoundary(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewStore(clock, 4)

	s.Set("edge", "v", 15*time.Second)
	clock.Advance(60 * time.Second) // exactly 4x TTL

	assert.Equal(t, 0, s.EvictDead(), "age must exceed the bound, not equal it")

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, s.EvictDead())
}

func TestReaperSweeps(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := NewStore(clock, 2)

	s.Set("k", "v", time.Second)

	swept := make(chan int, 1)
	stop := s.StartReaper(time.Minute, func(n int) { swept <- n })
	defer stop()

	clock.Advance(time.Minute + time.Second)

	select {
	case n := <-swept:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("reaper did not run")
	}
	assert.Equal(t, 0, s.Len())
}
