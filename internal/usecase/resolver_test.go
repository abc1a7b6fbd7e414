package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/models"
	domrepo "github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/repository"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/service/cache"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/source"
	applogger "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/logger"
)

type fakeStrategy struct {
	name   string
	quote  *models.Quote
	texts  []source.Text
	err    error
	hang   bool // block until the per-strategy time box cancels the context
	calls  int
	tcalls int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	f.calls++
	if f.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quote
	q.Symbol = symbol
	return &q, nil
}

func (f *fakeStrategy) FetchSeries(ctx context.Context, symbol, rng string) (*models.Series, error) {
	return nil, source.ErrUnsupported
}

func (f *fakeStrategy) FetchTexts(ctx context.Context, symbol string, kind source.TextKind, limit int) ([]source.Text, error) {
	f.tcalls++
	if f.err != nil {
		return nil, f.err
	}
	if f.texts == nil {
		return nil, source.ErrUnsupported
	}
	return f.texts, nil
}

type fakeLimiter struct {
	allow bool
}

func (f *fakeLimiter) Allow(context.Context, string, int, time.Duration) bool { return f.allow }

type noopMetrics struct{}

func (noopMetrics) RecordResolution(string, string, string) {}
func (noopMetrics) RecordSourceError(string, string)        {}
func (noopMetrics) RecordRateLimited(string)                {}
func (noopMetrics) RecordLastPrice(string, float64)         {}
func (noopMetrics) RecordConfidence(string, float64)        {}
func (noopMetrics) RecordLatency(string, float64)           {}

type resolverFixture struct {
	resolver *Resolver
	clock    *clockwork.FakeClock
	cache    *cache.Store
	limiter  *fakeLimiter
	primary  *fakeStrategy
	backup   *fakeStrategy
}

func newFixture(t *testing.T) *resolverFixture {
	t.Helper()

	clock := clockwork.NewFakeClock()
	store := cache.NewStore(clock, 4)
	limiter := &fakeLimiter{allow: true}
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)

	primary := &fakeStrategy{name: "primary-exchange", quote: &models.Quote{Price: 101.5}}
	backup := &fakeStrategy{name: "secondary-vendor", quote: &models.Quote{Price: 99.0}}

	r := NewResolver(
		ResolverConfig{
			QuoteTTL:      15 * time.Second,
			HistoricalTTL: time.Hour,
			NewsTTL:       30 * time.Minute,
			MaxRequests:   30,
			Window:        time.Minute,
			Timeouts: map[string]time.Duration{
				"primary-exchange": 50 * time.Millisecond,
				"secondary-vendor": 50 * time.Millisecond,
			},
		},
		store, limiter, noopMetrics{}, log,
		[]source.Strategy{primary, backup},
		source.NewStatic(nil),
	)

	return &resolverFixture{resolver: r, clock: clock, cache: store, limiter: limiter, primary: primary, backup: backup}
}

func TestResolveQuotePriorityOrder(t *testing.T) {
	fx := newFixture(t)

	res, err := fx.resolver.ResolveQuote(context.Background(), "aapl", "c1")
	require.NoError(t, err)

	assert.Equal(t, "primary-exchange", res.Source)
	assert.Equal(t, 101.5, res.Value.Price)
	assert.Equal(t, "AAPL", res.Value.Symbol)
	assert.False(t, res.Cached)
	assert.False(t, res.Fallback)
	assert.Equal(t, 1, fx.primary.calls)
	assert.Equal(t, 0, fx.backup.calls, "lower tiers must not be consulted on success")
}

func TestResolveQuoteAdvancesPastFailure(t *testing.T) {
	fx := newFixture(t)
	fx.primary.err = errors.New("connection refused")

	res, err := fx.resolver.ResolveQuote(context.Background(), "AAPL", "c1")
	require.NoError(t, err)

	assert.Equal(t, "secondary-vendor", res.Source)
	assert.Equal(t, 99.0, res.Value.Price)
	assert.Equal(t, 1, fx.primary.calls)
	assert.Equal(t, 1, fx.backup.calls)
}

func TestInvalidPayloadTreatedAsFailure(t *testing.T) {
	fx := newFixture(t)
	fx.primary.err = source.ErrInvalidPayload

	res, err := fx.resolver.ResolveQuote(context.Background(), "AAPL", "c1")
	require.NoError(t, err)

	assert.Equal(t, "secondary-vendor", res.Source)
}

func TestFreshCacheShortCircuits(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.resolver.ResolveQuote(ctx, "AAPL", "c1")
	require.NoError(t, err)

	res, err := fx.resolver.ResolveQuote(ctx, "AAPL", "c1")
	require.NoError(t, err)

	assert.True(t, res.Cached)
	assert.False(t, res.Stale)
	assert.Equal(t, "primary-exchange", res.Source)
	assert.Equal(t, 1, fx.primary.calls, "fresh hit must not reach any strategy")
}

func TestStaleCacheServedBeforeSynthetic(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.resolver.ResolveQuote(ctx, "AAPL", "c1")
	require.NoError(t, err)

	// TTL passes and every live source goes down.
	fx.clock.Advance(20 * time.Second)
	fx.primary.err = errors.New("down")
	fx.backup.err = errors.New("down")

	res, err := fx.resolver.ResolveQuote(ctx, "AAPL", "c1")
	require.NoError(t, err)

	assert.True(t, res.Stale)
	assert.True(t, res.Cached)
	assert.False(t, res.Fallback)
	assert.Equal(t, 101.5, res.Value.Price)
	assert.NotEmpty(t, res.Reason)
}

func TestSyntheticFallbackWhenNothingCached(t *testing.T) {
	fx := newFixture(t)
	fx.primary.err = errors.New("down")
	fx.backup.err = errors.New("down")

	res, err := fx.resolver.ResolveQuote(context.Background(), "AAPL", "c1")
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Equal(t, "static-fallback", res.Source)
	assert.Greater(t, res.Value.Price, 0.0)
	assert.NotEmpty(t, res.Reason)

	// Deterministic: the same symbol yields the same synthetic price.
	fx.cache.Invalidate("quote:AAPL")
	again, err := fx.resolver.ResolveQuote(context.Background(), "AAPL", "c1")
	require.NoError(t, err)
	assert.Equal(t, res.Value.Price, again.Value.Price)
}

func TestRateLimitedServesStaleEntry(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.resolver.ResolveQuote(ctx, "AAPL", "c1")
	require.NoError(t, err)

	fx.clock.Advance(20 * time.Second)
	fx.limiter.allow = false

	res, err := fx.resolver.ResolveQuote(ctx, "AAPL", "c1")
	require.NoError(t, err)

	assert.True(t, res.Stale)
	assert.Equal(t, 101.5, res.Value.Price)
	assert.Equal(t, 1, fx.primary.calls, "denied client must not reach upstream")
}

func TestRateLimitedWithEmptyCacheErrors(t *testing.T) {
	fx := newFixture(t)
	fx.limiter.allow = false

	_, err := fx.resolver.ResolveQuote(context.Background(), "AAPL", "c1")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestBadSymbolRejected(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.resolver.ResolveQuote(context.Background(), "   ", "c1")
	assert.ErrorIs(t, err, ErrBadSymbol)
}

func TestSymbolNormalizationSharesCache(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.resolver.ResolveQuote(ctx, "reliance.ns", "c1")
	require.NoError(t, err)

	res, err := fx.resolver.ResolveQuote(ctx, "RELIANCE", "c1")
	require.NoError(t, err)

	assert.True(t, res.Cached)
	assert.Equal(t, 1, fx.primary.calls)
}

func TestTextsHaveNoSyntheticForm(t *testing.T) {
	fx := newFixture(t)
	fx.primary.err = errors.New("down")
	fx.backup.err = errors.New("down")

	res, err := fx.resolver.ResolveTexts(context.Background(), "AAPL", source.TextNews, 10, "c1")
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Equal(t, "none", res.Source)
	assert.Empty(t, res.Value)
}

func TestSlowStrategyAbandonedAtTimeBox(t *testing.T) {
	fx := newFixture(t)
	fx.primary.hang = true

	start := time.Now()
	res, err := fx.resolver.ResolveQuote(context.Background(), "AAPL", "c1")
	require.NoError(t, err)

	assert.Equal(t, "secondary-vendor", res.Source)
	assert.Equal(t, 99.0, res.Value.Price)
	assert.Equal(t, 1, fx.primary.calls)
	assert.Less(t, time.Since(start), time.Second, "hung tier must be cut off at its time box")
}

type captureEvents struct {
	events []domrepo.ResolutionEvent
}

func (c *captureEvents) PublishResolution(_ context.Context, e domrepo.ResolutionEvent) error {
	c.events = append(c.events, e)
	return nil
}

func (c *captureEvents) Close() error { return nil }

func TestEventsCarryServePathFlags(t *testing.T) {
	fx := newFixture(t)
	sink := &captureEvents{}
	fx.resolver.SetEvents(sink)
	ctx := context.Background()

	_, err := fx.resolver.ResolveQuote(ctx, "AAPL", "c1") // live
	require.NoError(t, err)
	_, err = fx.resolver.ResolveQuote(ctx, "AAPL", "c1") // fresh cache
	require.NoError(t, err)

	fx.clock.Advance(20 * time.Second)
	fx.primary.err = errors.New("down")
	fx.backup.err = errors.New("down")
	_, err = fx.resolver.ResolveQuote(ctx, "AAPL", "c1") // stale serve
	require.NoError(t, err)

	require.Len(t, sink.events, 3)
	live, fromCache, stale := sink.events[0], sink.events[1], sink.events[2]

	assert.Equal(t, "primary-exchange", live.Source)
	assert.False(t, live.Cached)
	assert.False(t, live.Stale)

	assert.True(t, fromCache.Cached)
	assert.False(t, fromCache.Stale)

	assert.True(t, stale.Cached)
	assert.True(t, stale.Stale)
	assert.Equal(t, "AAPL", stale.Symbol)
	assert.False(t, stale.Fallback)
}

func TestFallbackEventFlagged(t *testing.T) {
	fx := newFixture(t)
	sink := &captureEvents{}
	fx.resolver.SetEvents(sink)
	fx.primary.err = errors.New("down")
	fx.backup.err = errors.New("down")

	_, err := fx.resolver.ResolveQuote(context.Background(), "AAPL", "c1")
	require.NoError(t, err)

	require.Len(t, sink.events, 1)
	assert.True(t, sink.events[0].Fallback)
	assert.Equal(t, "static-fallback", sink.events[0].Source)
}

type captureHistory struct {
	records int
}

func (h *captureHistory) Record(context.Context, *models.Quote, string, time.Duration) error {
	h.records++
	return nil
}

func (h *captureHistory) LastClose(context.Context, string) (float64, bool, error) {
	return 0, false, nil
}

func (h *captureHistory) Health(context.Context) error { return nil }
func (h *captureHistory) Close() error                 { return nil }

func TestHistoryRecordsLiveSuccessOnly(t *testing.T) {
	fx := newFixture(t)
	hist := &captureHistory{}
	fx.resolver.SetHistory(hist)
	ctx := context.Background()

	_, err := fx.resolver.ResolveQuote(ctx, "AAPL", "c1") // live
	require.NoError(t, err)
	_, err = fx.resolver.ResolveQuote(ctx, "AAPL", "c1") // fresh cache
	require.NoError(t, err)

	fx.clock.Advance(20 * time.Second)
	fx.primary.err = errors.New("down")
	fx.backup.err = errors.New("down")
	_, err = fx.resolver.ResolveQuote(ctx, "AAPL", "c1") // stale serve
	require.NoError(t, err)

	assert.Equal(t, 1, hist.records, "cache replays must not land in history")
}

func TestUnsupportedStrategySkippedSilently(t *testing.T) {
	fx := newFixture(t)
	fx.primary.texts = nil // FetchTexts answers ErrUnsupported
	fx.backup.texts = []source.Text{{Title: "headline"}}

	res, err := fx.resolver.ResolveTexts(context.Background(), "AAPL", source.TextNews, 10, "c1")
	require.NoError(t, err)

	assert.Equal(t, "secondary-vendor", res.Source)
	require.Len(t, res.Value, 1)
}
