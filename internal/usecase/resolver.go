package usecase

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/models"
	domrepo "github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/repository"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/source"
	applogger "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/logger"
)

var (
	// ErrBadSymbol is the only caller error the resolver surfaces: an empty
	// or unusable symbol cannot be resolved to anything.
	ErrBadSymbol = errors.New("resolver: invalid symbol")

	// ErrRateLimited is returned when a client exhausted its upstream quota
	// and the cache holds nothing at all to serve instead.
	ErrRateLimited = errors.New("resolver: rate limited, try later")
)

const defaultStrategyTimeout = 10 * time.Second

// ResolverConfig carries the capability TTLs, upstream quota and the
// per-strategy time boxes.
type ResolverConfig struct {
	QuoteTTL      time.Duration
	HistoricalTTL time.Duration
	NewsTTL       time.Duration
	MaxRequests   int
	Window        time.Duration
	Timeouts      map[string]time.Duration // strategy name -> time box
}

// Resolver resolves one logical value per request by trying an ordered list
// of strategies, consulting the cache and the upstream quota limiter first.
// Beyond in-flight coalescing it holds no mutable state of its own.
type Resolver struct {
	cfg        ResolverConfig
	cache      domrepo.Cache
	limiter    domrepo.Limiter
	metrics    domrepo.Metrics
	log        *applogger.Logger
	history    domrepo.HistoryStore   // optional
	events     domrepo.EventPublisher // optional
	strategies []source.Strategy
	fallback   source.Strategy
	sf         singleflight.Group
}

func NewResolver(
	cfg ResolverConfig,
	cache domrepo.Cache,
	limiter domrepo.Limiter,
	metrics domrepo.Metrics,
	log *applogger.Logger,
	strategies []source.Strategy,
	fallback source.Strategy,
) *Resolver {
	return &Resolver{
		cfg:        cfg,
		cache:      cache,
		limiter:    limiter,
		metrics:    metrics,
		log:        log,
		strategies: strategies,
		fallback:   fallback,
	}
}

// SetHistory attaches the optional resolution history recorder.
func (r *Resolver) SetHistory(h domrepo.HistoryStore) { r.history = h }

// SetEvents attaches the optional resolution event publisher.
func (r *Resolver) SetEvents(e domrepo.EventPublisher) { r.events = e }

// ResolveQuote resolves the current quote for a symbol. It never returns an
// error for upstream failure: exhaustion falls back to the last known close
// or a synthetic price, tagged accordingly.
func (r *Resolver) ResolveQuote(ctx context.Context, symbol, clientKey string) (models.Resolution[*models.Quote], error) {
	var zero models.Resolution[*models.Quote]

	norm := domrepo.NormalizeSymbol(symbol)
	if norm == "" {
		return zero, ErrBadSymbol
	}
	key := domrepo.CacheKey(domrepo.CapabilityQuote, norm)

	res, err := resolve(ctx, r, key, domrepo.CapabilityQuote, clientKey, r.cfg.QuoteTTL,
		func(ctx context.Context, st source.Strategy) (*models.Quote, error) {
			return st.FetchQuote(ctx, norm)
		},
		true,
	)
	if err != nil {
		return zero, err
	}

	if res.Value != nil {
		r.metrics.RecordLastPrice(norm, res.Value.Price)
	}
	return res, nil
}

// ResolveSeries resolves a historical candle series for a symbol and range.
func (r *Resolver) ResolveSeries(ctx context.Context, symbol, rng, clientKey string) (models.Resolution[*models.Series], error) {
	var zero models.Resolution[*models.Series]

	norm := domrepo.NormalizeSymbol(symbol)
	if norm == "" {
		return zero, ErrBadSymbol
	}
	key := domrepo.CacheKey(domrepo.CapabilityHistorical, norm, rng)

	return resolve(ctx, r, key, domrepo.CapabilityHistorical, clientKey, r.cfg.HistoricalTTL,
		func(ctx context.Context, st source.Strategy) (*models.Series, error) {
			return st.FetchSeries(ctx, norm, rng)
		},
		true,
	)
}

// ResolveTexts resolves raw news or social texts for a symbol. There is no
// synthetic fallback for texts: on exhaustion the result is an empty list
// tagged as fallback, and sentiment consumers degrade to a neutral signal.
func (r *Resolver) ResolveTexts(ctx context.Context, symbol string, kind source.TextKind, limit int, clientKey string) (models.Resolution[[]source.Text], error) {
	var zero models.Resolution[[]source.Text]

	norm := domrepo.NormalizeSymbol(symbol)
	if norm == "" {
		return zero, ErrBadSymbol
	}
	key := domrepo.CacheKey(domrepo.CapabilityNews, norm, string(kind))

	return resolve(ctx, r, key, domrepo.CapabilityNews, clientKey, r.cfg.NewsTTL,
		func(ctx context.Context, st source.Strategy) ([]source.Text, error) {
			return st.FetchTexts(ctx, norm, kind, limit)
		},
		false,
	)
}

// cached is the envelope stored in the cache so provenance survives a hit.
type cached[T any] struct {
	value  T
	source string
}

// resolve is the shared cache -> quota -> ordered-strategies core.
func resolve[T any](
	ctx context.Context,
	r *Resolver,
	key string,
	capability domrepo.Capability,
	clientKey string,
	ttl time.Duration,
	fetch func(context.Context, source.Strategy) (T, error),
	useFallback bool,
) (models.Resolution[T], error) {
	var zero models.Resolution[T]

	// 1. Fresh cache entry wins outright.
	if v, found, fresh := r.cache.Get(key); found && fresh {
		if typed, ok := v.(cached[T]); ok {
			r.metrics.RecordResolution(string(capability), typed.source, "cached")
			r.observe(ctx, capability, typed.value, typed.source, 0, outcome{cached: true})
			return models.Resolution[T]{Value: typed.value, Source: typed.source, Cached: true}, nil
		}
	}

	// 2. The quota guards upstream calls only; a stale entry is still a
	// perfectly good answer for a limited client.
	if !r.limiter.Allow(ctx, clientKey, r.cfg.MaxRequests, r.cfg.Window) {
		r.metrics.RecordRateLimited("upstream")
		if v, found, _ := r.cache.Get(key); found {
			if typed, ok := v.(cached[T]); ok {
				r.metrics.RecordResolution(string(capability), typed.source, "stale")
				r.observe(ctx, capability, typed.value, typed.source, 0, outcome{cached: true, stale: true})
				return models.Resolution[T]{Value: typed.value, Source: typed.source, Cached: true, Stale: true}, nil
			}
		}
		return zero, ErrRateLimited
	}

	// 3. Coalesce concurrent misses for the same key into one upstream pass.
	out, err, _ := r.sf.Do(key, func() (any, error) {
		return tryStrategies(ctx, r, key, capability, ttl, fetch, useFallback)
	})
	if err != nil {
		return zero, err
	}
	return out.(models.Resolution[T]), nil
}

// tryStrategies walks the priority order until one strategy returns a valid
// payload. No retries within a strategy; each attempt is time-boxed.
func tryStrategies[T any](
	ctx context.Context,
	r *Resolver,
	key string,
	capability domrepo.Capability,
	ttl time.Duration,
	fetch func(context.Context, source.Strategy) (T, error),
	useFallback bool,
) (models.Resolution[T], error) {
	start := time.Now()
	var lastErr error

	for _, st := range r.strategies {
		sctx, cancel := context.WithTimeout(ctx, r.timeoutFor(st.Name()))
		v, err := fetch(sctx, st)
		cancel()

		if err != nil {
			if errors.Is(err, source.ErrUnsupported) {
				continue
			}
			lastErr = err
			r.metrics.RecordSourceError(st.Name(), classifyFailure(err))
			r.log.Warn("strategy failed",
				applogger.String("capability", string(capability)),
				applogger.String("strategy", st.Name()),
				applogger.Error(err),
			)
			continue
		}

		latency := time.Since(start)
		stamp(v, st.Name())
		r.cache.Set(key, cached[T]{value: v, source: st.Name()}, ttl)
		r.metrics.RecordResolution(string(capability), st.Name(), "live")
		r.metrics.RecordLatency("resolve_"+string(capability), latency.Seconds())
		r.observe(ctx, capability, v, st.Name(), latency, outcome{})

		return models.Resolution[T]{Value: v, Source: st.Name()}, nil
	}

	reason := "no live source available"
	if lastErr != nil {
		reason = lastErr.Error()
	}

	// Every live source failed: a stale entry beats anything synthetic.
	if v, found, _ := r.cache.Get(key); found {
		if typed, ok := v.(cached[T]); ok {
			r.metrics.RecordResolution(string(capability), typed.source, "stale")
			r.observe(ctx, capability, typed.value, typed.source, time.Since(start), outcome{cached: true, stale: true})
			return models.Resolution[T]{
				Value: typed.value, Source: typed.source,
				Cached: true, Stale: true, Reason: reason,
			}, nil
		}
	}

	if useFallback {
		v, err := fetch(ctx, r.fallback)
		if err == nil {
			stamp(v, r.fallback.Name())
			r.metrics.RecordResolution(string(capability), r.fallback.Name(), "fallback")
			r.observe(ctx, capability, v, r.fallback.Name(), time.Since(start), outcome{fallback: true})
			return models.Resolution[T]{
				Value: v, Source: r.fallback.Name(),
				Fallback: true, Reason: reason,
			}, nil
		}
	}

	// Texts have no synthetic form; an empty result tagged as fallback keeps
	// the contract structurally valid.
	var empty T
	r.metrics.RecordResolution(string(capability), "none", "fallback")
	return models.Resolution[T]{Value: empty, Source: "none", Fallback: true, Reason: reason}, nil
}

func (r *Resolver) timeoutFor(strategy string) time.Duration {
	if t, ok := r.cfg.Timeouts[strategy]; ok && t > 0 {
		return t
	}
	return defaultStrategyTimeout
}

// stamp writes provenance onto payloads that carry it.
func stamp(v any, sourceName string) {
	now := time.Now().UTC()
	switch t := v.(type) {
	case *models.Quote:
		if t != nil {
			t.SourceName = sourceName
			t.ResolvedAt = now
		}
	case *models.Series:
		if t != nil {
			t.SourceName = sourceName
			t.ResolvedAt = now
		}
	}
}

// outcome describes how a resolution was served, for the observer sinks.
type outcome struct {
	cached   bool
	stale    bool
	fallback bool
}

// observe forwards the outcome to the optional history and event sinks.
// Both are best-effort observers and never affect the resolution result.
func (r *Resolver) observe(ctx context.Context, capability domrepo.Capability, v any, sourceName string, latency time.Duration, o outcome) {
	q, isQuote := v.(*models.Quote)

	// History wants real upstream prices once: live successes only, no
	// replays from the cache and nothing synthetic.
	if r.history != nil && isQuote && !o.fallback && !o.cached {
		if err := r.history.Record(ctx, q, string(capability), latency); err != nil {
			r.log.Warn("history record failed", applogger.Error(err))
		}
	}

	if r.events != nil {
		symbol := ""
		if isQuote {
			symbol = q.Symbol
		}
		e := domrepo.ResolutionEvent{
			Symbol:     symbol,
			Capability: string(capability),
			Source:     sourceName,
			Cached:     o.cached,
			Stale:      o.stale,
			Fallback:   o.fallback,
			LatencyMS:  latency.Milliseconds(),
			At:         time.Now().UTC(),
		}
		if err := r.events.PublishResolution(ctx, e); err != nil {
			r.log.Warn("resolution event publish failed", applogger.Error(err))
		}
	}
}

// classifyFailure buckets a strategy error for metrics.
func classifyFailure(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, source.ErrInvalidPayload):
		return "invalid_payload"
	default:
		return "upstream"
	}
}
