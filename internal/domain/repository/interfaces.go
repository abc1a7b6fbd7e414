package repository

import (
	"context"
	"time"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/models"
)

// Cache is the capability-keyed store consulted before any upstream call.
// Get reports both presence and freshness; stale entries stay readable as
// last-resort data until the reaper removes them.
type Cache interface {
	Get(key string) (value any, found bool, fresh bool)
	Set(key string, value any, ttl time.Duration)
	Invalidate(key string)
}

// Limiter guards the upstream request quota per client key.
// Denial must never block cache reads.
type Limiter interface {
	Allow(ctx context.Context, clientKey string, maxRequests int, window time.Duration) bool
}

// HistoryStore records successful live resolutions and serves the last
// known close used by the static fallback.
type HistoryStore interface {
	Record(ctx context.Context, q *models.Quote, capability string, latency time.Duration) error
	LastClose(ctx context.Context, symbol string) (float64, bool, error)
	Health(ctx context.Context) error
	Close() error
}

// EventPublisher emits resolution events for downstream consumers.
type EventPublisher interface {
	PublishResolution(ctx context.Context, e ResolutionEvent) error
	Close() error
}

// ResolutionEvent describes one resolution outcome on the audit feed.
type ResolutionEvent struct {
	Symbol     string    `json:"symbol"`
	Capability string    `json:"capability"`
	Source     string    `json:"source"`
	Cached     bool      `json:"cached"`
	Stale      bool      `json:"stale"`
	Fallback   bool      `json:"fallback"`
	LatencyMS  int64     `json:"latency_ms"`
	At         time.Time `json:"at"`
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordResolution(capability, source, outcome string)
	RecordSourceError(source, kind string)
	RecordRateLimited(scope string)
	RecordLastPrice(symbol string, price float64)
	RecordConfidence(symbol string, confidence float64)
	RecordLatency(op string, seconds float64)
}
