package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	resolutions  *prometheus.CounterVec
	sourceErrors *prometheus.CounterVec
	rateLimited  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	confidence   *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		resolutions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "echart_resolutions_total",
				Help: "Total number of resolved requests by capability, source and outcome",
			},
			[]string{"capability", "source", "outcome"},
		),
		sourceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "echart_source_errors_total",
				Help: "Total number of upstream source failures by kind",
			},
			[]string{"source", "kind"},
		),
		rateLimited: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "echart_rate_limited_total",
				Help: "Total number of rate limiter denials",
			},
			[]string{"scope"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "echart_last_price",
				Help: "Last resolved price for a symbol",
			},
			[]string{"symbol"},
		),
		confidence: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "echart_sentiment_confidence",
				Help: "Confidence of the last fused sentiment for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "echart_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordResolution records one resolved request.
func (r *Recorder) RecordResolution(capability, source, outcome string) {
	r.resolutions.WithLabelValues(capability, source, outcome).Inc()
}

// RecordSourceError records an upstream source failure.
func (r *Recorder) RecordSourceError(source, kind string) {
	r.sourceErrors.WithLabelValues(source, kind).Inc()
}

// RecordRateLimited records a rate limiter denial.
func (r *Recorder) RecordRateLimited(scope string) {
	r.rateLimited.WithLabelValues(scope).Inc()
}

// RecordLastPrice records the last resolved price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordConfidence records the confidence of the last fused sentiment.
func (r *Recorder) RecordConfidence(symbol string, confidence float64) {
	r.confidence.WithLabelValues(symbol).Set(confidence)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
