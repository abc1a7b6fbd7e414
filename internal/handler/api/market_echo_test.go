package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/models"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/service/cache"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/service/sentiment"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/source"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/usecase"
	applogger "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/logger"
)

type stubStrategy struct {
	quote *models.Quote
	texts []source.Text
}

func (s *stubStrategy) Name() string { return "primary-exchange" }

func (s *stubStrategy) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	q := *s.quote
	q.Symbol = symbol
	return &q, nil
}

func (s *stubStrategy) FetchSeries(ctx context.Context, symbol, rng string) (*models.Series, error) {
	return &models.Series{
		Symbol:  symbol,
		Range:   rng,
		Candles: []models.Candle{{Close: 100}, {Close: 101}},
	}, nil
}

func (s *stubStrategy) FetchTexts(ctx context.Context, symbol string, kind source.TextKind, limit int) ([]source.Text, error) {
	if s.texts == nil {
		return nil, source.ErrUnsupported
	}
	return s.texts, nil
}

type openLimiter struct{ allow bool }

func (l *openLimiter) Allow(context.Context, string, int, time.Duration) bool { return l.allow }

type silentMetrics struct{}

func (silentMetrics) RecordResolution(string, string, string) {}
func (silentMetrics) RecordSourceError(string, string)        {}
func (silentMetrics) RecordRateLimited(string)                {}
func (silentMetrics) RecordLastPrice(string, float64)         {}
func (silentMetrics) RecordConfidence(string, float64)        {}
func (silentMetrics) RecordLatency(string, float64)           {}

func newTestHandler(t *testing.T, limiter *openLimiter) *MarketEchoHandler {
	t.Helper()

	clock := clockwork.NewFakeClock()
	store := cache.NewStore(clock, 4)
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	require.NoError(t, err)

	stub := &stubStrategy{
		quote: &models.Quote{Price: 101.5, Change: 1.5, ChangePercent: 1.5},
		texts: []source.Text{{Title: "Company beats earnings, shares surge and rally"}},
	}
	resolver := usecase.NewResolver(
		usecase.ResolverConfig{
			QuoteTTL:      15 * time.Second,
			HistoricalTTL: time.Hour,
			NewsTTL:       30 * time.Minute,
			MaxRequests:   30,
			Window:        time.Minute,
		},
		store, limiter, silentMetrics{}, log,
		[]source.Strategy{stub},
		source.NewStatic(nil),
	)
	svc := usecase.NewSentimentService(
		resolver,
		sentiment.NewScorer(sentiment.DefaultLexicon()),
		store, silentMetrics{}, log, clock, 5*time.Minute,
	)
	return NewMarketEchoHandler(log, resolver, svc)
}

func doRequest(h *MarketEchoHandler, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestQuoteEndpoint(t *testing.T) {
	h := newTestHandler(t, &openLimiter{allow: true})

	rec := doRequest(h, "/api/quote?symbol=AAPL")
	env := decode(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var body quoteResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "AAPL", body.Symbol)
	assert.Equal(t, 101.5, body.Price)
	assert.False(t, body.Fallback)
}

func TestQuoteRequiresSymbol(t *testing.T) {
	h := newTestHandler(t, &openLimiter{allow: true})

	rec := doRequest(h, "/api/quote")
	env := decode(t, rec)
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestQuoteRateLimitedWithColdCache(t *testing.T) {
	h := newTestHandler(t, &openLimiter{allow: false})

	rec := doRequest(h, "/api/quote?symbol=AAPL")
	env := decode(t, rec)
	assert.Equal(t, http.StatusTooManyRequests, env.Status)
}

func TestHistoricalEndpoint(t *testing.T) {
	h := newTestHandler(t, &openLimiter{allow: true})

	rec := doRequest(h, "/api/historical?symbol=AAPL&range=5d")
	env := decode(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var body seriesResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "5d", body.Range)
	assert.Len(t, body.Candles, 2)
}

func TestHistoricalRejectsUnknownRange(t *testing.T) {
	h := newTestHandler(t, &openLimiter{allow: true})

	rec := doRequest(h, "/api/historical?symbol=AAPL&range=42y")
	env := decode(t, rec)
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestSentimentEndpoint(t *testing.T) {
	h := newTestHandler(t, &openLimiter{allow: true})

	rec := doRequest(h, "/api/sentiment?symbol=AAPL")
	env := decode(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var body models.FusedSentiment
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "AAPL", body.Symbol)
	assert.Len(t, body.ContributingSignals, 3)
	assert.GreaterOrEqual(t, body.CompositeScore, 0)
	assert.LessOrEqual(t, body.CompositeScore, 100)
}

func TestNewsEndpointScoresHeadlines(t *testing.T) {
	h := newTestHandler(t, &openLimiter{allow: true})

	rec := doRequest(h, "/api/news?symbol=AAPL")
	env := decode(t, rec)
	require.Equal(t, http.StatusOK, env.Status)

	var body newsResponse
	require.NoError(t, json.Unmarshal(env.Data, &body))
	require.Len(t, body.Headlines, 1)
	assert.Equal(t, "positive", body.Headlines[0].Label)
	assert.Equal(t, 9, body.Headlines[0].Score)
}
