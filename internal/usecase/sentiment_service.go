package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/models"
	domrepo "github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/repository"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/service/sentiment"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/source"
	applogger "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/logger"
)

const (
	newsSampleSize   = 10
	socialSampleSize = 30
)

// SentimentService resolves the three independent sentiment signals in
// parallel and fuses them into one composite. The composite itself is
// cached per symbol.
type SentimentService struct {
	resolver *Resolver
	engine   FusionEngine
	scorer   *sentiment.Scorer
	cache    domrepo.Cache
	metrics  domrepo.Metrics
	log      *applogger.Logger
	clock    clockwork.Clock
	ttl      time.Duration
}

func NewSentimentService(
	resolver *Resolver,
	scorer *sentiment.Scorer,
	cache domrepo.Cache,
	metrics domrepo.Metrics,
	log *applogger.Logger,
	clock clockwork.Clock,
	ttl time.Duration,
) *SentimentService {
	return &SentimentService{
		resolver: resolver,
		scorer:   scorer,
		cache:    cache,
		metrics:  metrics,
		log:      log,
		clock:    clock,
		ttl:      ttl,
	}
}

// ResolveSentiment produces the fused sentiment for a symbol. Signal loss
// degrades confidence, never the call: with all three signals gone the
// result is neutral at reduced confidence.
func (s *SentimentService) ResolveSentiment(ctx context.Context, symbol, clientKey string) (*models.FusedSentiment, error) {
	norm := domrepo.NormalizeSymbol(symbol)
	if norm == "" {
		return nil, ErrBadSymbol
	}
	key := domrepo.CacheKey(domrepo.CapabilitySentiment, norm)

	if v, found, fresh := s.cache.Get(key); found && fresh {
		if fused, ok := v.(*models.FusedSentiment); ok {
			s.metrics.RecordResolution(string(domrepo.CapabilitySentiment), "fusion", "cached")
			return fused, nil
		}
	}

	// The three signals are independent; resolve them concurrently with
	// isolated failure handling.
	var (
		wg          sync.WaitGroup
		price, news SignalInput
		social      SignalInput
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		price = s.priceSignal(ctx, norm, clientKey)
	}()
	go func() {
		defer wg.Done()
		news = s.textSignal(ctx, norm, source.TextNews, newsSampleSize, clientKey)
	}()
	go func() {
		defer wg.Done()
		social = s.textSignal(ctx, norm, source.TextSocial, socialSampleSize, clientKey)
	}()
	wg.Wait()

	fused := s.engine.Fuse(norm, price, news, social)
	fused.ComputedAt = s.clock.Now().UTC()

	s.cache.Set(key, &fused, s.ttl)
	s.metrics.RecordResolution(string(domrepo.CapabilitySentiment), "fusion", "live")
	s.metrics.RecordConfidence(norm, float64(fused.Confidence))

	return &fused, nil
}

// priceSignal maps realized intraday movement onto the 0..100 scale:
// 50 is flat, each percent of change moves the score by 10 points.
func (s *SentimentService) priceSignal(ctx context.Context, symbol, clientKey string) SignalInput {
	res, err := s.resolver.ResolveQuote(ctx, symbol, clientKey)
	if err != nil || res.Value == nil {
		return SignalInput{}
	}
	return SignalInput{Score: clampFloat(50+res.Value.ChangePercent*10, 0, 100), OK: true}
}

func (s *SentimentService) textSignal(ctx context.Context, symbol string, kind source.TextKind, limit int, clientKey string) SignalInput {
	res, err := s.resolver.ResolveTexts(ctx, symbol, kind, limit, clientKey)
	if err != nil || len(res.Value) == 0 {
		return SignalInput{}
	}

	texts := make([]string, 0, len(res.Value))
	for _, t := range res.Value {
		texts = append(texts, strings.TrimSpace(t.Title+" "+t.Body))
	}
	score, _ := s.scorer.ScoreAll(texts)
	return SignalInput{Score: score, OK: true}
}

// Headlines scores raw news texts for the news endpoint.
func (s *SentimentService) Headlines(texts []source.Text) []models.Headline {
	out := make([]models.Headline, 0, len(texts))
	for _, t := range texts {
		r := s.scorer.Score(strings.TrimSpace(t.Title + " " + t.Body))
		out = append(out, models.Headline{
			Title:       t.Title,
			Summary:     t.Body,
			URL:         t.URL,
			PublishedAt: t.PublishedAt,
			Score:       r.Score,
			Label:       r.Label,
			Impact:      r.ImpactCount,
		})
	}
	return out
}
