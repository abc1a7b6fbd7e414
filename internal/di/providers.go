package di

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/repository"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/handler/api"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/handler/ws"
	internalrepo "github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/repository"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/service/cache"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/service/ratelimit"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/service/sentiment"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/source"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/usecase"
	pkgch "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/clickhouse"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/config"
	pkgkafka "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/kafka"
	applogger "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/logger"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/metrics"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideClock supplies the wall clock. Tests swap in a fake.
func ProvideClock() clockwork.Clock {
	return clockwork.NewRealClock()
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCacheStore creates the in-memory resolution cache.
func ProvideCacheStore(cfg *config.Config, clock clockwork.Clock) *cache.Store {
	return cache.NewStore(clock, cfg.Cache.StaleFactor)
}

// ProvideCache exposes the store under the domain cache interface.
func ProvideCache(store *cache.Store) repository.Cache {
	return store
}

// ProvideLimiter selects the upstream quota limiter backend.
func ProvideLimiter(cfg *config.Config, clock clockwork.Clock) (repository.Limiter, error) {
	if cfg.RateLimit.Backend == "redis" {
		limiter, err := ratelimit.NewRedisLimiter(ratelimit.RedisConfig{
			Addr:     cfg.RateLimit.Redis.Addr,
			Password: cfg.RateLimit.Redis.Password,
			DB:       cfg.RateLimit.Redis.DB,
			Prefix:   cfg.RateLimit.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("redis limiter: %w", err)
		}
		return limiter, nil
	}
	return ratelimit.New(clock), nil
}

// ProvideClickHouseClient creates the resolution history client, or nil when
// history is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.History.Host),
		pkgch.WithPort(cfg.History.Port),
		pkgch.WithDatabase(cfg.History.Database),
		pkgch.WithCredentials(cfg.History.User, cfg.History.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.History.DialTimeout, cfg.History.ReadTimeout, cfg.History.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.History.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	table := cfg.History.Database + "." + cfg.History.Table
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.History.Database,
		"CREATE TABLE IF NOT EXISTS " + table +
			" (ts DateTime, symbol String, capability String, source String, price Float64, latency_ms Int64)" +
			" ENGINE=MergeTree ORDER BY (symbol, ts)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideHistoryStore creates the resolution history repository, or nil when
// history is disabled.
func ProvideHistoryStore(client *pkgch.Client, cfg *config.Config) repository.HistoryStore {
	if client == nil {
		return nil
	}
	return internalrepo.NewClickHouseHistory(client.DB(), cfg.History.Database+"."+cfg.History.Table)
}

// ProvideEventPublisher creates the Kafka resolution event publisher, or nil
// when events are disabled.
func ProvideEventPublisher(cfg *config.Config) (repository.EventPublisher, error) {
	if !cfg.Events.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Brokers),
		pkgkafka.WithCompression(cfg.Events.Compression),
		pkgkafka.WithRequiredAcks(cfg.Events.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Events.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Events.Linger),
		pkgkafka.WithTimeouts(cfg.Events.WriteTimeout, cfg.Events.WriteTimeout),
		pkgkafka.WithAsync(cfg.Events.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return internalrepo.NewKafkaEvents(producer, cfg.Events.Topic), nil
}

// ProvideStrategies builds the ordered live source list: the exchange feed
// first, then the two vendor fallbacks. Vendors without a base URL are left
// out of the order.
func ProvideStrategies(cfg *config.Config) []source.Strategy {
	strategies := []source.Strategy{source.NewExchange(cfg.Providers.Primary)}
	if cfg.Providers.Secondary.BaseURL != "" {
		strategies = append(strategies, source.NewSecondaryVendor(cfg.Providers.Secondary))
	}
	if cfg.Providers.Tertiary.BaseURL != "" {
		strategies = append(strategies, source.NewTertiaryVendor(cfg.Providers.Tertiary))
	}
	return strategies
}

// ProvideFallback creates the terminal never-fails strategy.
func ProvideFallback(history repository.HistoryStore) source.Strategy {
	return source.NewStatic(history)
}

// ProvideResolver assembles the fallback resolution core.
func ProvideResolver(
	cfg *config.Config,
	store repository.Cache,
	limiter repository.Limiter,
	m repository.Metrics,
	logger *applogger.Logger,
	strategies []source.Strategy,
	fallback source.Strategy,
	history repository.HistoryStore,
	events repository.EventPublisher,
) *usecase.Resolver {
	r := usecase.NewResolver(
		usecase.ResolverConfig{
			QuoteTTL:      cfg.TTL.Quote,
			HistoricalTTL: cfg.TTL.Historical,
			NewsTTL:       cfg.TTL.News,
			MaxRequests:   cfg.RateLimit.MaxRequests,
			Window:        cfg.RateLimit.Window,
			Timeouts: map[string]time.Duration{
				"primary-exchange": cfg.Providers.Primary.Timeout,
				"secondary-vendor": cfg.Providers.Secondary.Timeout,
				"tertiary-vendor":  cfg.Providers.Tertiary.Timeout,
			},
		},
		store, limiter, m, logger, strategies, fallback,
	)
	if history != nil {
		r.SetHistory(history)
	}
	if events != nil {
		r.SetEvents(events)
	}
	return r
}

// ProvideSentimentService assembles the sentiment fusion pipeline.
func ProvideSentimentService(
	resolver *usecase.Resolver,
	store repository.Cache,
	m repository.Metrics,
	logger *applogger.Logger,
	clock clockwork.Clock,
	cfg *config.Config,
) *usecase.SentimentService {
	return usecase.NewSentimentService(
		resolver,
		sentiment.NewScorer(sentiment.DefaultLexicon()),
		store,
		m,
		logger,
		clock,
		cfg.TTL.Sentiment,
	)
}

// ProvideMarketHandler creates the REST handler.
func ProvideMarketHandler(logger *applogger.Logger, resolver *usecase.Resolver, svc *usecase.SentimentService) *api.MarketEchoHandler {
	return api.NewMarketEchoHandler(logger, resolver, svc)
}

// ProvideQuoteHub creates the websocket fan-out hub, or nil when streaming
// is disabled.
func ProvideQuoteHub(cfg *config.Config, logger *applogger.Logger, resolver *usecase.Resolver, clock clockwork.Clock) *ws.QuoteHub {
	if !cfg.Stream.Enabled {
		return nil
	}
	return ws.NewQuoteHub(logger, resolver, clock, cfg.Stream.Watchlist, cfg.Stream.RefreshInterval)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	store *cache.Store,
	handler *api.MarketEchoHandler,
	hub *ws.QuoteHub,
	chClient *pkgch.Client,
	events repository.EventPublisher,
) *server.App {
	return server.New(cfg, logger, store, handler, hub, chClient, events)
}
