package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/repository"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/handler/api"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/handler/ws"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/service/cache"
	pkgch "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/clickhouse"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/config"
	xhttp "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/http"
	applogger "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/logger"
)

// App encapsulates the entire application lifecycle: HTTP transport, cache
// reaper, websocket refresher and the optional infrastructure clients.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	store      *cache.Store
	handler    *api.MarketEchoHandler
	hub        *ws.QuoteHub
	chClient   *pkgch.Client
	events     repository.EventPublisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. Hub, ClickHouse
// client and event publisher may be nil when their feature is disabled.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	store *cache.Store,
	handler *api.MarketEchoHandler,
	hub *ws.QuoteHub,
	chClient *pkgch.Client,
	events repository.EventPublisher,
) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		handler:  handler,
		hub:      hub,
		chClient: chClient,
		events:   events,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if a.cfg.Server.EdgeRateLimit.Enabled {
		opts = append(opts, xhttp.WithEdgeRateLimit(
			a.cfg.Server.EdgeRateLimit.Rate,
			a.cfg.Server.EdgeRateLimit.Burst,
		))
	}
	a.httpServer = xhttp.NewServer(a.handler, opts...)
	a.httpServer.Echo().GET("/healthz", a.health)

	// Dead entry reaper: stale entries stay servable until it runs.
	stopReaper := a.store.StartReaper(a.cfg.Cache.ReaperInterval, func(n int) {
		a.logger.Debug("cache entries evicted", applogger.Int("count", n))
	})
	defer stopReaper()

	if a.hub != nil {
		a.hub.RegisterRoutes(a.httpServer.Echo())
		go a.hub.Run(ctx)
		a.logger.Info("quote stream started",
			applogger.Strings("watchlist", a.cfg.Stream.Watchlist),
			applogger.Duration("interval", a.cfg.Stream.RefreshInterval),
		)
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.hub != nil {
		a.hub.Close()
	}

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn("event publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}

// health reports process liveness plus the state of the optional history
// backend. A degraded history never fails the check: resolution works
// without it.
func (a *App) health(c echo.Context) error {
	status := map[string]any{
		"status":      "ok",
		"environment": a.cfg.Environment,
		"cache_size":  a.store.Len(),
	}
	if a.chClient != nil {
		if err := a.chClient.Health(c.Request().Context()); err != nil {
			status["history"] = "degraded"
		} else {
			status["history"] = "ok"
		}
	}
	return c.JSON(http.StatusOK, status)
}
