package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/models"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/usecase"
	xlogger "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/logger"
)

const refresherClientKey = "quote-refresher"

// QuoteHub fans live quote updates out to connected websocket clients. A
// background refresher resolves the configured watchlist on an interval and
// broadcasts whatever the resolution layer produced, fallbacks included.
type QuoteHub struct {
	logger   *xlogger.Logger
	resolver *usecase.Resolver
	clock    clockwork.Clock

	watchlist []string
	interval  time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

func NewQuoteHub(logger *xlogger.Logger, resolver *usecase.Resolver, clock clockwork.Clock, watchlist []string, interval time.Duration) *QuoteHub {
	return &QuoteHub{
		logger:    logger,
		resolver:  resolver,
		clock:     clock,
		watchlist: watchlist,
		interval:  interval,
		clients:   make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *QuoteHub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/quotes", h.Serve)
}

// Serve upgrades the connection and parks it in the client set. The read
// loop exists only to notice the peer going away.
func (h *QuoteHub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", xlogger.Error(err))
		return nil
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", xlogger.Int("clients", n))

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

// Run drives the refresh loop until the context is cancelled.
func (h *QuoteHub) Run(ctx context.Context) {
	if len(h.watchlist) == 0 || h.interval <= 0 {
		return
	}

	ticker := h.clock.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			h.refresh(ctx)
		}
	}
}

// quoteUpdate is the broadcast payload.
type quoteUpdate struct {
	Type     string        `json:"type"`
	Quote    *models.Quote `json:"quote"`
	Cached   bool          `json:"cached"`
	Stale    bool          `json:"stale,omitempty"`
	Fallback bool          `json:"fallback,omitempty"`
}

func (h *QuoteHub) refresh(ctx context.Context) {
	h.mu.Lock()
	idle := len(h.clients) == 0
	h.mu.Unlock()
	if idle {
		return
	}

	for _, symbol := range h.watchlist {
		res, err := h.resolver.ResolveQuote(ctx, symbol, refresherClientKey)
		if err != nil {
			h.logger.Warn("watchlist refresh failed",
				xlogger.String("symbol", symbol),
				xlogger.Error(err),
			)
			continue
		}
		h.broadcast(quoteUpdate{
			Type:     "quote",
			Quote:    res.Value,
			Cached:   res.Cached,
			Stale:    res.Stale,
			Fallback: res.Fallback,
		})
	}
}

func (h *QuoteHub) broadcast(update quoteUpdate) {
	msg, err := json.Marshal(update)
	if err != nil {
		h.logger.Warn("broadcast marshal failed", xlogger.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *QuoteHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
}

// Close disconnects every client.
func (h *QuoteHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
