package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/models"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/source"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/usecase"
	xhttp "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/http"
	xlogger "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/logger"
)

// MarketEchoHandler exposes the resolution layer over HTTP. Every endpoint
// answers 200 with provenance-tagged data whenever any tier produced a value;
// only invalid input and a cold-cache quota hit surface as errors.
type MarketEchoHandler struct {
	logger    *xlogger.Logger
	resolver  *usecase.Resolver
	sentiment *usecase.SentimentService
}

func NewMarketEchoHandler(logger *xlogger.Logger, resolver *usecase.Resolver, sentiment *usecase.SentimentService) *MarketEchoHandler {
	return &MarketEchoHandler{logger: logger, resolver: resolver, sentiment: sentiment}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/quote", h.Quote)
	g.GET("/historical", h.Historical)
	g.GET("/sentiment", h.Sentiment)
	g.GET("/news", h.News)
}

// quoteResponse flattens a resolution for the wire.
type quoteResponse struct {
	*models.Quote
	Cached   bool   `json:"cached"`
	Stale    bool   `json:"stale,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type seriesResponse struct {
	*models.Series
	Cached   bool   `json:"cached"`
	Stale    bool   `json:"stale,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type newsResponse struct {
	Symbol    string            `json:"symbol"`
	Source    string            `json:"source"`
	Headlines []models.Headline `json:"headlines"`
	Cached    bool              `json:"cached"`
	Stale     bool              `json:"stale,omitempty"`
	Fallback  bool              `json:"fallback,omitempty"`
}

func (h *MarketEchoHandler) Quote(c echo.Context) error {
	req := &models.QuoteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.resolver.ResolveQuote(c.Request().Context(), req.Symbol, clientKey(c, req.Client))
	if err != nil {
		return h.resolveErrorResponse(c, "quote", err)
	}
	return xhttp.SuccessResponse(c, quoteResponse{
		Quote:    res.Value,
		Cached:   res.Cached,
		Stale:    res.Stale,
		Fallback: res.Fallback,
		Reason:   res.Reason,
	})
}

func (h *MarketEchoHandler) Historical(c echo.Context) error {
	req := &models.HistoricalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.resolver.ResolveSeries(c.Request().Context(), req.Symbol, req.Range, clientKey(c, req.Client))
	if err != nil {
		return h.resolveErrorResponse(c, "historical", err)
	}
	return xhttp.SuccessResponse(c, seriesResponse{
		Series:   res.Value,
		Cached:   res.Cached,
		Stale:    res.Stale,
		Fallback: res.Fallback,
		Reason:   res.Reason,
	})
}

func (h *MarketEchoHandler) Sentiment(c echo.Context) error {
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	fused, err := h.sentiment.ResolveSentiment(c.Request().Context(), req.Symbol, clientKey(c, req.Client))
	if err != nil {
		return h.resolveErrorResponse(c, "sentiment", err)
	}
	return xhttp.SuccessResponse(c, fused)
}

func (h *MarketEchoHandler) News(c echo.Context) error {
	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.resolver.ResolveTexts(c.Request().Context(), req.Symbol, source.TextNews, req.Limit, clientKey(c, req.Client))
	if err != nil {
		return h.resolveErrorResponse(c, "news", err)
	}
	return xhttp.SuccessResponse(c, newsResponse{
		Symbol:    req.Symbol,
		Source:    res.Source,
		Headlines: h.sentiment.Headlines(res.Value),
		Cached:    res.Cached,
		Stale:     res.Stale,
		Fallback:  res.Fallback,
	})
}

func (h *MarketEchoHandler) resolveErrorResponse(c echo.Context, endpoint string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrBadSymbol):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol is invalid").WithError(err))
	case errors.Is(err, usecase.ErrRateLimited):
		return xhttp.AppErrorResponse(c, xhttp.NewAppError(
			"ERR_RATE_LIMITED", "", "request quota exhausted, try again later", http.StatusTooManyRequests,
		).WithError(err))
	default:
		h.logger.Error("resolve failed",
			xlogger.String("endpoint", endpoint),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
}

// clientKey identifies the caller for upstream quota accounting: the declared
// client id when present, the remote address otherwise.
func clientKey(c echo.Context, declared string) string {
	if declared != "" && declared != "anonymous" {
		return declared
	}
	return c.RealIP()
}
