package source

import (
	"context"
	"fmt"
	"time"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/models"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/config"
	xhttp "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/http"
)

// Exchange is the primary provider adapter. It speaks the exchange's REST
// API: /quote, /candles and /company-news. No social feed.
type Exchange struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

func NewExchange(cfg config.Provider) *Exchange {
	return &Exchange{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
	}
}

func (e *Exchange) Name() string { return "primary-exchange" }

type exchangeQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Volume        int64   `json:"v"`
}

func (e *Exchange) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var raw exchangeQuote
	err := e.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    e.baseURL + "/quote",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"token":  {e.apiKey},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("exchange quote %s: %w", symbol, err)
	}

	q := &models.Quote{
		Symbol:        symbol,
		Price:         raw.Current,
		Change:        raw.Change,
		ChangePercent: raw.ChangePercent,
		Open:          raw.Open,
		High:          raw.High,
		Low:           raw.Low,
		Volume:        raw.Volume,
		PreviousClose: raw.PreviousClose,
	}
	if err := ValidateQuote(q); err != nil {
		return nil, err
	}
	return q, nil
}

type exchangeCandles struct {
	Status string    `json:"s"`
	T      []int64   `json:"t"`
	O      []float64 `json:"o"`
	H      []float64 `json:"h"`
	L      []float64 `json:"l"`
	C      []float64 `json:"c"`
	V      []int64   `json:"v"`
}

func (e *Exchange) FetchSeries(ctx context.Context, symbol, rng string) (*models.Series, error) {
	from, resolution := rangeToWindow(rng)
	var raw exchangeCandles
	err := e.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    e.baseURL + "/stock/candle",
		QueryParams: map[string][]string{
			"symbol":     {symbol},
			"resolution": {resolution},
			"from":       {fmt.Sprintf("%d", from.Unix())},
			"to":         {fmt.Sprintf("%d", time.Now().Unix())},
			"token":      {e.apiKey},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("exchange candles %s: %w", symbol, err)
	}
	if raw.Status != "ok" || len(raw.T) == 0 {
		return nil, ErrInvalidPayload
	}

	candles := make([]models.Candle, 0, len(raw.T))
	for i := range raw.T {
		if i >= len(raw.O) || i >= len(raw.H) || i >= len(raw.L) || i >= len(raw.C) {
			break
		}
		var vol int64
		if i < len(raw.V) {
			vol = raw.V[i]
		}
		candles = append(candles, models.Candle{
			Bucket: time.Unix(raw.T[i], 0).UTC(),
			Open:   raw.O[i],
			High:   raw.H[i],
			Low:    raw.L[i],
			Close:  raw.C[i],
			Volume: vol,
		})
	}

	s := &models.Series{Symbol: symbol, Range: rng, Candles: candles}
	if err := ValidateSeries(s); err != nil {
		return nil, err
	}
	return s, nil
}

type exchangeNewsItem struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
}

func (e *Exchange) FetchTexts(ctx context.Context, symbol string, kind TextKind, limit int) ([]Text, error) {
	if kind != TextNews {
		return nil, ErrUnsupported
	}

	var items []exchangeNewsItem
	err := e.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    e.baseURL + "/company-news",
		QueryParams: map[string][]string{
			"symbol": {symbol},
			"token":  {e.apiKey},
		},
	}, &items)
	if err != nil {
		return nil, fmt.Errorf("exchange news %s: %w", symbol, err)
	}
	if len(items) == 0 {
		return nil, ErrInvalidPayload
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	texts := make([]Text, 0, len(items))
	for _, it := range items {
		texts = append(texts, Text{
			Title:       it.Headline,
			Body:        it.Summary,
			URL:         it.URL,
			PublishedAt: time.Unix(it.Datetime, 0).UTC(),
		})
	}
	return texts, nil
}

// rangeToWindow maps a UI range token to a lookback window and bar resolution.
func rangeToWindow(rng string) (time.Time, string) {
	now := time.Now()
	switch rng {
	case "1d":
		return now.AddDate(0, 0, -1), "5"
	case "5d":
		return now.AddDate(0, 0, -5), "15"
	case "3mo":
		return now.AddDate(0, -3, 0), "D"
	case "6mo":
		return now.AddDate(0, -6, 0), "D"
	case "1y":
		return now.AddDate(-1, 0, 0), "D"
	default: // 1mo
		return now.AddDate(0, -1, 0), "D"
	}
}
