package source

import (
	"context"
	"fmt"
	"time"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/models"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/config"
	xhttp "github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/http"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/util"
)

// SecondaryVendor wraps the chart vendor's API. Quotes and candles come from
// one envelope-shaped endpoint; news comes from an RSS-to-JSON bridge.
type SecondaryVendor struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

func NewSecondaryVendor(cfg config.Provider) *SecondaryVendor {
	return &SecondaryVendor{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
	}
}

func (v *SecondaryVendor) Name() string { return "secondary-vendor" }

type vendorChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				ChartPreviousClose  float64 `json:"chartPreviousClose"`
				RegularMarketVolume int64   `json:"regularMarketVolume"`
				RegularMarketDayHi  float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLo  float64 `json:"regularMarketDayLow"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

func (v *SecondaryVendor) fetchChart(ctx context.Context, symbol, rng, interval string) (*vendorChart, error) {
	var raw vendorChart
	err := v.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", v.baseURL, symbol),
		QueryParams: map[string][]string{
			"range":    {rng},
			"interval": {interval},
		},
		Headers: map[string]string{"User-Agent": "echart/1.0"},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("vendor chart %s: %w", symbol, err)
	}
	if len(raw.Chart.Result) == 0 {
		return nil, ErrInvalidPayload
	}
	return &raw, nil
}

func (v *SecondaryVendor) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	raw, err := v.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return nil, err
	}

	meta := raw.Chart.Result[0].Meta
	q := &models.Quote{
		Symbol:        symbol,
		Price:         meta.RegularMarketPrice,
		Change:        meta.RegularMarketPrice - meta.ChartPreviousClose,
		High:          meta.RegularMarketDayHi,
		Low:           meta.RegularMarketDayLo,
		Volume:        meta.RegularMarketVolume,
		PreviousClose: meta.ChartPreviousClose,
	}
	if meta.ChartPreviousClose > 0 {
		q.ChangePercent = q.Change / meta.ChartPreviousClose * 100
	}
	if err := ValidateQuote(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (v *SecondaryVendor) FetchSeries(ctx context.Context, symbol, rng string) (*models.Series, error) {
	interval := "1d"
	if rng == "1d" {
		interval = "5m"
	}
	raw, err := v.fetchChart(ctx, symbol, rng, interval)
	if err != nil {
		return nil, err
	}

	res := raw.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, ErrInvalidPayload
	}
	bars := res.Indicators.Quote[0]

	candles := make([]models.Candle, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(bars.Close) {
			break
		}
		c := models.Candle{Bucket: time.Unix(ts, 0).UTC(), Close: bars.Close[i]}
		if i < len(bars.Open) {
			c.Open = bars.Open[i]
		}
		if i < len(bars.High) {
			c.High = bars.High[i]
		}
		if i < len(bars.Low) {
			c.Low = bars.Low[i]
		}
		if i < len(bars.Volume) {
			c.Volume = bars.Volume[i]
		}
		candles = append(candles, c)
	}

	s := &models.Series{Symbol: symbol, Range: rng, Candles: candles}
	if err := ValidateSeries(s); err != nil {
		return nil, err
	}
	return s, nil
}

type vendorNews struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		PubDate string `json:"pubDate"`
	} `json:"items"`
}

func (v *SecondaryVendor) FetchTexts(ctx context.Context, symbol string, kind TextKind, limit int) ([]Text, error) {
	if kind != TextNews {
		return nil, ErrUnsupported
	}

	var raw vendorNews
	err := v.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         v.baseURL + "/v1/news",
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("vendor news %s: %w", symbol, err)
	}
	if len(raw.Items) == 0 {
		return nil, ErrInvalidPayload
	}

	if limit > 0 && len(raw.Items) > limit {
		raw.Items = raw.Items[:limit]
	}
	texts := make([]Text, 0, len(raw.Items))
	for _, it := range raw.Items {
		t := Text{Title: it.Title, URL: it.Link}
		if ts, err := time.Parse(time.RFC1123Z, it.PubDate); err == nil {
			t.PublishedAt = ts.UTC()
		}
		texts = append(texts, t)
	}
	return texts, nil
}

// TertiaryVendor is the last live provider in the chain: a community data
// API serving delayed quotes and the social message stream.
type TertiaryVendor struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

func NewTertiaryVendor(cfg config.Provider) *TertiaryVendor {
	return &TertiaryVendor{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
	}
}

func (v *TertiaryVendor) Name() string { return "tertiary-vendor" }

type tertiaryQuote struct {
	Symbol string  `json:"symbol"`
	Last   float64 `json:"last"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

func (v *TertiaryVendor) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var raw tertiaryQuote
	err := v.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         v.baseURL + "/quotes/" + symbol,
		QueryParams: map[string][]string{"apikey": {v.apiKey}},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("tertiary quote %s: %w", symbol, err)
	}

	q := &models.Quote{
		Symbol:        symbol,
		Price:         raw.Last,
		Change:        raw.Last - raw.Close,
		Open:          raw.Open,
		High:          raw.High,
		Low:           raw.Low,
		Volume:        raw.Volume,
		PreviousClose: raw.Close,
	}
	if raw.Close > 0 {
		q.ChangePercent = q.Change / raw.Close * 100
	}
	if err := ValidateQuote(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (v *TertiaryVendor) FetchSeries(ctx context.Context, symbol, rng string) (*models.Series, error) {
	return nil, ErrUnsupported
}

type tertiaryMessages struct {
	Messages []struct {
		Body      string `json:"body"`
		CreatedAt string `json:"created_at"`
	} `json:"messages"`
}

func (v *TertiaryVendor) FetchTexts(ctx context.Context, symbol string, kind TextKind, limit int) ([]Text, error) {
	if kind != TextSocial {
		return nil, ErrUnsupported
	}

	var raw tertiaryMessages
	err := v.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         fmt.Sprintf("%s/streams/symbol/%s.json", v.baseURL, symbol),
		QueryParams: map[string][]string{"apikey": {v.apiKey}},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("tertiary social %s: %w", symbol, err)
	}
	if len(raw.Messages) == 0 {
		return nil, ErrInvalidPayload
	}

	if limit > 0 && len(raw.Messages) > limit {
		raw.Messages = raw.Messages[:limit]
	}
	texts := make([]Text, 0, len(raw.Messages))
	for _, m := range raw.Messages {
		t := Text{Body: m.Body}
		// The stream API has shipped both RFC3339 and unix-second timestamps.
		if ts, ok := util.ParseTime(m.CreatedAt); ok {
			t.PublishedAt = ts.UTC()
		}
		texts = append(texts, t)
	}
	return texts, nil
}
