package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/models"
	"github.com/pavankpatil043-source/e-chart-Pr-sub001/pkg/config"
)

func provider(baseURL string) config.Provider {
	return config.Provider{BaseURL: baseURL, APIKey: "test-key", Timeout: 2 * time.Second}
}

func TestExchangeFetchQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"c":101.5,"d":1.5,"dp":1.5,"h":102,"l":99,"o":100,"pc":100,"v":12345}`))
	}))
	defer srv.Close()

	ex := NewExchange(provider(srv.URL))
	q, err := ex.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, 101.5, q.Price)
	assert.Equal(t, 1.5, q.ChangePercent)
	assert.Equal(t, 100.0, q.PreviousClose)
	assert.Equal(t, int64(12345), q.Volume)
}

func TestExchangeZeroPriceIsInvalidPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"c":0,"d":0,"dp":0}`))
	}))
	defer srv.Close()

	ex := NewExchange(provider(srv.URL))
	_, err := ex.FetchQuote(context.Background(), "GHOST")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestExchangeCandleStatusNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"s":"no_data"}`))
	}))
	defer srv.Close()

	ex := NewExchange(provider(srv.URL))
	_, err := ex.FetchSeries(context.Background(), "AAPL", "1mo")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestExchangeSocialUnsupported(t *testing.T) {
	ex := NewExchange(provider("http://unused"))
	_, err := ex.FetchTexts(context.Background(), "AAPL", TextSocial, 10)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSecondaryVendorChartEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chart":{"result":[{
			"meta":{"regularMarketPrice":101.5,"chartPreviousClose":100,"regularMarketVolume":5000,"regularMarketDayHigh":102,"regularMarketDayLow":99},
			"timestamp":[1700000000,1700086400],
			"indicators":{"quote":[{"open":[100,101],"high":[102,103],"low":[99,100],"close":[101,102],"volume":[10,20]}]}
		}]}}`))
	}))
	defer srv.Close()

	v := NewSecondaryVendor(provider(srv.URL))

	q, err := v.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 101.5, q.Price)
	assert.InDelta(t, 1.5, q.ChangePercent, 1e-9)

	s, err := v.FetchSeries(context.Background(), "AAPL", "5d")
	require.NoError(t, err)
	require.Len(t, s.Candles, 2)
	assert.Equal(t, 102.0, s.Candles[1].Close)
}

func TestSecondaryVendorEmptyEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"chart":{"result":[]}}`))
	}))
	defer srv.Close()

	v := NewSecondaryVendor(provider(srv.URL))
	_, err := v.FetchQuote(context.Background(), "GHOST")
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestTertiaryVendorSocialStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/streams/symbol/AAPL.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[
			{"body":"to the moon","created_at":"2026-08-01T10:00:00Z"},
			{"body":"bagholding again","created_at":"1754042400"}
		]}`))
	}))
	defer srv.Close()

	v := NewTertiaryVendor(provider(srv.URL))
	texts, err := v.FetchTexts(context.Background(), "AAPL", TextSocial, 30)
	require.NoError(t, err)
	require.Len(t, texts, 2)
	assert.Equal(t, "to the moon", texts[0].Body)
	assert.False(t, texts[0].PublishedAt.IsZero())
	assert.False(t, texts[1].PublishedAt.IsZero(), "unix-second timestamps must parse too")
}

func TestTertiaryVendorSeriesUnsupported(t *testing.T) {
	v := NewTertiaryVendor(provider("http://unused"))
	_, err := v.FetchSeries(context.Background(), "AAPL", "1mo")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestStaticQuoteIsDeterministic(t *testing.T) {
	s := NewStatic(nil)

	a, err := s.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	b, err := s.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, a.Price, b.Price)
	assert.Greater(t, a.Price, 0.0)
	assert.Equal(t, a.Price, a.PreviousClose, "synthetic quote carries no movement")
}

func TestStaticUsesLastKnownClose(t *testing.T) {
	s := NewStatic(closeStore{price: 123.45})

	q, err := s.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 123.45, q.Price)
}

func TestStaticSeriesShape(t *testing.T) {
	s := NewStatic(nil)

	series, err := s.FetchSeries(context.Background(), "AAPL", "5d")
	require.NoError(t, err)
	assert.Len(t, series.Candles, 5)
	for _, c := range series.Candles {
		assert.GreaterOrEqual(t, c.High, c.Low)
	}
}

func TestStaticTextsUnsupported(t *testing.T) {
	s := NewStatic(nil)
	_, err := s.FetchTexts(context.Background(), "AAPL", TextNews, 10)
	assert.ErrorIs(t, err, ErrUnsupported)
}

// closeStore is a minimal history stub serving one fixed close.
type closeStore struct{ price float64 }

func (c closeStore) Record(context.Context, *models.Quote, string, time.Duration) error {
	return nil
}
func (c closeStore) LastClose(context.Context, string) (float64, bool, error) {
	return c.price, true, nil
}
func (c closeStore) Health(context.Context) error { return nil }
func (c closeStore) Close() error                 { return nil }
