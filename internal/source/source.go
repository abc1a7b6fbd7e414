package source

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/models"
)

var (
	// ErrInvalidPayload marks a response that arrived but is structurally or
	// semantically empty (zero/NaN price, empty series). The resolver treats
	// it exactly like a failure and advances to the next strategy.
	ErrInvalidPayload = errors.New("source: invalid payload")

	// ErrUnsupported marks a capability a strategy does not serve.
	ErrUnsupported = errors.New("source: capability not supported")
)

// TextKind selects which text feed a strategy serves.
type TextKind string

const (
	TextNews   TextKind = "news"
	TextSocial TextKind = "social"
)

// Text is one raw item from a news or social feed, before scoring.
type Text struct {
	Title       string
	Body        string
	URL         string
	PublishedAt time.Time
}

// Strategy is the uniform adapter contract every upstream provider
// implements. A strategy that does not serve a capability returns
// ErrUnsupported so the resolver can skip it.
type Strategy interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)
	FetchSeries(ctx context.Context, symbol, rng string) (*models.Series, error)
	FetchTexts(ctx context.Context, symbol string, kind TextKind, limit int) ([]Text, error)
}

// ValidateQuote rejects semantically empty quotes. A provider answering with
// a zero or NaN price has nothing useful to say regardless of HTTP status.
func ValidateQuote(q *models.Quote) error {
	if q == nil || q.Price <= 0 || math.IsNaN(q.Price) || math.IsInf(q.Price, 0) {
		return ErrInvalidPayload
	}
	return nil
}

// ValidateSeries rejects empty candle series.
func ValidateSeries(s *models.Series) error {
	if s == nil || len(s.Candles) == 0 {
		return ErrInvalidPayload
	}
	return nil
}
