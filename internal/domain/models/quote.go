package models

import "time"

// Quote is the normalized quote shape every provider adapter resolves to.
// A quote is immutable once constructed; a new resolution replaces it.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Volume        int64     `json:"volume"`
	PreviousClose float64   `json:"previousClose"`
	SourceName    string    `json:"sourceName"`
	ResolvedAt    time.Time `json:"resolvedAt"`
}

// Candle represents one OHLCV bar of a historical series.
type Candle struct {
	Bucket time.Time `json:"bucket"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is a historical candle series for one symbol.
type Series struct {
	Symbol     string    `json:"symbol"`
	Range      string    `json:"range"`
	Candles    []Candle  `json:"candles"`
	SourceName string    `json:"sourceName"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// Headline is one news item with its lexical sentiment score attached.
type Headline struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Score       int       `json:"score"`  // 1..10 keyword scale
	Label       string    `json:"label"`  // positive, negative, neutral
	Impact      int       `json:"impact"` // matched impact keywords
}

// Resolution wraps a resolved value with its provenance flags.
// Consumers must treat Source/Cached/Fallback as first-class: a degraded
// answer is the designed norm, not an edge case.
type Resolution[T any] struct {
	Value    T      `json:"value"`
	Source   string `json:"source"`
	Cached   bool   `json:"cached"`
	Stale    bool   `json:"stale,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
	Reason   string `json:"reason,omitempty"` // last failure when falling back
}
