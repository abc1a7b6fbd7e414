package models

import "time"

// Signal source names. The fusion weights are keyed by these.
const (
	SignalPrice  = "price"
	SignalNews   = "news"
	SignalSocial = "social"
)

// Sentiment labels derived from the composite score.
const (
	LabelBullish = "bullish"
	LabelBearish = "bearish"
	LabelNeutral = "neutral"
)

// SentimentSignal is one independent input to the fusion engine.
type SentimentSignal struct {
	SourceName string  `json:"sourceName"` // price, news or social
	Score      float64 `json:"score"`      // 0..100
	Weight     float64 `json:"weight"`     // fixed per source
	Defaulted  bool    `json:"defaulted"`  // true when substituted with neutral 50
}

// FusedSentiment is the weighted combination of the three signals.
// Created fresh on every fusion request, never mutated.
type FusedSentiment struct {
	Symbol              string            `json:"symbol"`
	CompositeScore      int               `json:"compositeScore"` // 0..100
	Label               string            `json:"label"`
	Confidence          int               `json:"confidence"` // 0..100, agreement measure
	ContributingSignals []SentimentSignal `json:"contributingSignals"`
	ComputedAt          time.Time         `json:"computedAt"`
}
