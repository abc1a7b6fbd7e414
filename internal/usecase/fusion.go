package usecase

import (
	"math"

	"github.com/pavankpatil043-source/e-chart-Pr-sub001/internal/domain/models"
)

// Fixed fusion weights. Realized price movement is the most reliable signal;
// the qualitative feeds corroborate but must not dominate.
const (
	WeightPrice  = 0.65
	WeightNews   = 0.25
	WeightSocial = 0.10

	BullishThreshold = 65
	BearishThreshold = 35

	// NeutralScore substitutes an unavailable signal so fusion always
	// produces a result.
	NeutralScore = 50

	// missingPenalty is subtracted from confidence per defaulted signal, so
	// losing a signal always reads as lower trust even when the substitute
	// happens to sit near the composite.
	missingPenalty = 20
)

// SignalInput is one candidate input to fusion. OK is false when the
// signal's resolver produced nothing at all, not even a fallback.
type SignalInput struct {
	Score float64
	OK    bool
}

// FusionEngine combines the three independent signals into one composite
// score with a confidence measure. Stateless and pure.
type FusionEngine struct{}

// Fuse computes the weighted composite, its label, and a confidence derived
// from how tightly the individual scores agree with the composite.
func (FusionEngine) Fuse(symbol string, price, news, social SignalInput) models.FusedSentiment {
	signals := []models.SentimentSignal{
		buildSignal(models.SignalPrice, WeightPrice, price),
		buildSignal(models.SignalNews, WeightNews, news),
		buildSignal(models.SignalSocial, WeightSocial, social),
	}

	weighted := 0.0
	for _, s := range signals {
		weighted += s.Score * s.Weight
	}
	composite := clampInt(int(math.Round(weighted)), 0, 100)

	label := models.LabelNeutral
	switch {
	case composite >= BullishThreshold:
		label = models.LabelBullish
	case composite <= BearishThreshold:
		label = models.LabelBearish
	}

	// Confidence: 100 minus the RMS deviation of the individual scores from
	// the composite. Agreement reads as trust; divergence reads as doubt.
	sumSq := 0.0
	missing := 0
	for _, s := range signals {
		d := s.Score - float64(composite)
		sumSq += d * d
		if s.Defaulted {
			missing++
		}
	}
	rms := math.Sqrt(sumSq / float64(len(signals)))
	confidence := clampInt(int(math.Round(100-rms))-missing*missingPenalty, 0, 100)

	return models.FusedSentiment{
		Symbol:              symbol,
		CompositeScore:      composite,
		Label:               label,
		Confidence:          confidence,
		ContributingSignals: signals,
	}
}

func buildSignal(name string, weight float64, in SignalInput) models.SentimentSignal {
	s := models.SentimentSignal{SourceName: name, Weight: weight}
	if in.OK {
		s.Score = clampFloat(in.Score, 0, 100)
	} else {
		s.Score = NeutralScore
		s.Defaulted = true
	}
	return s
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
