package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositiveHeadline(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	// Three positive terms, zero negative: score = min(10, 6+3) = 9.
	r := s.Score("Company beats earnings, shares surge and rally")

	assert.Equal(t, 3, r.PositiveCount)
	assert.Equal(t, 0, r.NegativeCount)
	assert.Equal(t, 9, r.Score)
	assert.Equal(t, "positive", r.Label)
}

func TestPositiveScoreCapsAtTen(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	r := s.Score("surge rally gain profit beat bullish growth soar jump")
	assert.Equal(t, 10, r.Score)
	assert.Equal(t, "positive", r.Label)
}

func TestNegativeHeadline(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	// Three negative terms: score = max(1, 5-3) = 2.
	r := s.Score("Shares plunge as outlook weak, analysts see decline")

	assert.Equal(t, 3, r.NegativeCount)
	assert.Equal(t, 2, r.Score)
	assert.Equal(t, "negative", r.Label)
}

func TestNegativeScoreFloorsAtOne(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	r := s.Score("plunge crash slump fraud probe loss miss sell")
	assert.Equal(t, 1, r.Score)
	assert.Equal(t, "negative", r.Label)
}

func TestNetWithinBandIsNeutral(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	// One positive, zero negative: net 1 is inside the neutral band.
	r := s.Score("Quarterly profit in line with estimates")
	assert.Equal(t, 1, r.PositiveCount)
	assert.Equal(t, 5, r.Score)
	assert.Equal(t, "neutral", r.Label)
}

func TestNoMatchesIsNeutral(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	r := s.Score("Company schedules annual general meeting")
	assert.Equal(t, 5, r.Score)
	assert.Equal(t, "neutral", r.Label)
	assert.Equal(t, 30, r.Confidence)
}

func TestSubstringMatchingIsIntentional(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	// Containment matching: "low" matches inside "below", "high" on its own.
	// The two cancel to neutral.
	r := s.Score("Stock trades below its yearly high")
	assert.Equal(t, 1, r.PositiveCount)
	assert.Equal(t, 1, r.NegativeCount)
	assert.Equal(t, "neutral", r.Label)
}

func TestImpactTermsRaiseConfidence(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	plain := s.Score("shares surge and rally on strong volume")
	impact := s.Score("shares surge and rally on strong earnings guidance")

	assert.Greater(t, impact.Confidence, plain.Confidence)
	assert.Equal(t, 2, impact.ImpactCount)
}

func TestScaled(t *testing.T) {
	assert.Equal(t, 90.0, Result{Score: 9}.Scaled())
	assert.Equal(t, 50.0, Result{Score: 5}.Scaled())
}

func TestScoreAllAverages(t *testing.T) {
	s := NewScorer(Lexicon{
		Positive: []string{"good"},
		Negative: []string{"bad"},
	})

	avg, results := s.ScoreAll([]string{
		"good good good", // net 3 -> min(10, 6+3) = 9 -> 90
		"bad bad bad",    // net -3 -> max(1, 5-3) = 2 -> 20
	})
	assert.Len(t, results, 2)
	assert.Equal(t, 55.0, avg)
}

func TestScoreAllEmptyIsNeutral(t *testing.T) {
	s := NewScorer(DefaultLexicon())

	avg, results := s.ScoreAll(nil)
	assert.Equal(t, 50.0, avg)
	assert.Nil(t, results)
}
