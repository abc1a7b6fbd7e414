package sentiment

import "strings"

// Lexicon holds the term lists the scorer matches against. Injected so tests
// can supply minimal lexicons instead of the full default set.
type Lexicon struct {
	Positive []string
	Negative []string
	Impact   []string
}

// DefaultLexicon returns the built-in financial term lists.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: []string{
			"surge", "rally", "gain", "profit", "beat", "upgrade", "bullish",
			"growth", "record", "strong", "outperform", "buy", "soar", "jump",
			"rise", "high", "boost", "positive", "up",
		},
		Negative: []string{
			"fall", "drop", "loss", "miss", "downgrade", "bearish", "decline",
			"weak", "underperform", "sell", "plunge", "crash", "slump", "cut",
			"low", "risk", "negative", "down", "fraud", "probe",
		},
		Impact: []string{
			"earnings", "merger", "acquisition", "regulation", "lawsuit",
			"dividend", "guidance", "bankruptcy", "buyback", "ipo", "fed",
			"rbi", "inflation",
		},
	}
}

// Result is the outcome of scoring one text.
type Result struct {
	Score         int    `json:"score"` // 1..10, neutral is 5
	Label         string `json:"label"` // positive, negative, neutral
	Net           int    `json:"net"`
	PositiveCount int    `json:"positiveCount"`
	NegativeCount int    `json:"negativeCount"`
	ImpactCount   int    `json:"impactCount"`
	Confidence    int    `json:"confidence"` // 0..100
}

// Scaled rescales the 1..10 score onto the 0..100 scale the fusion engine uses.
func (r Result) Scaled() float64 {
	return float64(r.Score) * 10
}

// Scorer maps free text to a bounded sentiment score with no learned model.
// It is stateless and pure: identical input always yields identical output.
type Scorer struct {
	lex Lexicon
}

func NewScorer(lex Lexicon) *Scorer {
	return &Scorer{lex: lex}
}

// Score counts lexicon term occurrences in the lower-cased text. Matching is
// substring containment, not word-boundary tokenization, so a term can match
// inside an unrelated word ("low" inside "below"). That mirrors the observed
// behavior of the data feeds this replaced and is kept intentionally.
func (s *Scorer) Score(text string) Result {
	lower := strings.ToLower(text)

	pos := countOccurrences(lower, s.lex.Positive)
	neg := countOccurrences(lower, s.lex.Negative)
	impact := countOccurrences(lower, s.lex.Impact)
	net := pos - neg

	r := Result{
		Net:           net,
		PositiveCount: pos,
		NegativeCount: neg,
		ImpactCount:   impact,
	}

	switch {
	case net > 1:
		r.Score = min(10, 6+pos)
		r.Label = "positive"
	case net < -1:
		r.Score = max(1, 5-neg)
		r.Label = "negative"
	default:
		r.Score = 5
		r.Label = "neutral"
	}

	r.Confidence = confidence(pos+neg, impact)
	return r
}

// ScoreAll scores each text independently and averages the results onto the
// 0..100 scale. Returns neutral 50 for an empty slice.
func (s *Scorer) ScoreAll(texts []string) (float64, []Result) {
	if len(texts) == 0 {
		return 50, nil
	}
	results := make([]Result, 0, len(texts))
	sum := 0.0
	for _, t := range texts {
		r := s.Score(t)
		results = append(results, r)
		sum += r.Scaled()
	}
	return sum / float64(len(texts)), results
}

// confidence grows with the number of matched terms; impact terms weigh more
// because financially consequential news moves prices harder.
func confidence(matched, impact int) int {
	c := 30 + 10*matched + 15*impact
	if c > 100 {
		c = 100
	}
	return c
}

func countOccurrences(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		n += strings.Count(text, term)
	}
	return n
}
