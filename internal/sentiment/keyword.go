package sentiment

import "strings"

// KeywordScorer is the dependency-free fallback strategy: count
// occurrences of fixed positive and negative word sets and return
// (pos - neg) / (pos + neg). Matching is substring containment on the
// lower-cased text, not tokenized, so word variants ("upgraded",
// "upgrades") are caught cheaply.
type KeywordScorer struct {
	positive []string
	negative []string
}

var positiveWords = []string{
	"beat", "beats", "growth", "profit", "surge", "record", "upgrade",
	"strong", "gain", "rally", "wins", "order win", "expansion", "buyback",
	"dividend", "bonus", "approval", "launch", "partnership", "contract",
}

var negativeWords = []string{
	"loss", "losses", "fall", "falls", "drop", "plunge", "downgrade",
	"weak", "decline", "probe", "fraud", "penalty", "lawsuit", "default",
	"recall", "strike", "resign", "miss", "misses", "cut", "warning",
}

// NewKeywordScorer creates the keyword-heuristic scorer.
func NewKeywordScorer() *KeywordScorer {
	return &KeywordScorer{
		positive: positiveWords,
		negative: negativeWords,
	}
}

// Score returns (pos - neg) / (pos + neg) over keyword hits, or 0.0
// when neither set matches. Deterministic, no failure mode.
func (s *KeywordScorer) Score(text string) float64 {
	lower := strings.ToLower(text)

	var pos, neg int
	for _, w := range s.positive {
		pos += strings.Count(lower, w)
	}
	for _, w := range s.negative {
		neg += strings.Count(lower, w)
	}

	if pos+neg == 0 {
		return 0.0
	}
	return float64(pos-neg) / float64(pos+neg)
}
