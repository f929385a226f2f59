package sentiment

import "fmt"

// Scorer maps free text to a scalar polarity in roughly [-1, 1].
// Implementations must be deterministic and must never panic; anything
// unscorable yields 0.0.
type Scorer interface {
	Score(text string) float64
}

// NewScorer picks a strategy by name. The choice is made once at
// startup; there is no runtime branching on library availability.
func NewScorer(strategy string) (Scorer, error) {
	switch strategy {
	case "lexicon":
		return NewLexiconScorer(), nil
	case "keyword":
		return NewKeywordScorer(), nil
	default:
		return nil, fmt.Errorf("unknown sentiment strategy %q (valid: lexicon, keyword)", strategy)
	}
}
