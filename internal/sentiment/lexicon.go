package sentiment

import "strings"

// LexiconScorer is the general-purpose polarity strategy: an embedded
// AFINN-style lexicon of weighted terms in [-5, 5], averaged over the
// matched tokens and normalized to [-1, 1]. It cannot fail; text with
// no scored tokens yields 0.0.
type LexiconScorer struct {
	weights map[string]float64
}

// lexicon holds term weights. Weights follow the AFINN convention:
// -5 (most negative) to +5 (most positive).
var lexicon = map[string]float64{
	// positive
	"beat": 3, "beats": 3, "boom": 3, "bullish": 3, "gain": 2, "gains": 2,
	"gained": 2, "growth": 2, "grow": 2, "grows": 2, "improve": 2,
	"improved": 2, "improves": 2, "jump": 2, "jumps": 2, "jumped": 2,
	"outperform": 3, "outperforms": 3, "profit": 2, "profits": 2,
	"profitable": 3, "rally": 3, "rallies": 3, "rebound": 2, "rebounds": 2,
	"record": 2, "recover": 2, "recovers": 2, "recovery": 2, "rise": 2,
	"rises": 2, "rose": 2, "soar": 4, "soars": 4, "soared": 4, "strong": 2,
	"stronger": 2, "surge": 4, "surges": 4, "surged": 4, "upbeat": 3,
	"upgrade": 3, "upgraded": 3, "upgrades": 3, "win": 3, "wins": 3,
	"won": 3, "approval": 2, "approved": 2, "award": 2, "awarded": 2,
	"bonus": 2, "buyback": 2, "dividend": 1, "expansion": 2, "expands": 2,
	"launch": 1, "launches": 1, "partnership": 2, "positive": 2,
	"success": 2, "successful": 3, "best": 3, "good": 2, "great": 3,
	"top": 2, "robust": 2, "healthy": 2, "exceed": 3, "exceeds": 3,
	"exceeded": 3,

	// negative
	"bearish": -3, "collapse": -4, "collapses": -4, "collapsed": -4,
	"crash": -4, "crashes": -4, "crashed": -4, "crisis": -3, "cut": -2,
	"cuts": -2, "decline": -2, "declines": -2, "declined": -2,
	"default": -3, "defaults": -3, "downgrade": -3, "downgraded": -3,
	"downgrades": -3, "drop": -2, "drops": -2, "dropped": -2, "fall": -2,
	"falls": -2, "fell": -2, "fraud": -4, "investigation": -2, "lawsuit": -3,
	"layoff": -3, "layoffs": -3, "loss": -2, "losses": -2, "lost": -2,
	"miss": -2, "misses": -2, "missed": -2, "negative": -2, "penalty": -2,
	"plunge": -4, "plunges": -4, "plunged": -4, "probe": -2, "recall": -2,
	"recalls": -2, "resign": -2, "resigns": -2, "resigned": -2, "risk": -1,
	"risks": -1, "scandal": -3, "slump": -3, "slumps": -3, "slumped": -3,
	"strike": -2, "strikes": -2, "tumble": -3, "tumbles": -3, "tumbled": -3,
	"warn": -2, "warns": -2, "warning": -2, "weak": -2, "weaker": -2,
	"worst": -3, "bad": -2, "bankrupt": -4, "bankruptcy": -4, "debt": -1,
	"halt": -2, "halted": -2, "slowdown": -2, "underperform": -3,
	"underperforms": -3, "volatile": -1,
}

// NewLexiconScorer creates the lexical-polarity scorer.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{weights: lexicon}
}

// Score averages the weights of matched tokens and maps the result
// into [-1, 1].
func (s *LexiconScorer) Score(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0.0
	}

	var sum float64
	matched := 0
	for _, tok := range tokens {
		if w, ok := s.weights[tok]; ok {
			sum += w
			matched++
		}
	}
	if matched == 0 {
		return 0.0
	}

	score := sum / float64(matched) / 5.0
	if score > 1.0 {
		score = 1.0
	} else if score < -1.0 {
		score = -1.0
	}
	return score
}

// tokenize lower-cases and splits on anything that is not a letter.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
}
