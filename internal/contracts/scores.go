package contracts

import "time"

// Watchlist labels, most specific last. Later rules override earlier
// ones during assignment.
const (
	LabelWatch             = "Watch"
	LabelHighRiskWatch     = "High Risk Watch"
	LabelCatalystMomentum  = "Catalyst + Momentum"
	LabelTurnaroundWatch   = "Turnaround Watch"
)

// ScoreResult is the output of one scoring pass for a ticker. At most
// one authoritative result exists per (ticker, date) when persisted.
type ScoreResult struct {
	Ticker     string    `json:"ticker"`
	Date       time.Time `json:"date"`
	Momentum   float64   `json:"momentum"`
	Risk       float64   `json:"risk"`
	NewsImpact float64   `json:"news_impact"`
	FinalScore float64   `json:"final_score"`
	Label      string    `json:"label"`
	Reason     string    `json:"reason"`

	// Top-N bucketed headlines attached for API consumers; nil when
	// not requested.
	News *BucketedNews `json:"news,omitempty"`
}
