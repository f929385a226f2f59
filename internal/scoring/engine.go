package scoring

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rpillai/nsewatch/internal/contracts"
)

// Config holds the engine knobs. The weights themselves are fixed:
// they are tuned as a set and changing one in isolation shifts the
// meaning of every stored score.
type Config struct {
	// NewsWindowHours bounds how far back headlines count toward the
	// news impact term.
	NewsWindowHours int

	// MinHistory is the minimum usable closes required to score. The
	// 20-day return needs 21 points; the rest is buffer.
	MinHistory int
}

// Engine computes watch scores from a price series and recent
// headlines. It is pure: no I/O, no clock reads, same inputs always
// produce the same ScoreResult.
type Engine struct {
	cfg Config
}

// NewEngine creates a scoring engine, applying defaults for zero
// fields (48h window, 25 minimum points).
func NewEngine(cfg Config) *Engine {
	if cfg.NewsWindowHours <= 0 {
		cfg.NewsWindowHours = 48
	}
	if cfg.MinHistory <= 0 {
		cfg.MinHistory = 25
	}
	return &Engine{cfg: cfg}
}

// Score computes the watch score for ticker as of date. The series
// must be ordered oldest to newest. now anchors the news window:
// headlines published before now minus the window, or with no
// publish timestamp, do not count.
func (e *Engine) Score(ticker string, date, now time.Time, series contracts.PriceSeries, news []contracts.NewsItem) (contracts.ScoreResult, error) {
	closes := series.Closes()
	if len(closes) < e.cfg.MinHistory {
		return contracts.ScoreResult{}, fmt.Errorf("%w: %s has %d closes, need %d",
			contracts.ErrInsufficientHistory, ticker, len(closes), e.cfg.MinHistory)
	}

	r1 := trailingReturn(closes, 1)
	r5 := trailingReturn(closes, 5)
	r20 := trailingReturn(closes, 20)

	// Momentum blends all three horizons: the 1D term emphasizes the
	// fresh move, 5D and 20D keep it honest against the trend.
	momentum := r1*50.0 + r5*30.0 + r20*20.0

	risk := riskProxy(closes)

	since := now.Add(-time.Duration(e.cfg.NewsWindowHours) * time.Hour)
	count, avgSent := newsAggregate(news, since)

	newsImpact := avgSent*60.0 + math.Min(float64(count), 10.0)*4.0

	isDowntrend := r5 < 0.0 && r20 < 0.0
	hasPositiveNews := newsImpact >= 8.0
	// Downtrend with a green day, or near-flat 5D, counts as an early
	// stabilization signal.
	hasBounce := r1 > 0.0 || r5 > -0.01

	var bonus float64
	if isDowntrend && hasPositiveNews {
		bonus = math.Min(12.0, newsImpact*0.6)
		if hasBounce {
			bonus += 3.0
		}
	}

	finalScore := 0.5*newsImpact + 0.3*momentum - 0.2*risk + bonus

	// Later checks override earlier ones: a downtrend-plus-catalyst
	// setup reads as Turnaround Watch even when it is also high risk.
	label := contracts.LabelWatch
	if risk > 4.0 && finalScore > 0 {
		label = contracts.LabelHighRiskWatch
	}
	if newsImpact > 10 && momentum > 0 {
		label = contracts.LabelCatalystMomentum
	}
	if isDowntrend && hasPositiveNews {
		label = contracts.LabelTurnaroundWatch
	}

	reason := e.buildReason(count, avgSent, r1, r5, r20, risk, isDowntrend, hasPositiveNews, hasBounce, label)

	return contracts.ScoreResult{
		Ticker:     ticker,
		Date:       date,
		Momentum:   momentum,
		Risk:       risk,
		NewsImpact: newsImpact,
		FinalScore: finalScore,
		Label:      label,
		Reason:     reason,
	}, nil
}

// buildReason assembles the human-readable explanation, one sentence
// per contributing factor, joined with spaces.
func (e *Engine) buildReason(count int, avgSent, r1, r5, r20, risk float64, isDowntrend, hasPositiveNews, hasBounce bool, label string) string {
	var parts []string

	w := e.cfg.NewsWindowHours
	if count > 0 {
		switch {
		case avgSent >= contracts.PositiveThreshold:
			parts = append(parts, fmt.Sprintf("News: Positive sentiment (%.2f) across %d articles (%dh).", avgSent, count, w))
		case avgSent <= contracts.NegativeThreshold:
			parts = append(parts, fmt.Sprintf("News: Negative sentiment (%.2f) across %d articles (%dh).", avgSent, count, w))
		default:
			parts = append(parts, fmt.Sprintf("News: Mixed/neutral sentiment (%.2f) across %d articles (%dh).", avgSent, count, w))
		}
	} else {
		parts = append(parts, fmt.Sprintf("News: No major articles detected in last %dh (or news ingestion not enabled).", w))
	}

	if isDowntrend && hasPositiveNews {
		if hasBounce {
			parts = append(parts, "Setup: Downtrend + fresh positive catalyst with early bounce (needs confirmation).")
		} else {
			parts = append(parts, "Setup: Downtrend + fresh positive catalyst (higher risk; wait for confirmation).")
		}
	}

	parts = append(parts, fmt.Sprintf("Returns: 1D=%.2f%%, 5D=%.2f%%, 20D=%.2f%%.", r1*100, r5*100, r20*100))
	parts = append(parts, fmt.Sprintf("Risk: 30D volatility proxy=%.2f.", risk))
	parts = append(parts, fmt.Sprintf("Label: %s.", label))

	return strings.Join(parts, " ")
}

// trailingReturn is the simple return from n trading days ago to the
// latest close, or 0 when the series is too short.
func trailingReturn(closes []float64, n int) float64 {
	if len(closes) < n+1 {
		return 0.0
	}
	return closes[len(closes)-1]/closes[len(closes)-(n+1)] - 1.0
}

// riskProxy is the sample standard deviation of the last 30 daily
// returns, scaled by 100. Fewer than 31 closes, or too few returns for
// a meaningful estimate, yields 0.
func riskProxy(closes []float64) float64 {
	if len(closes) < 31 {
		return 0.0
	}

	window := closes[len(closes)-31:]
	rets := make([]float64, 0, 30)
	for i := 1; i < len(window); i++ {
		rets = append(rets, window[i]/window[i-1]-1.0)
	}
	if len(rets) <= 5 {
		return 0.0
	}

	var sum float64
	for _, r := range rets {
		sum += r
	}
	mean := sum / float64(len(rets))

	var ss float64
	for _, r := range rets {
		d := r - mean
		ss += d * d
	}
	return math.Sqrt(ss/float64(len(rets)-1)) * 100.0
}

// newsAggregate counts headlines published within the window and
// averages their sentiment. Items with no publish timestamp are
// excluded: they cannot be placed inside the window.
func newsAggregate(news []contracts.NewsItem, since time.Time) (int, float64) {
	var count int
	var sum float64
	for _, n := range news {
		if n.PublishedAt == nil || n.PublishedAt.Before(since) {
			continue
		}
		count++
		sum += n.Sentiment
	}
	if count == 0 {
		return 0, 0.0
	}
	return count, sum / float64(count)
}
