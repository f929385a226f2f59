package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpillai/nsewatch/internal/contracts"
)

var (
	scoreDate = time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC)
	scoreNow  = time.Date(2025, 8, 22, 15, 0, 0, 0, time.UTC)
)

// makeSeries builds an ordered series from closes, one trading day
// apart, ending on scoreDate.
func makeSeries(closes ...float64) contracts.PriceSeries {
	series := make(contracts.PriceSeries, len(closes))
	for i, c := range closes {
		series[i] = contracts.PricePoint{
			Date:  scoreDate.AddDate(0, 0, i-len(closes)+1),
			Close: c,
		}
	}
	return series
}

// steadyRise returns n closes compounding at rate per day from 100.
func steadyRise(n int, rate float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100.0 * math.Pow(1.0+rate, float64(i))
	}
	return closes
}

func newsAt(t time.Time, sentiment float64) contracts.NewsItem {
	return contracts.NewsItem{PublishedAt: &t, Title: "headline", Sentiment: sentiment}.WithBucket()
}

func TestScoreInsufficientHistory(t *testing.T) {
	engine := NewEngine(Config{})
	_, err := engine.Score("TCS.NS", scoreDate, scoreNow, makeSeries(steadyRise(24, 0.01)...), nil)
	require.ErrorIs(t, err, contracts.ErrInsufficientHistory)
}

func TestScoreSteadyRiseNoNews(t *testing.T) {
	engine := NewEngine(Config{})
	series := makeSeries(steadyRise(25, 0.01)...)

	result, err := engine.Score("TCS.NS", scoreDate, scoreNow, series, nil)
	require.NoError(t, err)

	r1 := 0.01
	r5 := math.Pow(1.01, 5) - 1
	r20 := math.Pow(1.01, 20) - 1
	wantMomentum := r1*50 + r5*30 + r20*20

	assert.InDelta(t, wantMomentum, result.Momentum, 1e-9)
	assert.Equal(t, 0.0, result.NewsImpact) // exactly zero with no articles
	assert.Equal(t, 0.0, result.Risk)       // fewer than 31 closes
	assert.InDelta(t, 0.3*wantMomentum, result.FinalScore, 1e-9)
	assert.Equal(t, contracts.LabelWatch, result.Label)
	assert.Contains(t, result.Reason, "News: No major articles detected in last 48h")
	assert.Contains(t, result.Reason, "Returns: 1D=1.00%")
	assert.Contains(t, result.Reason, "Label: Watch.")
}

func TestScoreDeterministic(t *testing.T) {
	engine := NewEngine(Config{})
	series := makeSeries(steadyRise(40, 0.004)...)
	news := []contracts.NewsItem{
		newsAt(scoreNow.Add(-2*time.Hour), 0.4),
		newsAt(scoreNow.Add(-20*time.Hour), -0.1),
	}

	a, err := engine.Score("INFY.NS", scoreDate, scoreNow, series, news)
	require.NoError(t, err)
	b, err := engine.Score("INFY.NS", scoreDate, scoreNow, series, news)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestScoreNewsWindowFiltering(t *testing.T) {
	engine := NewEngine(Config{NewsWindowHours: 48})
	series := makeSeries(steadyRise(25, 0.002)...)

	baseline, err := engine.Score("TCS.NS", scoreDate, scoreNow, series, nil)
	require.NoError(t, err)

	// Stale and timestamp-less items must not move the score
	stale := []contracts.NewsItem{
		newsAt(scoreNow.Add(-49*time.Hour), 0.9),
		{Title: "undated headline", Sentiment: 0.9, Bucket: contracts.BucketPositive},
	}
	got, err := engine.Score("TCS.NS", scoreDate, scoreNow, series, stale)
	require.NoError(t, err)
	assert.Equal(t, baseline.NewsImpact, got.NewsImpact)
	assert.Equal(t, baseline.FinalScore, got.FinalScore)

	// An in-window item does
	fresh := append(stale, newsAt(scoreNow.Add(-time.Hour), 0.9))
	got, err = engine.Score("TCS.NS", scoreDate, scoreNow, series, fresh)
	require.NoError(t, err)
	assert.InDelta(t, 0.9*60+1*4, got.NewsImpact, 1e-9)
}

func TestScoreNewsImpactCapsCount(t *testing.T) {
	engine := NewEngine(Config{})
	series := makeSeries(steadyRise(25, 0.001)...)

	var news []contracts.NewsItem
	for i := 0; i < 14; i++ {
		news = append(news, newsAt(scoreNow.Add(-time.Duration(i+1)*time.Hour), 0.0))
	}

	result, err := engine.Score("TCS.NS", scoreDate, scoreNow, series, news)
	require.NoError(t, err)
	// Count term saturates at 10 articles
	assert.InDelta(t, 40.0, result.NewsImpact, 1e-9)
}

func TestScoreCatalystMomentumLabel(t *testing.T) {
	engine := NewEngine(Config{})
	series := makeSeries(steadyRise(25, 0.01)...)
	news := []contracts.NewsItem{
		newsAt(scoreNow.Add(-time.Hour), 0.5),
		newsAt(scoreNow.Add(-2*time.Hour), 0.5),
	}

	result, err := engine.Score("RELIANCE.NS", scoreDate, scoreNow, series, news)
	require.NoError(t, err)

	// avg 0.5 * 60 + 2 * 4 = 38
	assert.InDelta(t, 38.0, result.NewsImpact, 1e-9)
	assert.Equal(t, contracts.LabelCatalystMomentum, result.Label)
	assert.Contains(t, result.Reason, "News: Positive sentiment (0.50) across 2 articles (48h).")
}

func TestScoreTurnaround(t *testing.T) {
	engine := NewEngine(Config{})

	// Steady decline, green last day: r1 > 0, r5 < 0, r20 < 0
	closes := steadyRise(25, -0.01)
	closes[24] = closes[23] * 1.005
	series := makeSeries(closes...)

	news := []contracts.NewsItem{
		newsAt(scoreNow.Add(-time.Hour), 0.5),
		newsAt(scoreNow.Add(-2*time.Hour), 0.5),
	}

	result, err := engine.Score("TATAMOTORS.NS", scoreDate, scoreNow, series, news)
	require.NoError(t, err)

	assert.Equal(t, contracts.LabelTurnaroundWatch, result.Label)
	assert.Contains(t, result.Reason, "Setup: Downtrend + fresh positive catalyst with early bounce (needs confirmation).")

	// news_impact=38 -> capped base 12, +3 bounce
	withoutBonus := 0.5*result.NewsImpact + 0.3*result.Momentum - 0.2*result.Risk
	assert.InDelta(t, withoutBonus+15.0, result.FinalScore, 1e-9)
}

func TestScoreTurnaroundRequiresStrictDowntrend(t *testing.T) {
	engine := NewEngine(Config{})
	news := []contracts.NewsItem{
		newsAt(scoreNow.Add(-time.Hour), 0.5),
		newsAt(scoreNow.Add(-2*time.Hour), 0.5),
	}

	// Flat 5D (r5 == 0) is not a downtrend
	flat := make([]float64, 25)
	for i := range flat {
		flat[i] = 100.0
	}
	result, err := engine.Score("TCS.NS", scoreDate, scoreNow, makeSeries(flat...), news)
	require.NoError(t, err)
	assert.NotEqual(t, contracts.LabelTurnaroundWatch, result.Label)

	// The slightest negative 5D and 20D flips it
	declining := steadyRise(25, -0.0001)
	result, err = engine.Score("TCS.NS", scoreDate, scoreNow, makeSeries(declining...), news)
	require.NoError(t, err)
	assert.Equal(t, contracts.LabelTurnaroundWatch, result.Label)
}

func TestScoreHighRiskLabel(t *testing.T) {
	engine := NewEngine(Config{})

	// Choppy uptrend: +7%/-5% alternating gives ~6% daily stddev with
	// positive drift, ending on an up day.
	closes := make([]float64, 40)
	closes[0] = 100.0
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] * 1.07
		} else {
			closes[i] = closes[i-1] * 0.95
		}
	}

	// Two neutral articles: news impact exactly 8, below the catalyst
	// threshold, but enough to keep the final score positive.
	news := []contracts.NewsItem{
		newsAt(scoreNow.Add(-time.Hour), 0.0),
		newsAt(scoreNow.Add(-2*time.Hour), 0.0),
	}

	result, err := engine.Score("YESBANK.NS", scoreDate, scoreNow, makeSeries(closes...), news)
	require.NoError(t, err)

	assert.InDelta(t, 8.0, result.NewsImpact, 1e-9)
	assert.Greater(t, result.Risk, 4.0)
	assert.Greater(t, result.Momentum, 0.0)
	assert.Greater(t, result.FinalScore, 0.0)
	assert.Equal(t, contracts.LabelHighRiskWatch, result.Label)
}

func TestRiskProxy(t *testing.T) {
	// Constant closes: zero returns, zero risk
	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 250.0
	}
	assert.Equal(t, 0.0, riskProxy(flat))

	// Short series: no estimate
	assert.Equal(t, 0.0, riskProxy(steadyRise(30, 0.01)))

	// Constant growth rate: identical returns, stddev 0
	assert.InDelta(t, 0.0, riskProxy(steadyRise(40, 0.01)), 1e-9)

	// Alternating +-2%: sample stddev of the 30 returns is slightly
	// above 2 because the two return values are not symmetric
	alt := make([]float64, 40)
	alt[0] = 100.0
	for i := 1; i < len(alt); i++ {
		if i%2 == 0 {
			alt[i] = alt[i-1] * 1.02
		} else {
			alt[i] = alt[i-1] * 0.98
		}
	}
	risk := riskProxy(alt)
	assert.Greater(t, risk, 1.8)
	assert.Less(t, risk, 2.3)
}

func TestTrailingReturn(t *testing.T) {
	closes := []float64{100, 102, 101, 105}

	assert.InDelta(t, 105.0/101.0-1, trailingReturn(closes, 1), 1e-12)
	assert.InDelta(t, 105.0/100.0-1, trailingReturn(closes, 3), 1e-12)
	assert.Equal(t, 0.0, trailingReturn(closes, 4)) // not enough history
}
