package watchlist

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpillai/nsewatch/internal/cache"
	"github.com/rpillai/nsewatch/internal/contracts"
	"github.com/rpillai/nsewatch/internal/scoring"
	"github.com/rpillai/nsewatch/internal/universe"
	"github.com/rpillai/nsewatch/pkg/logger"
)

var testNow = time.Date(2025, 8, 22, 12, 0, 0, 0, time.UTC)

// stubPrices serves canned series per ticker and counts fetches.
type stubPrices struct {
	series map[string]contracts.PriceSeries
	errs   map[string]error
	calls  int64
}

func (s *stubPrices) Fetch(_ context.Context, ticker string, _ int) (contracts.PriceSeries, error) {
	atomic.AddInt64(&s.calls, 1)
	if err, ok := s.errs[ticker]; ok {
		return nil, err
	}
	return s.series[ticker], nil
}

type stubNews struct {
	items map[string][]contracts.NewsItem
}

func (s *stubNews) Fetch(_ context.Context, ticker string, _, _ int) ([]contracts.NewsItem, error) {
	return s.items[ticker], nil
}

func risingSeries(rate float64) contracts.PriceSeries {
	series := make(contracts.PriceSeries, 30)
	for i := range series {
		series[i] = contracts.PricePoint{
			Date:  testNow.AddDate(0, 0, i-29),
			Close: 100.0 * math.Pow(1.0+rate, float64(i)),
		}
	}
	return series
}

func newTestBuilder(prices *stubPrices, news *stubNews, tickers []string) *Builder {
	return NewBuilder(
		universe.New(tickers),
		prices,
		news,
		scoring.NewEngine(scoring.Config{}),
		cache.New(func() time.Time { return testNow }),
		func() time.Time { return testNow },
		Config{LookbackDays: 120, NewsWindowHours: 48, NewsLimit: 20, PriceTTL: time.Hour, NewsTTL: time.Hour},
		logger.NewNop(),
	)
}

func TestBuildRanksAndCountsFailures(t *testing.T) {
	tickers := []string{"A.NS", "B.NS", "C.NS", "D.NS", "E.NS"}

	prices := &stubPrices{
		series: map[string]contracts.PriceSeries{
			"A.NS": risingSeries(0.002),
			"C.NS": risingSeries(0.01),
			"E.NS": risingSeries(0.005),
		},
		errs: map[string]error{
			"B.NS": contracts.ErrInvalidTicker,
			"D.NS": contracts.ErrUpstreamUnavailable,
		},
	}
	news := &stubNews{}

	report, err := newTestBuilder(prices, news, tickers).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, report.Attempted)
	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Failures, 2)
	assert.Equal(t, "B.NS", report.Failures[0].Ticker)

	// Ranked by final score descending: steepest rise first
	require.Len(t, report.Results, 3)
	assert.Equal(t, "C.NS", report.Results[0].Ticker)
	assert.Equal(t, "E.NS", report.Results[1].Ticker)
	assert.Equal(t, "A.NS", report.Results[2].Ticker)

	assert.Equal(t, time.Date(2025, 8, 22, 0, 0, 0, 0, time.UTC), report.Date)
}

func TestBuildLimitTruncatesResults(t *testing.T) {
	prices := &stubPrices{series: map[string]contracts.PriceSeries{
		"A.NS": risingSeries(0.002),
		"B.NS": risingSeries(0.01),
		"C.NS": risingSeries(0.005),
	}}

	builder := NewBuilder(
		universe.New([]string{"A.NS", "B.NS", "C.NS"}),
		prices,
		&stubNews{},
		scoring.NewEngine(scoring.Config{}),
		cache.New(func() time.Time { return testNow }),
		func() time.Time { return testNow },
		Config{Limit: 2, PriceTTL: time.Hour, NewsTTL: time.Hour},
		logger.NewNop(),
	)

	report, err := builder.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Succeeded)
	require.Len(t, report.Results, 2)
	assert.Equal(t, "B.NS", report.Results[0].Ticker)
	assert.Equal(t, "C.NS", report.Results[1].Ticker)
}

func TestBuildEmptyUniverse(t *testing.T) {
	builder := newTestBuilder(&stubPrices{}, &stubNews{}, nil)
	_, err := builder.Build(context.Background())
	require.ErrorIs(t, err, ErrNoUniverse)
}

func TestBuildAllTickersFailing(t *testing.T) {
	prices := &stubPrices{errs: map[string]error{
		"A.NS": contracts.ErrUpstreamUnavailable,
		"B.NS": contracts.ErrUpstreamUnavailable,
	}}

	_, err := newTestBuilder(prices, &stubNews{}, []string{"A.NS", "B.NS"}).Build(context.Background())
	require.ErrorIs(t, err, ErrNoData)
}

func TestBuildFailureListIsBounded(t *testing.T) {
	var tickers []string
	errs := make(map[string]error)
	for i := 0; i < 15; i++ {
		ticker := fmt.Sprintf("T%02d.NS", i)
		tickers = append(tickers, ticker)
		if i > 0 {
			errs[ticker] = errors.New("boom")
		}
	}

	prices := &stubPrices{
		series: map[string]contracts.PriceSeries{"T00.NS": risingSeries(0.001)},
		errs:   errs,
	}

	report, err := newTestBuilder(prices, &stubNews{}, tickers).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 14, report.Failed)
	assert.Len(t, report.Failures, 10)
}

func TestBuildUsesCacheAcrossPasses(t *testing.T) {
	prices := &stubPrices{series: map[string]contracts.PriceSeries{
		"A.NS": risingSeries(0.002),
	}}
	builder := newTestBuilder(prices, &stubNews{}, []string{"A.NS"})

	_, err := builder.Build(context.Background())
	require.NoError(t, err)
	_, err = builder.Build(context.Background())
	require.NoError(t, err)

	// Second pass inside the TTL hits the cache
	assert.Equal(t, int64(1), atomic.LoadInt64(&prices.calls))
}

func TestBuildNewsMovesScore(t *testing.T) {
	prices := &stubPrices{series: map[string]contracts.PriceSeries{
		"A.NS": risingSeries(0.002),
	}}
	published := testNow.Add(-2 * time.Hour)
	news := &stubNews{items: map[string][]contracts.NewsItem{
		"A.NS": {
			{PublishedAt: &published, Title: "Record order win", Sentiment: 0.6, Bucket: contracts.BucketPositive},
		},
	}}

	withNews, err := newTestBuilder(prices, news, []string{"A.NS"}).Build(context.Background())
	require.NoError(t, err)

	prices2 := &stubPrices{series: prices.series}
	without, err := newTestBuilder(prices2, &stubNews{}, []string{"A.NS"}).Build(context.Background())
	require.NoError(t, err)

	assert.Greater(t, withNews.Results[0].FinalScore, without.Results[0].FinalScore)
	assert.InDelta(t, 0.6*60+4, withNews.Results[0].NewsImpact, 1e-9)
}
