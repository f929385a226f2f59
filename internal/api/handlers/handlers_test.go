package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpillai/nsewatch/internal/contracts"
	"github.com/rpillai/nsewatch/internal/ingest"
	"github.com/rpillai/nsewatch/internal/scoring"
	"github.com/rpillai/nsewatch/internal/store"
	"github.com/rpillai/nsewatch/internal/universe"
	"github.com/rpillai/nsewatch/pkg/logger"
)

var handlerNow = time.Date(2025, 8, 22, 12, 0, 0, 0, time.UTC)

func handlerClock() time.Time { return handlerNow }

func seedStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()

	series := make(contracts.PriceSeries, 30)
	for i := range series {
		series[i] = contracts.PricePoint{
			Date:   store.DateKey(handlerNow).AddDate(0, 0, i-29),
			Close:  100.0 + float64(i),
			Volume: 1000,
		}
	}
	require.NoError(t, st.PutPrices(ctx, "TCS.NS", series))

	published := handlerNow.Add(-3 * time.Hour)
	require.NoError(t, st.PutNews(ctx, "TCS.NS", []contracts.NewsItem{
		{PublishedAt: &published, Source: "Mint", Title: "Record deal win", URL: "https://n/1", Sentiment: 0.6, Bucket: contracts.BucketPositive},
		{PublishedAt: &published, Source: "ET", Title: "Margin warning", URL: "https://n/2", Sentiment: -0.4, Bucket: contracts.BucketNegative},
	}))

	require.NoError(t, st.PutScore(ctx, contracts.ScoreResult{
		Ticker:     "TCS.NS",
		Date:       store.DateKey(handlerNow),
		Momentum:   5.1,
		Risk:       1.2,
		NewsImpact: 40.0,
		FinalScore: 21.3,
		Label:      contracts.LabelCatalystMomentum,
		Reason:     "News: Positive sentiment (0.60) across 2 articles (48h).",
	}))
	require.NoError(t, st.PutScore(ctx, contracts.ScoreResult{
		Ticker:     "INFY.NS",
		Date:       store.DateKey(handlerNow),
		FinalScore: 3.0,
		Label:      contracts.LabelWatch,
		Reason:     "News: No major articles detected in last 48h (or news ingestion not enabled).",
	}))

	return st
}

func TestWatchlistToday(t *testing.T) {
	h := NewWatchlistHandler(seedStore(t), handlerClock, logger.NewNop())

	req := httptest.NewRequest("GET", "/watchlist/today?news_limit=5", nil)
	rec := httptest.NewRecorder()
	h.GetToday(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Date    string   `json:"date"`
		Caution []string `json:"caution"`
		Notes   []string `json:"notes"`
		Items   []struct {
			Ticker     string  `json:"ticker"`
			FinalScore float64 `json:"final_score"`
			Label      string  `json:"label"`
			Reason     string  `json:"reason"`
			News       struct {
				WindowHours int `json:"window_hours"`
				Limit       int `json:"limit"`
				Buckets     struct {
					Positive []contracts.NewsItem `json:"positive"`
					Neutral  []contracts.NewsItem `json:"neutral"`
					Negative []contracts.NewsItem `json:"negative"`
				} `json:"buckets"`
			} `json:"news"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "2025-08-22", body.Date)
	assert.Len(t, body.Caution, 5)
	assert.Len(t, body.Notes, 2)
	require.Len(t, body.Items, 2)

	// Ranked by final score descending
	assert.Equal(t, "TCS.NS", body.Items[0].Ticker)
	assert.Equal(t, 21.3, body.Items[0].FinalScore)
	assert.Equal(t, contracts.LabelCatalystMomentum, body.Items[0].Label)
	assert.NotEmpty(t, body.Items[0].Reason)

	assert.Equal(t, 72, body.Items[0].News.WindowHours)
	require.Len(t, body.Items[0].News.Buckets.Positive, 1)
	assert.Equal(t, "Record deal win", body.Items[0].News.Buckets.Positive[0].Title)
	require.Len(t, body.Items[0].News.Buckets.Negative, 1)

	// Ticker with no stored news gets empty, non-null buckets
	assert.NotNil(t, body.Items[1].News.Buckets.Positive)
	assert.Empty(t, body.Items[1].News.Buckets.Positive)
}

func TestWatchlistTodayEmpty(t *testing.T) {
	h := NewWatchlistHandler(store.NewMemoryStore(), handlerClock, logger.NewNop())

	req := httptest.NewRequest("GET", "/watchlist/today", nil)
	rec := httptest.NewRecorder()
	h.GetToday(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "No scores for today")
}

func TestCompanyDetail(t *testing.T) {
	h := NewCompanyHandler(seedStore(t), logger.NewNop())

	req := mux.SetURLVars(httptest.NewRequest("GET", "/company/tcs.ns?days=10", nil),
		map[string]string{"ticker": "tcs.ns"})
	rec := httptest.NewRecorder()
	h.GetCompany(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Ticker string `json:"ticker"`
		Meta   struct {
			RequestedDays int    `json:"requested_days"`
			ReturnedDays  int    `json:"returned_days"`
			AsOfDate      string `json:"asof_date"`
		} `json:"meta"`
		Prices []struct {
			Date  string  `json:"date"`
			Close float64 `json:"close"`
		} `json:"prices"`
		Caution []string `json:"caution"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "TCS.NS", body.Ticker) // upper-cased
	assert.Equal(t, 10, body.Meta.RequestedDays)
	assert.Equal(t, 10, body.Meta.ReturnedDays)
	assert.Equal(t, "2025-08-22", body.Meta.AsOfDate)
	require.Len(t, body.Prices, 10)
	// Oldest to newest
	assert.Less(t, body.Prices[0].Close, body.Prices[9].Close)
	assert.Len(t, body.Caution, 5)
}

func TestCompanyDetailClampsAndMisses(t *testing.T) {
	h := NewCompanyHandler(seedStore(t), logger.NewNop())

	// days below the floor is clamped to 5
	req := mux.SetURLVars(httptest.NewRequest("GET", "/company/TCS.NS?days=1", nil),
		map[string]string{"ticker": "TCS.NS"})
	rec := httptest.NewRecorder()
	h.GetCompany(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"requested_days":5`)

	// Unknown ticker
	req = mux.SetURLVars(httptest.NewRequest("GET", "/company/NOPE.NS", nil),
		map[string]string{"ticker": "NOPE.NS"})
	rec = httptest.NewRecorder()
	h.GetCompany(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompanyNews(t *testing.T) {
	h := NewCompanyHandler(seedStore(t), logger.NewNop())

	req := mux.SetURLVars(httptest.NewRequest("GET", "/news/TCS.NS", nil),
		map[string]string{"ticker": "TCS.NS"})
	rec := httptest.NewRecorder()
	h.GetNews(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Ticker string               `json:"ticker"`
		Items  []contracts.NewsItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	assert.Equal(t, contracts.BucketPositive, body.Items[0].Bucket)

	// Unknown ticker returns an empty list, not a 404
	req = mux.SetURLVars(httptest.NewRequest("GET", "/news/NOPE.NS", nil),
		map[string]string{"ticker": "NOPE.NS"})
	rec = httptest.NewRecorder()
	h.GetNews(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

type noopPrices struct{}

func (noopPrices) Fetch(_ context.Context, _ string, _ int) (contracts.PriceSeries, error) {
	return nil, contracts.ErrUpstreamUnavailable
}

type noopNews struct{}

func (noopNews) Fetch(_ context.Context, _ string, _, _ int) ([]contracts.NewsItem, error) {
	return nil, nil
}

func newRefreshCollector() *ingest.Collector {
	return ingest.NewCollector(
		noopPrices{},
		noopNews{},
		scoring.NewEngine(scoring.Config{}),
		store.NewMemoryStore(),
		universe.New([]string{"TCS.NS"}),
		nil,
		ingest.Config{SleepBetween: time.Millisecond},
		logger.NewNop(),
	)
}

func TestRefreshTokenChecks(t *testing.T) {
	h := NewRefreshHandler(newRefreshCollector(), nil, "secret", logger.NewNop())

	// Missing token
	rec := httptest.NewRecorder()
	h.Trigger(rec, httptest.NewRequest("POST", "/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong token
	req := httptest.NewRequest("POST", "/refresh", nil)
	req.Header.Set("X-Refresh-Token", "Secret")
	rec = httptest.NewRecorder()
	h.Trigger(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Exact match
	req = httptest.NewRequest("POST", "/refresh", nil)
	req.Header.Set("X-Refresh-Token", "secret")
	rec = httptest.NewRecorder()
	h.Trigger(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRefreshDisabledWithoutToken(t *testing.T) {
	h := NewRefreshHandler(newRefreshCollector(), nil, "", logger.NewNop())

	req := httptest.NewRequest("POST", "/refresh", nil)
	req.Header.Set("X-Refresh-Token", "")
	rec := httptest.NewRecorder()
	h.Trigger(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
