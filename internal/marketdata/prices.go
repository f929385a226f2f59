package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rpillai/nsewatch/internal/contracts"
)

// rangeBuckets are the lookback ranges the chart API supports, smallest
// first. We pick the smallest bucket that still covers the requested
// window and truncate locally: a slightly larger payload in exchange
// for fewer distinct cache keys.
var rangeBuckets = []struct {
	days int
	name string
}{
	{30, "1mo"},
	{91, "3mo"},
	{182, "6mo"},
	{365, "1y"},
	{730, "2y"},
	{1825, "5y"},
}

// rangeFor returns the smallest upstream range covering windowDays.
// Calendar days exceed trading days, so a bucket of N calendar days
// comfortably covers N trading points only when windowDays is well
// below it; the 2x margin mirrors the weekend buffer used on ingest.
func rangeFor(windowDays int) string {
	need := windowDays * 2 // weekend/holiday buffer
	for _, b := range rangeBuckets {
		if b.days >= need {
			return b.name
		}
	}
	return "max"
}

// chartResponse mirrors the chart API payload: parallel arrays of unix
// timestamps and per-bar quote values. Closes are pointers because the
// upstream reports null for missing bars.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch retrieves daily bars for ticker covering the last windowDays
// trading days, normalized into an ordered, deduplicated series.
// Bars with a missing close are skipped rather than failing the fetch.
func (c *Client) Fetch(ctx context.Context, ticker string, windowDays int) (contracts.PriceSeries, error) {
	fullURL := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.baseURL, url.PathEscape(ticker), rangeFor(windowDays),
	)

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d for %s", contracts.ErrRateLimited, resp.StatusCode, ticker)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", contracts.ErrInvalidTicker, ticker)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", contracts.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode failed: %v", contracts.ErrUpstreamUnavailable, err)
	}

	if e := payload.Chart.Error; e != nil {
		if strings.Contains(strings.ToLower(e.Description), "no data found") {
			return nil, fmt.Errorf("%w: %s (%s)", contracts.ErrInvalidTicker, ticker, e.Code)
		}
		return nil, fmt.Errorf("%w: %s: %s", contracts.ErrUpstreamUnavailable, e.Code, e.Description)
	}

	series := parseChart(payload)
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s", contracts.ErrEmptySeries, ticker)
	}

	series = series.Normalize().Tail(windowDays)

	if len(series) < c.minPoints {
		return nil, fmt.Errorf("%w: %s has %d usable points, need %d",
			contracts.ErrInsufficientHistory, ticker, len(series), c.minPoints)
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"count":  len(series),
	}).Debug("Fetched price series")

	return series, nil
}

// parseChart converts the parallel arrays into price points, skipping
// bars with a null close and normalizing timestamps to UTC dates.
func parseChart(payload chartResponse) contracts.PriceSeries {
	results := payload.Chart.Result
	if len(results) == 0 || len(results[0].Indicators.Quote) == 0 {
		return nil
	}

	timestamps := results[0].Timestamp
	quote := results[0].Indicators.Quote[0]

	series := make(contracts.PriceSeries, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(quote.Close) || quote.Close[i] == nil || *quote.Close[i] <= 0 {
			continue
		}

		var volume int64
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}

		day := time.Unix(ts, 0).UTC()
		series = append(series, contracts.PricePoint{
			Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Close:  *quote.Close[i],
			Volume: volume,
		})
	}
	return series
}
