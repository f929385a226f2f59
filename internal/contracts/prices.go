package contracts

import (
	"sort"
	"time"
)

// PricePoint is one end-of-day bar for a ticker.
// Date is a UTC calendar date (trading day); Close is always > 0 for a
// usable point; Volume may be 0 when the upstream did not report it.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries is an ordered sequence of PricePoints for one ticker,
// oldest to newest, with strictly increasing dates. Weekends and
// holidays are simply absent; no gap filling is performed.
type PriceSeries []PricePoint

// Normalize sorts the series ascending by date and drops duplicate
// dates, keeping the last occurrence (last-write-wins on ingest
// conflicts).
func (s PriceSeries) Normalize() PriceSeries {
	if len(s) == 0 {
		return s
	}

	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})

	out := make(PriceSeries, 0, len(s))
	for _, p := range s {
		if n := len(out); n > 0 && out[n-1].Date.Equal(p.Date) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

// Tail returns the last n points (the whole series when shorter).
func (s PriceSeries) Tail(n int) PriceSeries {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Closes returns the close prices oldest to newest.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, p := range s {
		closes[i] = p.Close
	}
	return closes
}

// Last returns the most recent point. Callers must check the series is
// non-empty first.
func (s PriceSeries) Last() PricePoint {
	return s[len(s)-1]
}
