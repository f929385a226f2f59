package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rpillai/nsewatch/internal/contracts"
)

// MemoryStore is the embedded backend: everything in maps under one
// mutex. Data does not survive a restart, which is fine for local
// runs where a refresh rebuilds it in under a minute.
type MemoryStore struct {
	mu sync.RWMutex

	prices map[string]contracts.PriceSeries

	news    map[string][]newsRow
	newsSeq int64

	// scores[dateKey][ticker]
	scores map[time.Time]map[string]contracts.ScoreResult
}

// newsRow tags an item with its insertion sequence so undated
// headlines still have a stable recency order.
type newsRow struct {
	item contracts.NewsItem
	seq  int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prices: make(map[string]contracts.PriceSeries),
		news:   make(map[string][]newsRow),
		scores: make(map[time.Time]map[string]contracts.ScoreResult),
	}
}

func (s *MemoryStore) PutPrices(_ context.Context, ticker string, series contracts.PriceSeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := append(append(contracts.PriceSeries{}, s.prices[ticker]...), series...)
	s.prices[ticker] = merged.Normalize()
	return nil
}

func (s *MemoryStore) GetPrices(_ context.Context, ticker string, lastN int) (contracts.PriceSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.prices[ticker]
	if len(series) == 0 {
		return nil, nil
	}
	return append(contracts.PriceSeries{}, series.Tail(lastN)...), nil
}

func (s *MemoryStore) PutNews(_ context.Context, ticker string, items []contracts.NewsItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[string]bool, len(s.news[ticker]))
	for _, row := range s.news[ticker] {
		existing[row.item.URL+"\x00"+row.item.Title] = true
	}

	for _, item := range items {
		key := item.URL + "\x00" + item.Title
		if existing[key] {
			continue
		}
		existing[key] = true
		s.newsSeq++
		s.news[ticker] = append(s.news[ticker], newsRow{item: item, seq: s.newsSeq})
	}
	return nil
}

func (s *MemoryStore) GetNews(_ context.Context, ticker string, limit int) ([]contracts.NewsItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := append([]newsRow{}, s.news[ticker]...)

	// Published desc with undated rows last, insertion order breaking ties
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].item.PublishedAt, rows[j].item.PublishedAt
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		default:
			return rows[i].seq > rows[j].seq
		}
	})

	out := make([]contracts.NewsItem, 0, limit)
	for _, row := range rows {
		if len(out) >= limit {
			break
		}
		out = append(out, row.item)
	}
	return out, nil
}

func (s *MemoryStore) GetRecentNews(_ context.Context, ticker string, since time.Time, limit int) ([]contracts.NewsItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []newsRow
	for _, row := range s.news[ticker] {
		if row.item.PublishedAt == nil || row.item.PublishedAt.Before(since) {
			continue
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].item.PublishedAt.After(*rows[j].item.PublishedAt)
	})

	out := make([]contracts.NewsItem, 0, limit)
	for _, row := range rows {
		if len(out) >= limit {
			break
		}
		out = append(out, row.item)
	}
	return out, nil
}

func (s *MemoryStore) PutScore(_ context.Context, result contracts.ScoreResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := DateKey(result.Date)
	if s.scores[key] == nil {
		s.scores[key] = make(map[string]contracts.ScoreResult)
	}
	s.scores[key][result.Ticker] = result
	return nil
}

func (s *MemoryStore) GetScoresByDate(_ context.Context, date time.Time, limit int) ([]contracts.ScoreResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byTicker := s.scores[DateKey(date)]
	out := make([]contracts.ScoreResult, 0, len(byTicker))
	for _, result := range byTicker {
		out = append(out, result)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FinalScore != out[j].FinalScore {
			return out[i].FinalScore > out[j].FinalScore
		}
		return out[i].Ticker < out[j].Ticker
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Close() {}
