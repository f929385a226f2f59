package handlers

import (
	"net/http"
	"time"

	"github.com/rpillai/nsewatch/internal/cache"
	"github.com/rpillai/nsewatch/internal/contracts"
	"github.com/rpillai/nsewatch/internal/store"
	"github.com/rpillai/nsewatch/pkg/logger"
)

// WatchlistHandler serves the ranked daily watchlist from the store.
type WatchlistHandler struct {
	store  store.Store
	clock  cache.Clock
	logger *logger.Logger
}

// NewWatchlistHandler creates the handler. A nil clock uses time.Now.
func NewWatchlistHandler(st store.Store, clock cache.Clock, log *logger.Logger) *WatchlistHandler {
	if clock == nil {
		clock = time.Now
	}
	return &WatchlistHandler{store: st, clock: clock, logger: log}
}

// watchlistResponse is the /watchlist/today payload.
type watchlistResponse struct {
	Date string `json:"date"`
	contracts.CautionBlock
	Notes []string        `json:"notes"`
	Items []watchlistItem `json:"items"`
}

type watchlistItem struct {
	Ticker     string        `json:"ticker"`
	FinalScore float64       `json:"final_score"`
	NewsImpact float64       `json:"news_impact"`
	Momentum   float64       `json:"momentum"`
	Risk       float64       `json:"risk"`
	Label      string        `json:"label"`
	Reason     string        `json:"reason"`
	News       watchlistNews `json:"news"`
}

type watchlistNews struct {
	WindowHours int                     `json:"window_hours"`
	Limit       int                     `json:"limit"`
	Buckets     *contracts.BucketedNews `json:"buckets"`
}

// GetToday handles GET /watchlist/today. Query parameters: limit
// (ranked rows), news_limit (headlines per ticker), news_hours_back
// (headline window for the attached buckets).
func (h *WatchlistHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20, 1, 100)
	newsLimit := queryInt(r, "news_limit", 5, 0, 20)
	newsHoursBack := queryInt(r, "news_hours_back", 72, 1, 24*14)

	now := h.clock().UTC()
	today := store.DateKey(now)

	scores, err := h.store.GetScoresByDate(r.Context(), today, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load scores")
		respondError(w, http.StatusInternalServerError, "Failed to load scores.")
		return
	}
	if len(scores) == 0 {
		respondError(w, http.StatusNotFound,
			"No scores for today. Run: nsewatch ingest (or wait for the scheduled refresh).")
		return
	}

	since := now.Add(-time.Duration(newsHoursBack) * time.Hour)

	items := make([]watchlistItem, 0, len(scores))
	for _, score := range scores {
		recent, err := h.store.GetRecentNews(r.Context(), score.Ticker, since, store.RecentNewsProbe)
		if err != nil {
			h.logger.WithError(err).WithField("ticker", score.Ticker).Warn("Failed to load news buckets")
			recent = nil
		}

		items = append(items, watchlistItem{
			Ticker:     score.Ticker,
			FinalScore: score.FinalScore,
			NewsImpact: score.NewsImpact,
			Momentum:   score.Momentum,
			Risk:       score.Risk,
			Label:      score.Label,
			Reason:     score.Reason,
			News: watchlistNews{
				WindowHours: newsHoursBack,
				Limit:       newsLimit,
				Buckets:     store.TopNewsByBucket(recent, newsLimit),
			},
		})
	}

	respondJSON(w, http.StatusOK, watchlistResponse{
		Date:         today.Format("2006-01-02"),
		CautionBlock: contracts.Caution(),
		Notes: []string{
			"'Positive/Neutral/Negative' buckets are based on automated title sentiment and can be wrong.",
			"Always open the source links and verify important claims.",
		},
		Items: items,
	})
}
