package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/rpillai/nsewatch/internal/contracts"
	"github.com/rpillai/nsewatch/internal/store"
	"github.com/rpillai/nsewatch/pkg/logger"
)

// CompanyHandler serves per-ticker price history and headlines.
type CompanyHandler struct {
	store  store.Store
	logger *logger.Logger
}

// NewCompanyHandler creates the handler.
func NewCompanyHandler(st store.Store, log *logger.Logger) *CompanyHandler {
	return &CompanyHandler{store: st, logger: log}
}

type companyResponse struct {
	Ticker string       `json:"ticker"`
	Meta   companyMeta  `json:"meta"`
	Prices []pricePoint `json:"prices"`
	contracts.CautionBlock
}

type companyMeta struct {
	RequestedDays int    `json:"requested_days"`
	ReturnedDays  int    `json:"returned_days"`
	AsOfDate      string `json:"asof_date"`
}

type pricePoint struct {
	Date   string  `json:"date"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// GetCompany handles GET /company/{ticker}?days=60. days is clamped
// to [5, 600]; fewer points than requested come back when the store
// holds less history.
func (h *CompanyHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	days := queryInt(r, "days", 60, 5, 600)

	series, err := h.store.GetPrices(r.Context(), ticker, days)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to load prices")
		respondError(w, http.StatusInternalServerError, "Failed to load prices.")
		return
	}
	if len(series) == 0 {
		respondError(w, http.StatusNotFound, "Ticker not found or no price data ingested.")
		return
	}

	prices := make([]pricePoint, 0, len(series))
	for _, p := range series {
		prices = append(prices, pricePoint{
			Date:   p.Date.Format("2006-01-02"),
			Close:  p.Close,
			Volume: p.Volume,
		})
	}

	respondJSON(w, http.StatusOK, companyResponse{
		Ticker: ticker,
		Meta: companyMeta{
			RequestedDays: days,
			ReturnedDays:  len(prices),
			AsOfDate:      prices[len(prices)-1].Date,
		},
		Prices:       prices,
		CautionBlock: contracts.Caution(),
	})
}

type newsResponse struct {
	Ticker string `json:"ticker"`
	contracts.CautionBlock
	Items []contracts.NewsItem `json:"items"`
}

// GetNews handles GET /news/{ticker}?limit=20: the latest stored
// headlines, newest first with undated items last.
func (h *CompanyHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	limit := queryInt(r, "limit", 20, 1, 100)

	items, err := h.store.GetNews(r.Context(), ticker, limit)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to load news")
		respondError(w, http.StatusInternalServerError, "Failed to load news.")
		return
	}
	if items == nil {
		items = []contracts.NewsItem{}
	}

	respondJSON(w, http.StatusOK, newsResponse{
		Ticker:       ticker,
		CautionBlock: contracts.Caution(),
		Items:        items,
	})
}
