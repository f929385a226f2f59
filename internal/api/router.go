package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/rpillai/nsewatch/internal/api/handlers"
	"github.com/rpillai/nsewatch/internal/contracts"
	"github.com/rpillai/nsewatch/pkg/logger"
)

// NewRouter configures the HTTP routes. All routing lives here.
func NewRouter(
	watchlistHandler *handlers.WatchlistHandler,
	companyHandler *handlers.CompanyHandler,
	refreshHandler *handlers.RefreshHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", homeHandler).Methods("GET")
	r.HandleFunc("/health", healthHandler).Methods("GET")

	r.HandleFunc("/watchlist/today", watchlistHandler.GetToday).Methods("GET")
	r.HandleFunc("/company/{ticker}", companyHandler.GetCompany).Methods("GET")
	r.HandleFunc("/news/{ticker}", companyHandler.GetNews).Methods("GET")
	r.HandleFunc("/refresh", refreshHandler.Trigger).Methods("POST")

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Stock watchlist API is running",
		"try":     []string{"/health", "/watchlist/today", "/company/TCS.NS?days=300"},
		"caution": contracts.Caution().Caution,
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"date":   time.Now().UTC().Format("2006-01-02"),
	})
}

// loggingMiddleware logs HTTP requests at debug level.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware converts panics into 500 responses.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"detail": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
