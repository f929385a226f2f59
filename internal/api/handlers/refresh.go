package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rpillai/nsewatch/internal/cache"
	"github.com/rpillai/nsewatch/internal/ingest"
	"github.com/rpillai/nsewatch/pkg/logger"
)

// refreshTimeout bounds a triggered pipeline run.
const refreshTimeout = 15 * time.Minute

// RefreshHandler triggers the ingestion pipeline on demand, guarded
// by a shared token. At most one triggered run is in flight.
type RefreshHandler struct {
	collector *ingest.Collector
	cache     *cache.Cache
	token     string
	running   int32
	logger    *logger.Logger
}

// NewRefreshHandler creates the handler. An empty token disables the
// endpoint entirely; a nil cache skips invalidation.
func NewRefreshHandler(collector *ingest.Collector, c *cache.Cache, token string, log *logger.Logger) *RefreshHandler {
	return &RefreshHandler{collector: collector, cache: c, token: token, logger: log}
}

// Trigger handles POST /refresh. The caller must present the exact
// refresh token in X-Refresh-Token. The pipeline runs in the
// background; the response is an immediate 202.
func (h *RefreshHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if h.token == "" {
		respondError(w, http.StatusNotFound, "Refresh endpoint is not enabled.")
		return
	}

	presented := r.Header.Get("X-Refresh-Token")
	if subtle.ConstantTimeCompare([]byte(presented), []byte(h.token)) != 1 {
		respondError(w, http.StatusUnauthorized, "Invalid refresh token.")
		return
	}

	if !atomic.CompareAndSwapInt32(&h.running, 0, 1) {
		respondError(w, http.StatusConflict, "A refresh is already running.")
		return
	}

	go func() {
		defer atomic.StoreInt32(&h.running, 0)

		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if err := h.collector.RunAll(ctx); err != nil {
			h.logger.WithError(err).Error("Triggered refresh failed")
			return
		}
		if h.cache != nil {
			h.cache.InvalidateAll()
		}
		h.logger.Info("Triggered refresh completed")
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{"status": "refresh started"})
}
