package handler

import (
	"absurdlyvisual/internal/cache"
	"absurdlyvisual/internal/service"
	"log"
	"net/http"
)

// SystemHandler serves health and runtime statistics
type SystemHandler struct {
	match    *service.MatchService
	genCache cache.GenerationCache
}

// NewSystemHandler creates a new system handler. genCache may be nil.
func NewSystemHandler(match *service.MatchService, genCache cache.GenerationCache) *SystemHandler {
	return &SystemHandler{match: match, genCache: genCache}
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Stats handles GET /v1/stats
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"games": h.match.Stats(),
	}
	if h.genCache != nil {
		stats, err := h.genCache.Stats(r.Context())
		if err != nil {
			log.Printf("failed to read cache stats: %v", err)
		} else {
			resp["cache"] = stats
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
