package handler

import (
	"absurdlyvisual/internal/repository"
	"absurdlyvisual/internal/service"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
)

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRejected):
		writeError(w, http.StatusConflict, service.RejectionReason(err))
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, repository.ErrEntryNotFound), errors.Is(err, repository.ErrBlobNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidSettings), errors.Is(err, service.ErrCatalogTooSmall):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAlreadyInGame):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrStaleRound):
		writeError(w, http.StatusConflict, "round no longer current")
	default:
		log.Printf("request failed error=%v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
