package handler

import (
	"absurdlyvisual/internal/repository"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// MediaHandler streams generated media out of the blob store
type MediaHandler struct {
	blobs *repository.BlobStore
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(blobs *repository.BlobStore) *MediaHandler {
	return &MediaHandler{blobs: blobs}
}

// Get handles GET /v1/media/{id}
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	blob, err := h.blobs.Open(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(blob.Length, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, blob); err != nil {
		log.Printf("media stream interrupted id=%s error=%v", mux.Vars(r)["id"], err)
	}
}
