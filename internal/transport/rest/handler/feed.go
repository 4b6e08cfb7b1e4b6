package handler

import (
	"absurdlyvisual/internal/service"
	"net/http"

	"github.com/gorilla/mux"
)

// FeedHandler handles the public video feed
type FeedHandler struct {
	feed *service.FeedService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feed *service.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

// LikeRequest identifies the viewer toggling a like
type LikeRequest struct {
	UserID string `json:"userId"`
}

// CommentRequest is the request body for a comment
type CommentRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Text     string `json:"text"`
}

// List handles GET /v1/feed?limit=&offset=
func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.feed.List(r.Context(), queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// Trending handles GET /v1/feed/trending?limit=
func (h *FeedHandler) Trending(w http.ResponseWriter, r *http.Request) {
	entries, err := h.feed.Trending(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// Get handles GET /v1/feed/{id}
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.feed.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Like handles POST /v1/feed/{id}/like
func (h *FeedHandler) Like(w http.ResponseWriter, r *http.Request) {
	var req LikeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.feed.ToggleLike(r.Context(), mux.Vars(r)["id"], req.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AddComment handles POST /v1/feed/{id}/comments
func (h *FeedHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	comment, err := h.feed.AddComment(r.Context(), mux.Vars(r)["id"], req.UserID, req.UserName, req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// Comments handles GET /v1/feed/{id}/comments
func (h *FeedHandler) Comments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.feed.Comments(r.Context(), mux.Vars(r)["id"], queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}
