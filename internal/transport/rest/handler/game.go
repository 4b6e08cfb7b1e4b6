package handler

import (
	"absurdlyvisual/internal/model"
	"absurdlyvisual/internal/service"
	"absurdlyvisual/internal/transport/rest/middleware"
	"net/http"

	"github.com/gorilla/mux"
)

// GameHandler handles game endpoints
type GameHandler struct {
	match *service.MatchService
}

// NewGameHandler creates a new game handler
func NewGameHandler(match *service.MatchService) *GameHandler {
	return &GameHandler{match: match}
}

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	Name     string             `json:"name"`
	Settings model.GameSettings `json:"settings"`
}

// JoinRequest is the request body for joining a game
type JoinRequest struct {
	Name string `json:"name"`
}

// SubmitRequest is the request body for playing cards
type SubmitRequest struct {
	CardIDs []string `json:"cardIds"`
}

// WinnerRequest is the request body for the czar's pick
type WinnerRequest struct {
	Index *int `json:"index"`
}

// BotRequest is the request body for adding an automated player
type BotRequest struct {
	Personality string `json:"personality,omitempty"`
}

// ChatRequest is the request body for a chat message
type ChatRequest struct {
	Text string `json:"text"`
}

// Create handles POST /v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.match.CreateGame(r.Context(), req.Settings, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"games": h.match.ListGames(r.Context()),
	})
}

// Get handles GET /v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	meta, err := h.match.Meta(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// Join handles POST /v1/games/{id}/join
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.match.Join(r.Context(), mux.Vars(r)["id"], req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// State handles GET /v1/games/{id}/state
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, r, http.StatusOK)
}

func (h *GameHandler) writeState(w http.ResponseWriter, r *http.Request, status int) {
	view, err := h.match.View(r.Context(), mux.Vars(r)["id"], middleware.GetPlayerID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, status, view)
}

// Start handles POST /v1/games/{id}/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.match.Start(ctx, mux.Vars(r)["id"], middleware.GetPlayerID(ctx)); err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

// Submit handles POST /v1/games/{id}/submissions
func (h *GameHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	if err := h.match.Submit(ctx, mux.Vars(r)["id"], "", middleware.GetPlayerID(ctx), req.CardIDs); err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

// Winner handles POST /v1/games/{id}/winner
func (h *GameHandler) Winner(w http.ResponseWriter, r *http.Request) {
	var req WinnerRequest
	if err := decodeBody(r, &req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "index is required")
		return
	}

	ctx := r.Context()
	if err := h.match.SelectWinner(ctx, mux.Vars(r)["id"], "", middleware.GetPlayerID(ctx), *req.Index); err != nil {
		writeServiceError(w, err)
		return
	}
	h.writeState(w, r, http.StatusOK)
}

// AddBot handles POST /v1/games/{id}/bots
func (h *GameHandler) AddBot(w http.ResponseWriter, r *http.Request) {
	var req BotRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	bot, err := h.match.AddBot(ctx, mux.Vars(r)["id"], middleware.GetPlayerID(ctx), req.Personality)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bot)
}

// Leave handles POST /v1/games/{id}/leave
func (h *GameHandler) Leave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.match.Leave(ctx, mux.Vars(r)["id"], middleware.GetPlayerID(ctx)); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Chat handles POST /v1/games/{id}/chat
func (h *GameHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	if err := h.match.Chat(ctx, mux.Vars(r)["id"], middleware.GetPlayerID(ctx), req.Text); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Leaderboard handles GET /v1/games/{id}/leaderboard
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.match.Leaderboard(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"leaderboard": entries,
	})
}

// History handles GET /v1/games/{id}/rounds
func (h *GameHandler) History(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.match.History(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rounds": rounds,
	})
}
