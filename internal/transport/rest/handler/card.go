package handler

import (
	"absurdlyvisual/internal/model"
	"absurdlyvisual/internal/service"
	"net/http"

	"github.com/gorilla/mux"
)

const maxCardPage = 200

// CardHandler exposes the card catalog read-only
type CardHandler struct {
	cards service.CardSource
}

// NewCardHandler creates a new card handler
func NewCardHandler(cards service.CardSource) *CardHandler {
	return &CardHandler{cards: cards}
}

// List handles GET /v1/cards/{kind}?rating=&topic=&limit=&offset=
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	kind, err := model.ParseCardKind(mux.Vars(r)["kind"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rating := model.Rating(r.URL.Query().Get("rating"))
	if rating == "" {
		rating = model.RatingNone
	}
	if !rating.Valid() {
		writeError(w, http.StatusBadRequest, "unknown rating")
		return
	}

	cards := h.cards.List(kind, rating, r.URL.Query().Get("topic"))
	total := len(cards)

	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 50)
	if limit <= 0 || limit > maxCardPage {
		limit = maxCardPage
	}
	if offset < 0 || offset > total {
		offset = total
	}
	end := min(offset+limit, total)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kind":  kind,
		"total": total,
		"cards": cards[offset:end],
	})
}

// Get handles GET /v1/cards/{kind}/{id}
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, err := model.ParseCardKind(vars["kind"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	card, ok := h.cards.Card(kind, vars["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "card not found")
		return
	}
	writeJSON(w, http.StatusOK, card)
}
