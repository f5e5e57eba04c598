package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
)

func (h *Handler) GetMyDuels(w http.ResponseWriter, r *http.Request) {
	duels, err := h.Duels.UserDuels(r.Context(), h.userID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "duels", duels)
}

func (h *Handler) CreateDuel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OpponentID string `json:"opponent_id"`
		Wager      int64  `json:"wager"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	duel, err := h.Duels.Create(r.Context(), h.userID(r), req.OpponentID, req.Wager)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "challenge sent!", duel)
}

func (h *Handler) RespondToDuel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Accept bool `json:"accept"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	duel, err := h.Duels.Respond(r.Context(), chi.URLParam(r, "duelID"), h.userID(r), req.Accept)
	if err != nil {
		h.fail(w, err)
		return
	}
	msg := "challenge declined"
	if req.Accept {
		msg = "challenge accepted!"
	}
	h.ok(w, msg, duel)
}

func (h *Handler) GetDuelLiveScore(w http.ResponseWriter, r *http.Request) {
	duel, err := h.Duels.LiveScore(r.Context(), chi.URLParam(r, "duelID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "live score", duel)
}
