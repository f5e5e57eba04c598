package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fannyleague/fanny-services/internal/core/models"
	"github.com/go-chi/chi"
)

func (h *Handler) GetCurrentRound(w http.ResponseWriter, r *http.Request) {
	round, err := h.Rounds.Current(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "current round", round)
}

func (h *Handler) ListArchivedRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.Rounds.Archived(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "archived rounds", rounds)
}

func (h *Handler) GetMyBet(w http.ResponseWriter, r *http.Request) {
	roundID, err := strconv.ParseInt(chi.URLParam(r, "roundID"), 10, 64)
	if err != nil {
		h.CreateResponse(w, Response{Message: "invalid round id", Code: http.StatusBadRequest})
		return
	}
	bet, err := h.Rounds.UserBet(r.Context(), roundID, h.userID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "bet", bet)
}

func (h *Handler) ListBets(w http.ResponseWriter, r *http.Request) {
	roundID, err := strconv.ParseInt(chi.URLParam(r, "roundID"), 10, 64)
	if err != nil {
		h.CreateResponse(w, Response{Message: "invalid round id", Code: http.StatusBadRequest})
		return
	}
	bets, err := h.Rounds.Bets(r.Context(), roundID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "bets", bets)
}

func (h *Handler) SubmitBet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Predictions    []string `json:"predictions"`
		IncludeJackpot bool     `json:"include_jackpot"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	bet, err := h.Rounds.SubmitBet(r.Context(), h.userID(r), req.Predictions, req.IncludeJackpot)
	if err != nil {
		h.fail(w, err)
		return
	}
	msg := "Base prediction set placed!"
	if req.IncludeJackpot {
		msg = "Prediction set + Super Jackpot placed!"
	}
	h.ok(w, msg, bet)
}

func (h *Handler) OpenRound(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Deadline time.Time `json:"deadline"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	round, err := h.Rounds.Open(r.Context(), req.Deadline)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "round opened", round)
}

func (h *Handler) UpdateMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int          `json:"index"`
		Match models.Match `json:"match"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	round, err := h.Rounds.UpdateMatch(r.Context(), req.Index, req.Match)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "match updated", round)
}

func (h *Handler) DeclareOutcome(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index   int    `json:"index"`
		Outcome string `json:"outcome"` // "1", "X", "2" or "" to clear
	}
	if !h.decode(w, r, &req) {
		return
	}
	round, err := h.Rounds.DeclareOutcome(r.Context(), req.Index, req.Outcome)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "outcome updated", round)
}

func (h *Handler) SetJackpot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64 `json:"amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	round, err := h.Rounds.SetJackpot(r.Context(), req.Amount)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "jackpot updated", round)
}

func (h *Handler) SetDeadline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Deadline time.Time `json:"deadline"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	round, err := h.Rounds.SetDeadline(r.Context(), req.Deadline)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "deadline updated", round)
}

func (h *Handler) SetBetsLocked(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Locked bool `json:"locked"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	round, err := h.Rounds.SetBetsLocked(r.Context(), req.Locked)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "bets lock updated", round)
}

func (h *Handler) ResetRound(w http.ResponseWriter, r *http.Request) {
	round, err := h.Rounds.Reset(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "round reset, outcomes cleared and bets deleted", round)
}

func (h *Handler) ArchiveRound(w http.ResponseWriter, r *http.Request) {
	res, err := h.Archiver.Archive(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	msg := "round archived, no winners (rollover)"
	if len(res.Settlement.Winners) > 0 {
		msg = "round archived, winners found!"
	}
	h.ok(w, msg, res)
}

func (h *Handler) ResetSystem(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.ResetSystem(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "system reset, all game data wiped and balances restored", nil)
}
