package handlers

import "net/http"

func (h *Handler) GetSurvivalState(w http.ResponseWriter, r *http.Request) {
	season, players, err := h.Survival.State(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "survival state", map[string]interface{}{
		"season":  season,
		"players": players,
	})
}

func (h *Handler) JoinSurvival(w http.ResponseWriter, r *http.Request) {
	player, err := h.Survival.Join(r.Context(), h.userID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "joined the survival season", player)
}

func (h *Handler) SubmitSurvivalPick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Team string `json:"team"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	pick, err := h.Survival.SubmitPick(r.Context(), h.userID(r), req.Team)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "pick submitted", pick)
}

func (h *Handler) StartSurvivalSeason(w http.ResponseWriter, r *http.Request) {
	season, err := h.Survival.StartSeason(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "survival season started", season)
}

func (h *Handler) CloseSurvivalSeason(w http.ResponseWriter, r *http.Request) {
	season, err := h.Survival.CloseSeason(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	msg := "survival season completed"
	if season.Stalemate {
		msg = "survival season closed as stalemate"
	}
	h.ok(w, msg, season)
}
