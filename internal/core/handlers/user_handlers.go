package handlers

import (
	"net/http"
	"os"
)

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{
		Message: "core service is running at port " + os.Getenv("CORE_SERVICE_PORT"),
		Code:    200,
	})
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.Leaderboard(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "leaderboard", users)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Get(r.Context(), h.userID(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "profile", u)
}
