package handlers

import (
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Get("/health", h.HealthHandler)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/rounds/current", h.GetCurrentRound)
			r.Get("/rounds/archived", h.ListArchivedRounds)
			r.Get("/rounds/{roundID}/bets", h.ListBets)
			r.Get("/rounds/{roundID}/bets/me", h.GetMyBet)
			r.Post("/bets", h.SubmitBet)

			r.Get("/leaderboard", h.GetLeaderboard)
			r.Get("/profile", h.GetProfile)

			r.Get("/survival", h.GetSurvivalState)
			r.Post("/survival/join", h.JoinSurvival)
			r.Post("/survival/picks", h.SubmitSurvivalPick)

			r.Get("/duels", h.GetMyDuels)
			r.Post("/duels", h.CreateDuel)
			r.Post("/duels/{duelID}/respond", h.RespondToDuel)
			r.Get("/duels/{duelID}/score", h.GetDuelLiveScore)

			// admin commands
			r.Group(func(r chi.Router) {
				r.Use(h.AdminOnly)

				r.Post("/admin/rounds", h.OpenRound)
				r.Put("/admin/rounds/match", h.UpdateMatch)
				r.Put("/admin/rounds/outcome", h.DeclareOutcome)
				r.Put("/admin/rounds/jackpot", h.SetJackpot)
				r.Put("/admin/rounds/deadline", h.SetDeadline)
				r.Put("/admin/rounds/lock", h.SetBetsLocked)
				r.Post("/admin/rounds/reset", h.ResetRound)
				r.Post("/admin/rounds/archive", h.ArchiveRound)

				r.Post("/admin/survival/seasons", h.StartSurvivalSeason)
				r.Post("/admin/survival/close", h.CloseSurvivalSeason)

				r.Post("/admin/system/reset", h.ResetSystem)
			})
		})
	})
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"sub":  "svc-admin",
		"role": "ADMIN",
		"exp":  expirationTime,
	})

	// For debugging only, comment it out in production
	log.Infof("DEBUG: JWT for testing expires soon : %s", tokenString)
}
