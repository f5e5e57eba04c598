package routes

import (
	"github.com/fannyleague/fanny-services/internal/notifysvc/handlers"
	"github.com/fannyleague/fanny-services/internal/notifysvc/ws"
	"github.com/go-chi/chi"
)

func SetRoutes(r *chi.Mux, hub *ws.Hub) {
	h := handlers.NewHandler(hub)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/ws", h.HandleWebSocket)
		r.Get("/health", h.HealthHandler)
	})
}
