package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rkRashik/deltacrown-registration/internal/ws"
	"go.uber.org/zap"
)

func SetupRoutes(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(d.Hub, d.Log))

	r.Post("/tournaments/{slug}/registrations", CreateRegistration(d))
	r.Route("/registrations/{code}", func(r chi.Router) {
		r.Get("/", GetRegistration(d.Hub))
		r.Post("/commands", PostCommand(d.Hub))
	})
	return r
}
