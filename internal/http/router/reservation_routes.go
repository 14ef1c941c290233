package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/consultdesk/internal/http/controllers/reservation"
	mw "github.com/dropDatabas3/consultdesk/internal/http/middlewares"
)

// ReservationRouterDeps contiene las dependencias para el router de reservas.
type ReservationRouterDeps struct {
	Controller *ctrl.Controller
	Auth       mw.TokenParser
}

// RegisterReservationRoutes registra /reservations. Las rutas literales
// (/my, /admin/all) van antes de /{id}.
func RegisterReservationRoutes(r chi.Router, deps ReservationRouterDeps) {
	c := deps.Controller
	r.Route("/reservations", func(r chi.Router) {
		r.Post("/check-availability", c.CheckAvailability)

		r.With(adminOnly(deps.Auth)...).Get("/admin/all", c.ListAll)
		r.With(adminOnly(deps.Auth)...).Put("/{id}/confirm", c.Confirm)

		r.Group(func(r chi.Router) {
			r.Use(authed(deps.Auth))
			r.Post("/", c.Create)
			r.Get("/my", c.ListMine)
			r.Get("/{id}", c.Get)
			r.Put("/{id}/cancel", c.Cancel)
		})
	})
}
