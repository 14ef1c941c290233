package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/consultdesk/internal/http/controllers/email"
	mw "github.com/dropDatabas3/consultdesk/internal/http/middlewares"
)

// EmailRouterDeps contiene las dependencias para el router de email.
type EmailRouterDeps struct {
	Controller *ctrl.Controller
	Auth       mw.TokenParser
}

// RegisterEmailRoutes registra /admin/emails y /me/email-preferences.
func RegisterEmailRoutes(r chi.Router, deps EmailRouterDeps) {
	c := deps.Controller

	r.Route("/admin/emails", func(r chi.Router) {
		r.Use(adminOnly(deps.Auth)...)
		r.Get("/stats", c.Stats)
		r.Get("/users/{id}", c.History)
	})

	r.Route("/me/email-preferences", func(r chi.Router) {
		r.Use(authed(deps.Auth))
		r.Get("/", c.GetPreferences)
		r.Put("/", c.UpdatePreferences)
	})
}
