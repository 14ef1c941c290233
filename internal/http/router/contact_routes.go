package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/consultdesk/internal/http/controllers/contact"
	mw "github.com/dropDatabas3/consultdesk/internal/http/middlewares"
	"github.com/dropDatabas3/consultdesk/internal/rate"
)

// ContactRouterDeps contiene las dependencias para el router de contacto.
type ContactRouterDeps struct {
	Controller  *ctrl.Controller
	Auth        mw.TokenParser
	RateLimiter rate.Limiter // Opcional: rate limiter por IP del formulario
}

// RegisterContactRoutes registra POST /contact (público) y /admin/contact.
func RegisterContactRoutes(r chi.Router, deps ContactRouterDeps) {
	c := deps.Controller

	r.With(mw.WithRateLimit(deps.RateLimiter, mw.IPPathRateKey)).Post("/contact", c.Submit)

	r.Route("/admin/contact", func(r chi.Router) {
		r.Use(adminOnly(deps.Auth)...)
		r.Get("/stats/overview", c.Stats)
		r.Get("/", c.List)
		r.Get("/{id}", c.Get)
		r.Put("/{id}", c.Update)
		r.Post("/{id}/reply", c.Reply)
		r.Delete("/{id}", c.Delete)
	})
}
