package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/consultdesk/internal/http/controllers/category"
	mw "github.com/dropDatabas3/consultdesk/internal/http/middlewares"
)

// CategoryRouterDeps contiene las dependencias para el router de categorías.
type CategoryRouterDeps struct {
	Controller *ctrl.Controller
	Auth       mw.TokenParser
}

// RegisterCategoryRoutes registra /categories. Lectura pública, escritura admin.
func RegisterCategoryRoutes(r chi.Router, deps CategoryRouterDeps) {
	c := deps.Controller
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", c.List)
		r.Get("/{id}", c.Get)
		r.Get("/{id}/dishes", c.Dishes)

		r.Group(func(r chi.Router) {
			r.Use(adminOnly(deps.Auth)...)
			r.Post("/", c.Create)
			r.Put("/{id}", c.Update)
			r.Delete("/{id}", c.Delete)
		})
	})
}
