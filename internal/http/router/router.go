// Package router arma la tabla de rutas (chi). Cada dominio registra sus rutas
// en su propio archivo; cada ruta tiene un único handler.
package router

import (
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/consultdesk/internal/http/controllers"
	httperrors "github.com/dropDatabas3/consultdesk/internal/http/errors"
	mw "github.com/dropDatabas3/consultdesk/internal/http/middlewares"
	"github.com/dropDatabas3/consultdesk/internal/rate"
)

// Deps contiene las dependencias del router.
type Deps struct {
	Controllers *controllers.Controllers
	Auth        mw.TokenParser
	RateLimiter rate.Limiter // opcional: endpoints públicos de escritura
	Metrics     http.Handler // opcional: /metrics
	CORSOrigins []string

	// TrustedProxies habilita X-Forwarded-For sólo para estos peers.
	TrustedProxies []netip.Prefix
}

// New devuelve el handler raíz con los middlewares globales aplicados.
// Orden: recover, client ip, request id, logging, metrics, CORS.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithClientIP(d.TrustedProxies),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithMetrics(),
		mw.WithCORS(d.CORSOrigins),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	c := d.Controllers
	RegisterHealthRoutes(r, HealthRouterDeps{Controllers: c.Health, Metrics: d.Metrics})
	RegisterReservationRoutes(r, ReservationRouterDeps{Controller: c.Reservations, Auth: d.Auth})
	RegisterContactRoutes(r, ContactRouterDeps{Controller: c.Contacts, Auth: d.Auth, RateLimiter: d.RateLimiter})
	RegisterCategoryRoutes(r, CategoryRouterDeps{Controller: c.Categories, Auth: d.Auth})
	RegisterEmailRoutes(r, EmailRouterDeps{Controller: c.Emails, Auth: d.Auth})
	return r
}

// authed agrupa rutas que requieren usuario autenticado.
func authed(p mw.TokenParser) func(http.Handler) http.Handler {
	return mw.RequireAuth(p)
}

// adminOnly exige usuario autenticado con rol admin.
func adminOnly(p mw.TokenParser) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{mw.RequireAuth(p), mw.RequireAdmin()}
}
