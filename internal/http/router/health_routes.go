package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/consultdesk/internal/http/controllers/health"
)

// HealthRouterDeps contiene las dependencias para el router de health.
type HealthRouterDeps struct {
	Controllers *ctrl.HealthController
	Metrics     http.Handler
}

// RegisterHealthRoutes registra /healthz, /readyz y /metrics. Públicos.
func RegisterHealthRoutes(r chi.Router, deps HealthRouterDeps) {
	r.Get("/healthz", deps.Controllers.Healthz)
	r.Get("/readyz", deps.Controllers.Readyz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
}
