package middlewares

import (
	"net/http"
	"time"

	"github.com/dropDatabas3/consultdesk/internal/metrics"
)

// WithMetrics registra latencia, status e inflight por ruta normalizada.
// No hace nada si metrics.Register no fue llamado.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !metrics.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			path := metrics.NormalizePath(r.URL.Path)
			done := metrics.TrackInflight(r.Method, path)
			defer done()

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			metrics.ObserveHTTP(r.Method, path, rec.status, time.Since(start))
		})
	}
}
