// Package metrics concentra los collectors Prometheus del servicio.
// Vive aparte de internal/http para que internal/email pueda registrar
// envíos y estado de la cola sin ciclos de import.
package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec
	rateLimitedTotal    *prometheus.CounterVec

	// Email
	emailSendsTotal   *prometheus.CounterVec
	emailSendDuration *prometheus.HistogramVec
	queueTasksTotal   *prometheus.CounterVec
	queueRetriesTotal *prometheus.CounterVec
	queueDepth        prometheus.Gauge
)

// Config agrupa las dependencias para exponer /metrics.
type Config struct {
	Registry prometheus.Registerer
	Pool     func() *pgxpool.Pool
}

// Register inicializa los collectors (una sola vez por proceso) y devuelve el handler de /metrics.
func Register(cfg Config) (http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método y ruta",
		}, []string{"method", "path"})

		rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rechazadas por rate limit",
		}, []string{"path"})

		emailSendsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "email_sends_total",
			Help: "Envíos de email por provider y resultado",
		}, []string{"provider", "result"}) // result: sent|failed|preview|not_configured

		emailSendDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "email_send_duration_seconds",
			Help:    "Latencia de la llamada al transporte",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider"})

		queueTasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "email_queue_tasks_total",
			Help: "Tareas de la cola de emails por estado final",
		}, []string{"status"}) // queued|sent|failed|dropped|rejected

		queueRetriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "email_queue_retries_total",
			Help: "Reintentos programados por motivo",
		}, []string{"reason"}) // transport|throttled

		queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "email_queue_depth",
			Help: "Tareas esperando en la cola",
		})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration, httpInflight, rateLimitedTotal,
			emailSendsTotal, emailSendDuration, queueTasksTotal, queueRetriesTotal, queueDepth,
		} {
			if err := registerCollector(registry, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	if metricsErr != nil {
		return nil, metricsErr
	}

	if cfg.Pool != nil {
		if err := registerCollector(registry, newDBPoolCollector(cfg.Pool)); err != nil {
			return nil, err
		}
	}
	return promhttp.Handler(), nil
}

// registerCollector registra el collector en el registry indicado, ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// ─── HTTP ───

// Enabled indica si Register ya corrió (los middlewares se vuelven no-op si no).
func Enabled() bool {
	return httpRequestsTotal != nil && httpRequestDuration != nil && httpInflight != nil
}

// TrackInflight incrementa el gauge y devuelve la función que lo decrementa.
func TrackInflight(method, path string) func() {
	if httpInflight == nil {
		return func() {}
	}
	g := httpInflight.WithLabelValues(method, path)
	g.Inc()
	return g.Dec
}

// ObserveHTTP registra un request terminado.
func ObserveHTTP(method, path string, status int, d time.Duration) {
	if httpRequestDuration != nil {
		httpRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
	}
	if httpRequestsTotal != nil {
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	}
}

// RecordRateLimited cuenta un rechazo del rate limiter HTTP.
func RecordRateLimited(path string) {
	if rateLimitedTotal != nil {
		rateLimitedTotal.WithLabelValues(NormalizePath(path)).Inc()
	}
}

// ─── Email ───

// RecordEmailSend registra el resultado de un Client.Send.
func RecordEmailSend(provider, result string, d time.Duration) {
	if emailSendsTotal != nil {
		emailSendsTotal.WithLabelValues(provider, result).Inc()
	}
	if emailSendDuration != nil && d > 0 {
		emailSendDuration.WithLabelValues(provider).Observe(d.Seconds())
	}
}

// RecordQueueTask cuenta una transición de tarea.
func RecordQueueTask(status string) {
	if queueTasksTotal != nil {
		queueTasksTotal.WithLabelValues(status).Inc()
	}
}

// RecordQueueRetry cuenta un reintento programado.
func RecordQueueRetry(reason string) {
	if queueRetriesTotal != nil {
		queueRetriesTotal.WithLabelValues(reason).Inc()
	}
}

// SetQueueDepth publica la profundidad actual de la cola.
func SetQueueDepth(n int) {
	if queueDepth != nil {
		queueDepth.Set(float64(n))
	}
}

// ─── DB pool ───

type dbPoolCollector struct {
	pool func() *pgxpool.Pool

	acquiredDesc *prometheus.Desc
	idleDesc     *prometheus.Desc
	totalDesc    *prometheus.Desc
}

func newDBPoolCollector(pool func() *pgxpool.Pool) *dbPoolCollector {
	return &dbPoolCollector{
		pool:         pool,
		acquiredDesc: prometheus.NewDesc("pg_pool_acquired", "Conexiones adquiridas", nil, nil),
		idleDesc:     prometheus.NewDesc("pg_pool_idle", "Conexiones inactivas", nil, nil),
		totalDesc:    prometheus.NewDesc("pg_pool_total", "Conexiones totales", nil, nil),
	}
}

func (c *dbPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquiredDesc
	ch <- c.idleDesc
	ch <- c.totalDesc
}

func (c *dbPoolCollector) Collect(ch chan<- prometheus.Metric) {
	pool := c.pool()
	if pool == nil {
		return
	}
	stat := pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.acquiredDesc, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idleDesc, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.totalDesc, prometheus.GaugeValue, float64(stat.TotalConns()))
}

// ─── path labels ───

var (
	uuidSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// NormalizePath reemplaza segmentos dinámicos (uuid, números, tokens) por ":param"
// para acotar la cardinalidad de los labels.
func NormalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" {
		return "/"
	}
	var out []string
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) || tokenSegmentRE.MatchString(seg) {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}
