package email

import (
	"context"
	"time"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

// Limiter acota los envíos totales por hora contando filas recientes de email_logs.
type Limiter struct {
	logs   repository.EmailLogRepository
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewLimiter crea el limiter. limit <= 0 desactiva el tope.
func NewLimiter(logs repository.EmailLogRepository, limit int) *Limiter {
	return &Limiter{logs: logs, limit: limit, window: time.Hour, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// WithinLimit devuelve false cuando los envíos de la última hora alcanzan el tope.
// Si la lectura falla devuelve true (fail-open).
func (l *Limiter) WithinLimit(ctx context.Context) bool {
	if l == nil || l.logs == nil || l.limit <= 0 {
		return true
	}
	n, err := l.logs.CountSince(ctx, l.now().Add(-l.window))
	if err != nil {
		logger.From(ctx).Warn("email rate limit check failed, allowing",
			logger.Component("email.limiter"), logger.Err(err))
		return true
	}
	return n < l.limit
}
