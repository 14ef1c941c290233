// Package health contiene el service para health checks.
package health

import (
	"context"
	"fmt"
	"time"

	dto "github.com/dropDatabas3/consultdesk/internal/http/dto/health"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

// HealthService define las operaciones de health check.
type HealthService interface {
	Check(ctx context.Context) dto.HealthResponse
}

// EmailStatus abstrae lo que health necesita del subsistema de email.
type EmailStatus interface {
	Configured() bool
	Provider() string
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	Version    string
	DBCheck    func(ctx context.Context) error // nil = store en memoria
	CacheCheck func(ctx context.Context) error
	CacheKind  string
	Email      EmailStatus
	QueueDepth func() int
	QueueSize  int
	Now        func() time.Time
}

type healthService struct {
	deps Deps
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &healthService{deps: deps}
}

const componentHealth = "health"

func (s *healthService) Check(ctx context.Context) dto.HealthResponse {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(componentHealth),
		logger.Op("Check"),
	)

	response := dto.HealthResponse{
		Version:    s.deps.Version,
		Components: make(map[string]dto.HealthStatus),
		Timestamp:  s.deps.Now().UTC(),
	}

	hasErrors := false
	hasCriticalErrors := false

	// 1) DB (crítico)
	if s.deps.DBCheck != nil {
		if err := s.deps.DBCheck(ctx); err != nil {
			response.Components["db"] = dto.HealthStatus{
				Status:  "error",
				Message: fmt.Sprintf("unavailable: %v", err),
			}
			hasCriticalErrors = true
			log.Error("db unavailable", logger.Err(err))
		} else {
			response.Components["db"] = dto.HealthStatus{Status: "ok"}
		}
	} else {
		response.Components["db"] = dto.HealthStatus{
			Status:  "disabled",
			Message: "in-memory store",
		}
	}

	// 2) Cache (no crítico)
	if s.deps.CacheCheck != nil {
		if err := s.deps.CacheCheck(ctx); err != nil {
			response.Components["cache"] = dto.HealthStatus{
				Status:  "error",
				Message: fmt.Sprintf("%s unavailable: %v", s.deps.CacheKind, err),
			}
			hasErrors = true
			log.Warn("cache unavailable", logger.Err(err))
		} else {
			response.Components["cache"] = dto.HealthStatus{Status: "ok", Message: s.deps.CacheKind}
		}
	} else {
		response.Components["cache"] = dto.HealthStatus{Status: "disabled"}
	}

	// 3) Email (no crítico: sin transporte los envíos quedan como failed)
	if s.deps.Email != nil && s.deps.Email.Configured() {
		response.Components["email"] = dto.HealthStatus{Status: "ok", Message: s.deps.Email.Provider()}
	} else {
		response.Components["email"] = dto.HealthStatus{Status: "error", Message: "transport not configured"}
		hasErrors = true
	}

	// 4) Queue (informativo salvo saturación)
	if s.deps.QueueDepth != nil {
		depth := s.deps.QueueDepth()
		st := dto.HealthStatus{Status: "ok", Message: fmt.Sprintf("depth %d/%d", depth, s.deps.QueueSize)}
		if s.deps.QueueSize > 0 && depth >= s.deps.QueueSize {
			st.Status = "error"
			hasErrors = true
		}
		response.Components["email_queue"] = st
	}

	switch {
	case hasCriticalErrors:
		response.Status = "unavailable"
	case hasErrors:
		response.Status = "degraded"
	default:
		response.Status = "ready"
	}
	return response
}
