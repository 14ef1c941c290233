package middlewares

import (
	"context"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type ctxKey string

const (
	ctxPrincipalKey ctxKey = "principal"
	ctxRequestIDKey ctxKey = "request_id"
)

// Principal es el usuario autenticado del request.
type Principal struct {
	UserID string
	Email  string
	Role   string
}

// IsAdmin indica si el principal tiene rol admin.
func (p Principal) IsAdmin() bool { return p.Role == repository.RoleAdmin }

// WithPrincipal inyecta el principal en el contexto
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

// GetPrincipal obtiene el principal. ok=false si la ruta no pasó por RequireAuth.
func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxPrincipalKey).(Principal)
	return p, ok
}

// GetUserID devuelve "" si no hay principal.
func GetUserID(ctx context.Context) string {
	p, _ := GetPrincipal(ctx)
	return p.UserID
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}
