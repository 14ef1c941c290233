package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/consultdesk/internal/http/errors"
	jwtx "github.com/dropDatabas3/consultdesk/internal/jwt"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

// TokenParser valida un access token. *jwt.Issuer lo implementa.
type TokenParser interface {
	Parse(token string) (*jwtx.Claims, error)
}

// RequireAuth valida Authorization: Bearer <JWT> y guarda el Principal en el contexto.
// Sin token o con token inválido responde 401.
func RequireAuth(p TokenParser) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(ah) < 7 || !strings.EqualFold(ah[:7], "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteErrorCtx(r.Context(), w, httperrors.ErrUnauthorized)
				return
			}

			claims, err := p.Parse(strings.TrimSpace(ah[7:]))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httperrors.WriteErrorCtx(r.Context(), w, httperrors.ErrTokenInvalid.WithDetail(err.Error()))
				return
			}

			pr := Principal{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}
			ctx := WithPrincipal(r.Context(), pr)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(pr.UserID), logger.Role(pr.Role)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin exige rol admin. Debe ir después de RequireAuth.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				httperrors.WriteErrorCtx(r.Context(), w, httperrors.ErrUnauthorized)
				return
			}
			if !p.IsAdmin() {
				httperrors.WriteErrorCtx(r.Context(), w, httperrors.ErrForbidden.WithDetail("admin role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
