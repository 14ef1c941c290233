package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	jwtx "github.com/dropDatabas3/consultdesk/internal/jwt"
	"github.com/dropDatabas3/consultdesk/internal/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(okHandler(), mk("A"), mk("B"), mk("C"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"A", "B", "C"}, order)
}

func TestRequestID_PropagatesOrGenerates(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}), WithRequestID())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	h.ServeHTTP(rec, req)
	require.Equal(t, "abc", seen)
	require.Equal(t, "abc", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	require.NotEqual(t, "abc", seen)
}

func TestRecover_Returns500(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}), WithRecover())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORS(t *testing.T) {
	h := Chain(okHandler(), WithCORS([]string{"https://lesage.dev/"}))

	req := httptest.NewRequest(http.MethodOptions, "/reservations", nil)
	req.Header.Set("Origin", "https://lesage.dev")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://lesage.dev", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

type fakeLimiter struct {
	res rate.Result
	err error
}

func (f fakeLimiter) Allow(context.Context, string) (rate.Result, error) { return f.res, f.err }

func TestRateLimit(t *testing.T) {
	blocked := Chain(okHandler(), WithRateLimit(fakeLimiter{res: rate.Result{RetryAfter: 30 * time.Second}}, nil))
	rec := httptest.NewRecorder()
	blocked.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", nil))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "30", rec.Header().Get("Retry-After"))

	failing := Chain(okHandler(), WithRateLimit(fakeLimiter{err: errors.New("redis down")}, nil))
	rec = httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	Chain(okHandler(), WithRateLimit(nil, nil)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestIPPathRateKey_IgnoresForwardedForWithoutTrustedProxy(t *testing.T) {
	var key string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = IPPathRateKey(r)
	}), WithClientIP(nil))

	req := httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.RemoteAddr = "203.0.113.7:5000"
	req.Header.Set("X-Forwarded-For", "9.9.9.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "203.0.113.7|/contact", key)

	// sin el middleware tampoco se confía en el header
	require.Equal(t, "203.0.113.7|/contact", IPPathRateKey(req))
}

func TestWithClientIP_TrustedProxyChain(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.168.1.5"})
	require.NoError(t, err)

	var got string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = clientIP(r)
	}), WithClientIP(trusted))

	call := func(remote, xff string) string {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = remote
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
		return got
	}

	// peer confiable: primera entrada no confiable desde la derecha
	require.Equal(t, "198.51.100.9", call("10.1.2.3:443", "6.6.6.6, 198.51.100.9, 10.0.0.2"))
	require.Equal(t, "198.51.100.9", call("192.168.1.5:443", "198.51.100.9"))
	// todo confiable: queda el peer
	require.Equal(t, "10.1.2.3", call("10.1.2.3:443", "10.0.0.9"))
	// peer no confiable: el header se ignora
	require.Equal(t, "203.0.113.7", call("203.0.113.7:443", "6.6.6.6"))

	_, err = ParseTrustedProxies([]string{"not-an-ip"})
	require.Error(t, err)
}

func TestRateLimit_SpoofedForwardedForSharesBucket(t *testing.T) {
	h := Chain(okHandler(), WithClientIP(nil), WithRateLimit(rate.NewMemoryLimiter(1, time.Hour), IPPathRateKey))

	call := func(xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	require.Equal(t, http.StatusOK, call("1.1.1.1"))
	require.Equal(t, http.StatusTooManyRequests, call("2.2.2.2"))
}

type fakeParser struct{}

func (fakeParser) Parse(tok string) (*jwtx.Claims, error) {
	switch tok {
	case "admin":
		c := &jwtx.Claims{Role: "admin"}
		c.Subject = "u-admin"
		return c, nil
	case "client":
		c := &jwtx.Claims{Role: "client"}
		c.Subject = "u-client"
		return c, nil
	}
	return nil, jwtx.ErrInvalidToken
}

func TestAuthAndAdmin(t *testing.T) {
	var got Principal
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetPrincipal(r.Context())
	})
	user := Chain(inner, RequireAuth(fakeParser{}))
	admin := Chain(inner, RequireAuth(fakeParser{}), RequireAdmin())

	call := func(h http.Handler, auth string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusUnauthorized, call(user, ""))
	require.Equal(t, http.StatusUnauthorized, call(user, "Bearer nope"))
	require.Equal(t, http.StatusOK, call(user, "Bearer client"))
	require.Equal(t, "u-client", got.UserID)

	require.Equal(t, http.StatusForbidden, call(admin, "Bearer client"))
	require.Equal(t, http.StatusOK, call(admin, "bearer admin"))
	require.True(t, got.IsAdmin())
}
