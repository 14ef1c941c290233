package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/http/controllers"
	"github.com/dropDatabas3/consultdesk/internal/http/services"
	jwtx "github.com/dropDatabas3/consultdesk/internal/jwt"
	"github.com/dropDatabas3/consultdesk/internal/rate"
	"github.com/dropDatabas3/consultdesk/internal/store/memory"
)

type env struct {
	h      http.Handler
	st     *memory.Store
	client string
	admin  string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := memory.New()
	iss, err := jwtx.NewIssuer("test-secret-test-secret-test-secret", "consultdesk", time.Hour)
	require.NoError(t, err)

	ctx := context.Background()
	cu, err := st.Users().Create(ctx, repository.CreateUserInput{Email: "client@x.io", Firstname: "Ana"})
	require.NoError(t, err)
	au, err := st.Users().Create(ctx, repository.CreateUserInput{Email: "admin@x.io", Role: repository.RoleAdmin})
	require.NoError(t, err)
	ct, _, err := iss.Issue(cu.ID, cu.Email, cu.Role)
	require.NoError(t, err)
	at, _, err := iss.Issue(au.ID, au.Email, au.Role)
	require.NoError(t, err)

	svcs := services.New(services.Deps{
		Repos:   st,
		Booking: services.BookingConfig{Location: time.UTC},
	})
	h := New(Deps{
		Controllers: controllers.New(svcs),
		Auth:        iss,
		RateLimiter: rate.NewMemoryLimiter(2, time.Hour),
	})
	return &env{h: h, st: st, client: ct, admin: at}
}

func (e *env) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)

	out := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestHealthAndNotFound(t *testing.T) {
	e := newEnv(t)

	rec, body := e.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", body["status"])

	rec, body = e.do(t, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "ROUTE_NOT_FOUND", body["code"])
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReservationRoutes(t *testing.T) {
	e := newEnv(t)
	payload := map[string]any{"reservation_date": "2099-06-15", "reservation_time": "10:00"}

	rec, _ := e.do(t, http.MethodPost, "/reservations", "", payload)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := e.do(t, http.MethodPost, "/reservations", e.client, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := body["reservation"].(map[string]any)
	id := res["id"].(string)
	require.Equal(t, "pending", res["status"])
	require.Equal(t, "visio", res["meeting_type"])

	rec, body = e.do(t, http.MethodPost, "/reservations", e.client, payload)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "slot unavailable", body["detail"])

	rec, body = e.do(t, http.MethodPost, "/reservations/check-availability", "", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, body["available"])

	rec, _ = e.do(t, http.MethodPost, "/reservations", e.client,
		map[string]any{"reservation_date": "2099-06-15", "reservation_time": "18:00"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = e.do(t, http.MethodGet, "/reservations/my", e.client, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["reservations"], 1)

	rec, _ = e.do(t, http.MethodPut, "/reservations/"+id+"/confirm", e.client, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = e.do(t, http.MethodGet, "/reservations/admin/all", e.client, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = e.do(t, http.MethodPut, "/reservations/"+id+"/confirm", e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "confirmed", body["reservation"].(map[string]any)["status"])

	rec, body = e.do(t, http.MethodPut, "/reservations/"+id+"/cancel", e.client, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "cancelled", body["reservation"].(map[string]any)["status"])

	rec, _ = e.do(t, http.MethodGet, "/reservations/not-a-uuid", e.client, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactRoutes(t *testing.T) {
	e := newEnv(t)
	msg := map[string]any{"name": "Ana", "email": "client@x.io", "subject": "Devis", "message": "Bonjour"}

	rec, body := e.do(t, http.MethodPost, "/contact", "", msg)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := body["id"].(string)

	rec, _ = e.do(t, http.MethodPost, "/contact", "", map[string]any{"name": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// tercer request de la misma IP en la ventana
	rec, body = e.do(t, http.MethodPost, "/contact", "", msg)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "RATE_LIMIT_EXCEEDED", body["code"])
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec, _ = e.do(t, http.MethodGet, "/admin/contact", e.client, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, body = e.do(t, http.MethodGet, "/admin/contact", e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, body["total"])
	require.EqualValues(t, 50, body["limit"])

	rec, _ = e.do(t, http.MethodPost, "/admin/contact/"+id+"/reply", e.admin, map[string]any{"reply_text": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = e.do(t, http.MethodPost, "/admin/contact/"+id+"/reply", e.admin, map[string]any{"reply_text": "Merci"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Réponse enregistrée avec succès", body["message"])

	rec, body = e.do(t, http.MethodGet, "/admin/contact/stats/overview", e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, body["replied"])

	rec, body = e.do(t, http.MethodGet, "/admin/contact/"+id, e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["replies"], 1)

	rec, _ = e.do(t, http.MethodDelete, "/admin/contact/"+id+"?permanent=true", e.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = e.do(t, http.MethodGet, "/admin/contact/"+id, e.admin, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryAndPreferenceRoutes(t *testing.T) {
	e := newEnv(t)

	rec, _ := e.do(t, http.MethodPost, "/categories", e.client, map[string]any{"name": "Vins"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec, body := e.do(t, http.MethodPost, "/categories", e.admin, map[string]any{"name": "Vins"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := body["category"].(map[string]any)["id"].(string)

	rec, body = e.do(t, http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, body["total"])

	rec, body = e.do(t, http.MethodGet, "/categories/"+id+"/dishes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, body["dishes"])

	rec, _ = e.do(t, http.MethodGet, "/me/email-preferences", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body = e.do(t, http.MethodPut, "/me/email-preferences", e.client, map[string]any{"marketing_emails": false})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, false, body["preferences"].(map[string]any)["marketing_emails"])

	rec, _ = e.do(t, http.MethodGet, "/admin/emails/stats?start_date=bad", e.admin, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
