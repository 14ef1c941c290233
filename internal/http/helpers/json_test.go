package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	httperrors "github.com/dropDatabas3/consultdesk/internal/http/errors"
)

func TestReadJSON(t *testing.T) {
	var v struct{ Name string }
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":1}`))
	r.Header.Set("Content-Type", "application/json")
	require.NoError(t, ReadJSON(httptest.NewRecorder(), r, &v))
	require.Equal(t, "x", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	err := ReadJSON(httptest.NewRecorder(), r, &v)
	require.Equal(t, "INVALID_JSON", httperrors.FromError(err).Code)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`a=b`))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.Error(t, ReadJSON(httptest.NewRecorder(), r, &v))
}

func TestPathID(t *testing.T) {
	withParam := func(v string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", v)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := PathID(withParam("6f1c1f7e-5d0b-4c59-9e53-0d3c1e2a9b10"), "id")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = PathID(withParam("not-a-uuid"), "id")
	require.Equal(t, http.StatusNotFound, httperrors.FromError(err).HTTPStatus)
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=-3&x=abc", nil)
	require.Equal(t, 100, QueryInt(r, "limit", 50, 100))
	require.Equal(t, 0, QueryInt(r, "offset", 0, 0))
	require.Equal(t, 7, QueryInt(r, "x", 7, 0))
	require.Equal(t, 50, QueryInt(r, "missing", 50, 100))
}
