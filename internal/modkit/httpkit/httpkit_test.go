package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ucrfood/internal/platform/config"
	perr "ucrfood/internal/platform/errors"
	phttp "ucrfood/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newRouter() Router { return phttp.AdaptChi(chi.NewRouter()) }

func do(t *testing.T, r Router, method, path, body string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var env Envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestCall_WrapsValuesResponsesAndErrors(t *testing.T) {
	r := newRouter()
	Get(r, "/plain", func(*http.Request) (any, error) { return map[string]int{"n": 1}, nil })
	Get(r, "/resp", func(*http.Request) (any, error) { return Accepted("queued"), nil })
	Get(r, "/none", func(*http.Request) (any, error) { return NoContent(), nil })
	Post(r, "/err", func(*http.Request) (any, error) { return nil, perr.NotFoundf("no menu") })

	rec, env := do(t, r, http.MethodGet, "/plain", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]any{"n": float64(1)}, env.Data)

	rec, env = do(t, r, http.MethodGet, "/resp", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "queued", env.Data)

	rec, _ = do(t, r, http.MethodGet, "/none", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, env = do(t, r, http.MethodPost, "/err", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, perr.ErrorCodeNotFound, env.Code)
	require.Equal(t, "no menu", env.Error)
}

func TestPostJSON_BindsAndValidates(t *testing.T) {
	type in struct {
		Date string `json:"date" validate:"required,menu_date"`
	}
	r := newRouter()
	PostJSON(r, "/q", http.StatusCreated, func(_ *http.Request, v in) (any, error) { return v.Date, nil })

	rec, env := do(t, r, http.MethodPost, "/q", `{"date":"11-03-2017"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "11-03-2017", env.Data)

	rec, env = do(t, r, http.MethodPost, "/q", `{"date":"tomorrow"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "date", env.Field)
}

func TestParam(t *testing.T) {
	r := newRouter()
	Get(r, "/menus/{location}", func(req *http.Request) (any, error) { return Param(req, "location"), nil })
	_, env := do(t, r, http.MethodGet, "/menus/03", "")
	require.Equal(t, "03", env.Data)
}

func TestMountAPI_PrefixAndMiddleware(t *testing.T) {
	r := newRouter()
	mark := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Scope", "api")
			next.ServeHTTP(w, req)
		})
	}
	MountAPI(r, "/v2/", []func(http.Handler) http.Handler{mark}, func(api Router) {
		Get(api, "/ping", func(*http.Request) (any, error) { return "pong", nil })
	})
	MountAPIV1(r, nil, func(api Router) {
		Get(api, "/ping", func(*http.Request) (any, error) { return "v1", nil })
	})

	rec, env := do(t, r, http.MethodGet, "/api/v2/ping", "")
	require.Equal(t, "api", rec.Header().Get("X-Scope"))
	require.Equal(t, "pong", env.Data)

	rec, env = do(t, r, http.MethodGet, "/api/v1/ping", "")
	require.Empty(t, rec.Header().Get("X-Scope"))
	require.Equal(t, "v1", env.Data)
}

func TestCommonStack_CORSOnlyWhenConfigured(t *testing.T) {
	cfg, err := config.FromINI([]byte("[CORE_API]\nCORS_ORIGINS = https://dining.example.edu\nTIMEOUT = 5s\n"))
	require.NoError(t, err)

	plain := CommonStack(config.New().Prefix("CORE_API_"))
	withCORS := CommonStack(cfg.Prefix("CORE_API_"))
	require.Len(t, withCORS, len(plain)+1)

	r := newRouter()
	MountAPIV1(r, withCORS, func(api Router) {
		Get(api, "/menus", func(*http.Request) (any, error) { return []string{}, nil })
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/menus", nil)
	req.Header.Set("Origin", "https://dining.example.edu")
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://dining.example.edu", rec.Header().Get("Access-Control-Allow-Origin"))
}
