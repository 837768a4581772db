package http

import (
	"context"
	"encoding/json"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ucrfood/internal/modkit/httpkit"
	perr "ucrfood/internal/platform/errors"
	phttp "ucrfood/internal/platform/net/http"
	"ucrfood/internal/services/menus/domain"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type fakePorts struct {
	tasks   []domain.FetchTask
	days    int
	recs    map[domain.Key]domain.MenuRecord
	listArg string
	err     error
}

func (f *fakePorts) Ingest(_ context.Context, tasks []domain.FetchTask) (domain.RunSummary, error) {
	f.tasks = tasks
	return domain.RunSummary{RunID: "run-1", Tasks: len(tasks), Upserted: len(tasks), Canceled: f.err != nil}, f.err
}

func (f *fakePorts) Recheck(_ context.Context, _ time.Time, days int) (domain.RunSummary, error) {
	f.days = days
	return domain.RunSummary{RunID: "run-2"}, f.err
}

func (f *fakePorts) Get(_ context.Context, k domain.Key) (domain.MenuRecord, error) {
	r, ok := f.recs[k]
	if !ok {
		return domain.MenuRecord{}, perr.NotFoundf("menu %s not found", k)
	}
	return r, nil
}

func (f *fakePorts) ListByDate(_ context.Context, d string) ([]domain.MenuRecord, error) {
	f.listArg = d
	out := []domain.MenuRecord{}
	for k, r := range f.recs {
		if k.MenuDate == d {
			out = append(out, r)
		}
	}
	return out, nil
}

func newServer(f *fakePorts) httpkit.Router {
	r := phttp.AdaptChi(chi.NewRouter())
	Register(r, f, f)
	return r
}

type envelope struct {
	Code  perr.ErrorCode  `json:"code"`
	Field string          `json:"field"`
	Data  json.RawMessage `json:"data"`
}

func do(t *testing.T, r httpkit.Router, method, path, body string) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func seeded() *fakePorts {
	key := domain.Key{LocationNum: "02", MenuDate: "11-03-2017"}
	return &fakePorts{recs: map[domain.Key]domain.MenuRecord{
		key: {Location: domain.Location{Name: "Lothian", Num: "02"}, TimeInfo: domain.TimeInfo{MenuDate: key.MenuDate}, Sections: []domain.MenuSection{}},
	}}
}

func TestListMenus(t *testing.T) {
	f := seeded()
	r := newServer(f)

	code, env := do(t, r, stdhttp.MethodGet, "/menus?date=11-03-2017", "")
	require.Equal(t, stdhttp.StatusOK, code)
	var recs []domain.MenuRecord
	require.NoError(t, json.Unmarshal(env.Data, &recs))
	require.Len(t, recs, 1)
	require.Equal(t, "11-03-2017", f.listArg)

	code, env = do(t, r, stdhttp.MethodGet, "/menus?date=11-03-2017&location=02", "")
	require.Equal(t, stdhttp.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &recs))
	require.Equal(t, "Lothian", recs[0].Location.Name)
}

func TestListMenus_Validation(t *testing.T) {
	r := newServer(seeded())
	cases := map[string]string{
		"/menus":                                "date",
		"/menus?date=2017-11-03":                "date",
		"/menus?date=11-03-2017&location=north": "location",
	}
	for path, field := range cases {
		code, env := do(t, r, stdhttp.MethodGet, path, "")
		require.Equal(t, stdhttp.StatusBadRequest, code, path)
		require.Equal(t, perr.ErrorCodeValidation, env.Code, path)
		require.Equal(t, field, env.Field, path)
	}
}

func TestGetMenu(t *testing.T) {
	r := newServer(seeded())

	code, env := do(t, r, stdhttp.MethodGet, "/menus/02/11-03-2017", "")
	require.Equal(t, stdhttp.StatusOK, code)
	var rec domain.MenuRecord
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	require.Equal(t, "02", rec.Location.Num)

	code, env = do(t, r, stdhttp.MethodGet, "/menus/03/11-03-2017", "")
	require.Equal(t, stdhttp.StatusNotFound, code)
	require.Equal(t, perr.ErrorCodeNotFound, env.Code)

	code, _ = do(t, r, stdhttp.MethodGet, "/menus/02/tomorrow", "")
	require.Equal(t, stdhttp.StatusBadRequest, code)
}

func TestRuns(t *testing.T) {
	f := &fakePorts{}
	r := newServer(f)
	u := "http://menus.example.edu/shortmenu.aspx?locationNum=02"

	code, env := do(t, r, stdhttp.MethodPost, "/runs", `{"tasks":[{"url":"`+u+`","sum":"ab"},"`+u+`&x=1"]}`)
	require.Equal(t, stdhttp.StatusOK, code)
	var sum domain.RunSummary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	require.Equal(t, "run-1", sum.RunID)
	require.Len(t, f.tasks, 2)
	require.Equal(t, "ab", f.tasks[0].KnownHash())

	code, env = do(t, r, stdhttp.MethodPost, "/runs", `{"tasks":42}`)
	require.Equal(t, stdhttp.StatusBadRequest, code)
	require.Equal(t, "tasks", env.Field)

	code, _ = do(t, r, stdhttp.MethodPost, "/runs", `{}`)
	require.Equal(t, stdhttp.StatusBadRequest, code)

	f.err = perr.Unavailablef("store down")
	code, _ = do(t, r, stdhttp.MethodPost, "/runs", `{"tasks":"`+u+`"}`)
	require.Equal(t, stdhttp.StatusServiceUnavailable, code)
}

func TestRunsCutShortKeepSummary(t *testing.T) {
	u := "http://menus.example.edu/shortmenu.aspx?locationNum=02"
	for _, cut := range []error{context.Canceled, fmt.Errorf("batch: %w", context.DeadlineExceeded)} {
		f := &fakePorts{err: cut}
		code, env := do(t, newServer(f), stdhttp.MethodPost, "/runs", `{"tasks":["`+u+`","`+u+`&x=1"]}`)
		require.Equal(t, stdhttp.StatusOK, code, cut.Error())

		var sum domain.RunSummary
		require.NoError(t, json.Unmarshal(env.Data, &sum))
		require.Equal(t, "run-1", sum.RunID)
		require.True(t, sum.Canceled)
		require.Equal(t, 2, sum.Upserted)
	}
}

func TestSummaryDropsRunThatNeverStarted(t *testing.T) {
	got, err := summary(domain.RunSummary{}, context.DeadlineExceeded)
	require.Nil(t, got)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	got, err = summary(domain.RunSummary{RunID: "run-3"}, perr.DBf("hashes"))
	require.Nil(t, got)
	require.True(t, perr.IsCode(err, perr.ErrorCodeDB))
}

func TestRecheck(t *testing.T) {
	f := &fakePorts{}
	r := newServer(f)

	code, _ := do(t, r, stdhttp.MethodPost, "/runs/recheck", `{"days":15}`)
	require.Equal(t, stdhttp.StatusOK, code)
	require.Equal(t, 15, f.days)

	code, env := do(t, r, stdhttp.MethodPost, "/runs/recheck", `{"days":90}`)
	require.Equal(t, stdhttp.StatusBadRequest, code)
	require.Equal(t, "days", env.Field)
}
