package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ucrfood/internal/adapters/ingest/foodpro"
	perr "ucrfood/internal/platform/errors"
	kit "ucrfood/internal/platform/testkit"

	"github.com/stretchr/testify/require"
)

func TestFetcher_MapsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	p, err := NewFetcher(foodpro.Options{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(p.Body))
	require.Equal(t, "text/html; charset=utf-8", p.ContentType)
}

func TestFetcher_PassesErrorsThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewFetcher(foodpro.Options{}).Fetch(context.Background(), srv.URL)
	require.True(t, perr.IsCode(err, perr.ErrorCodeUnreachable))
}

func TestParser_ParsesShortMenu(t *testing.T) {
	raw := kit.Fixture(t, "..", "..", "..", "core", "menuparse", "testdata", "shortmenu.html")

	secs, err := NewParser().Parse(raw, "text/html")
	require.NoError(t, err)
	require.Len(t, secs, 3)
	require.Equal(t, "breakfast", secs[0].Label)
	require.Equal(t, []string{"Hot Entrees", "Bakery"}, secs[0].Categories.Names())
}
