package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ucrfood/internal/core/version"
	"ucrfood/internal/modkit"
	"ucrfood/internal/modkit/httpkit"
	"ucrfood/internal/platform/config"
	"ucrfood/internal/platform/logger"
	phttp "ucrfood/internal/platform/net/http"
	"ucrfood/internal/platform/net/middleware"
	"ucrfood/internal/platform/store"
	menusmod "ucrfood/internal/services/menus/module"

	"github.com/go-chi/chi/v5"
)

func main() {
	fConfig := flag.String("config", "", "optional INI file with settings, the environment wins")
	flag.Parse()

	l := logger.Get()
	root, err := config.Load(*fConfig)
	if err != nil {
		l.Panic().Err(err).Str("path", *fConfig).Msg("config load failed")
	}
	apiCfg := root.Prefix("CORE_API_")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := menusmod.FromConfig(root)
	st, err := store.Open(ctx, store.FromConfig(root, "ucrfood", "api", store.Need{
		PG:    opts.Backend == menusmod.BackendPG,
		CH:    opts.Outcomes,
		Mongo: opts.Backend == menusmod.BackendMongo,
	}), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	mm := menusmod.New(modkit.FromStore(*l, root, st))
	if apiCfg.MayBool("ENSURE_SCHEMA", true) {
		if err := mm.Ensure(ctx); err != nil {
			l.Panic().Err(err).Msg("menus schema failed")
		}
	}

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(root, func(m *chi.Mux) {
		m.Use(middleware.Heartbeat("/health"))
	})
	r := srv.Router()
	httpkit.MountAPIV1(r, httpkit.CommonStack(apiCfg), mm.MountRoutes)
	phttp.GetJSON(r, "/version", func(*http.Request) (any, error) { return version.Info("ucrfood-api"), nil })
	phttp.MountProfiler(r, "/debug", apiCfg.MayBool("PROFILER", false))

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
