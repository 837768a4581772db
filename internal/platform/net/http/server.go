package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"strings"
	"time"

	"ucrfood/internal/platform/config"
	"ucrfood/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server owns the chi mux and the listener for one process
type Server struct {
	mux   *chi.Mux
	srv   *stdhttp.Server
	grace time.Duration
}

// NewServer reads CORE_API_PORT (default 4000), CORE_API_READ_HEADER_TIMEOUT and CORE_API_SHUTDOWN_GRACE
// each opt sees the mux before any route is mounted
func NewServer(cfg config.Conf, opts ...func(*chi.Mux)) *Server {
	api := cfg.Prefix("CORE_API_")
	m := chi.NewRouter()
	for _, o := range opts {
		o(m)
	}
	return &Server{
		mux:   m,
		grace: api.MayDuration("SHUTDOWN_GRACE", 10*time.Second),
		srv: &stdhttp.Server{
			Addr:              listenAddr(api.MayString("PORT", "4000")),
			Handler:           m,
			ReadHeaderTimeout: api.MayDuration("READ_HEADER_TIMEOUT", 10*time.Second),
		},
	}
}

// listenAddr accepts "4000", ":4000" or "host:4000"
func listenAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func (s *Server) Router() Router { return AdaptChi(s.mux) }

func (s *Server) Addr() string { return s.srv.Addr }

// Run serves until the listener fails or ctx ends; after ctx ends in-flight requests get the grace period
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	failed := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("http listening")
		failed <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-failed:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			err = nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("grace", s.grace).Msg("http shutting down")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.grace)
	defer cancel()
	return s.Shutdown(sctx)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.Shutdown(ctx) }
