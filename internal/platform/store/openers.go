package store

import (
	"context"
	"fmt"
	"time"

	"ucrfood/internal/platform/logger"
	chx "ucrfood/internal/platform/store/ch"
	mgx "ucrfood/internal/platform/store/mongo"
	"ucrfood/internal/platform/store/pg"
)

const (
	defaultConnectRetries = 20
	defaultPingTimeout    = 3 * time.Second
	firstBackoff          = 150 * time.Millisecond
	maxBackoff            = 2 * time.Second
)

// openPG builds the pool and retries a ping until postgres answers
func openPG(ctx context.Context, cfg Config, log logger.Logger) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
		AppName:  appName(cfg),
	}, tracer, nil)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = defaultConnectRetries
	}
	timeout := cfg.PG.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	// the pool is pinged directly so boot pings stay out of the query trace
	if err := pingWithBackoff(ctx, attempts, timeout, p.Pool.Ping); err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return newPGAdapter(p), nil
}

// pingWithBackoff calls ping until it succeeds, ctx ends or attempts run out
// the wait doubles from firstBackoff up to maxBackoff
func pingWithBackoff(ctx context.Context, attempts int, timeout time.Duration, ping func(context.Context) error) error {
	wait := firstBackoff
	var last error
	for i := 0; i < attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		last = ping(pctx)
		cancel()
		if last == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, maxBackoff)
	}
	return fmt.Errorf("ping failed after %d attempts: %w", attempts, last)
}

// appName is "app-role", or whichever of the two is set
func appName(cfg Config) string {
	switch {
	case cfg.AppName == "":
		return cfg.Role
	case cfg.Role == "":
		return cfg.AppName
	}
	return cfg.AppName + "-" + cfg.Role
}

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.Role, Tag: cfg.AppName})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}

func openMongo(ctx context.Context, cfg Config) (Documents, error) {
	m, err := mgx.Open(ctx, mgx.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		AppName:     cfg.AppName,
		MaxPoolSize: cfg.Mongo.MaxPool,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
