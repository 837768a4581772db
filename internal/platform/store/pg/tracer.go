package pg

import (
	"context"
	"strings"

	"ucrfood/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent is reported once per statement after it finishes
type QueryEvent struct {
	SQL       string
	Args      any
	ElapsedUS int64
	Err       error
	Slow      bool
}

type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs each statement on its own debug-level child of root
// slow statements are logged at warn
func Tracer(root logger.Logger) QueryTracer {
	return logTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type logTracer struct{ log logger.Logger }

func (lt logTracer) OnQuery(_ context.Context, ev QueryEvent) {
	level := zerolog.InfoLevel
	if ev.Slow {
		level = zerolog.WarnLevel
	}
	lt.log.WithLevel(level).
		Float64("elapsed_ms", float64(ev.ElapsedUS)/1000).
		Bool("slow", ev.Slow).
		Str("sql", squash(ev.SQL)).
		Interface("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

// squash puts a multi-line statement on one line
func squash(sql string) string { return strings.Join(strings.Fields(sql), " ") }
