package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"ucrfood/internal/core/version"
	"ucrfood/internal/modkit"
	"ucrfood/internal/modkit/module"
	"ucrfood/internal/platform/config"
	"ucrfood/internal/platform/logger"
	"ucrfood/internal/platform/store"
	"ucrfood/internal/services/menus/domain"
	"ucrfood/internal/services/menus/ingest"
	menusmod "ucrfood/internal/services/menus/module"
)

// setFlagEnv exports a flag value under its config key, empty values leave the key alone
func setFlagEnv(key, val string) error {
	if val == "" {
		return nil
	}
	return os.Setenv(key, val)
}

var openStore = store.Open

func main() { os.Exit(run(os.Args[1:])) }

// run returns the process exit code: 1 when setup, a task or an upsert failed, 2 for bad flags
func run(args []string) int {
	fs := flag.NewFlagSet("ucrfood-ingest", flag.ContinueOnError)
	var (
		fConfig    = fs.String("config", "", "optional INI file with settings, the environment wins")
		fLocations = fs.String("locations", "", "locations INI file (CORE_MENUS_LOCATIONS)")
		fDays      = fs.Int("days", 0, "days per location in the url block, 0 keeps CORE_MENUS_DAYS")
		fRecheck   = fs.Int("recheck", 0, "re-fetch stored menus dated within the next N days instead of the block")
		fNoSchema  = fs.Bool("no-schema", false, "skip creating tables and indexes")
	)
	var urls stringList
	fs.Var(&urls, "url", "ingest this url only, repeatable")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	l := logger.Get()
	bi := version.Info("ucrfood-ingest")
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("ingest starting")
	root, err := config.Load(*fConfig)
	if err != nil {
		l.Error().Err(err).Str("path", *fConfig).Msg("config load failed")
		return 1
	}

	days := ""
	if *fDays > 0 {
		days = strconv.Itoa(*fDays)
	}
	if err := errors.Join(
		setFlagEnv("CORE_MENUS_LOCATIONS", *fLocations),
		setFlagEnv("CORE_MENUS_DAYS", days),
	); err != nil {
		l.Error().Err(err).Msg("exporting flags failed")
		return 1
	}

	opts := menusmod.FromConfig(root)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, store.FromConfig(root, "ucrfood", "ingest", store.Need{
		PG:    opts.Backend == menusmod.BackendPG,
		CH:    opts.Outcomes,
		Mongo: opts.Backend == menusmod.BackendMongo,
	}), store.WithLogger(*l))
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return 1
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	mm := menusmod.New(modkit.FromStore(*l, root, st))
	if !*fNoSchema {
		if err := mm.Ensure(ctx); err != nil {
			l.Error().Err(err).Msg("menus schema failed")
			return 1
		}
	}
	ports := module.MustPortsOf[menusmod.Ports](mm)

	var sum domain.RunSummary
	switch {
	case *fRecheck > 0:
		sum, err = ports.Ingest.Recheck(ctx, time.Now(), *fRecheck)
	default:
		var tasks []domain.FetchTask
		if len(urls) > 0 {
			tasks, err = ingest.Normalize([]string(urls))
		} else {
			tasks, err = mm.LocationTasks(time.Now())
		}
		if err != nil {
			l.Error().Err(err).Msg("building tasks failed")
			return 1
		}
		sum, err = ports.Ingest.Ingest(ctx, tasks)
	}

	ev := l.Info()
	if err != nil {
		ev = l.Warn().Err(err)
	}
	ev.Str("run_id", sum.RunID).
		Int("tasks", sum.Tasks).
		Int("upserted", sum.Upserted).
		Int("inserted", sum.Inserted).
		Int("upsert_failed", sum.UpsertFailed).
		Int("changed", sum.Counts[domain.StatusChanged]).
		Int("unchanged", sum.Counts[domain.StatusUnchanged]).
		Int("failed", len(sum.Failures)).
		Bool("canceled", sum.Canceled).
		Dur("elapsed", sum.Elapsed).
		Msg("ingest finished")
	for _, f := range sum.Failures {
		l.Warn().Str("url", f.URL).Str("status", string(f.Status)).Str("error", f.Error).Msg("task failed")
	}
	if err != nil || len(sum.Failures) > 0 {
		return 1
	}
	return 0
}

// stringList collects a repeatable string flag
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
