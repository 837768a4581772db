package service

import (
	"context"
	"math/rand"
	"net/url"
	"time"

	perr "ucrfood/internal/platform/errors"
	"ucrfood/internal/platform/logger"
	"ucrfood/internal/services/menus/domain"
	"ucrfood/internal/services/menus/guardrails"
)

const (
	defaultDBTimeout = 30 * time.Second
	defaultRetryBase = 200 * time.Millisecond
)

// Config tunes the ingest Service
type Config struct {
	Workers  int
	Timeouts guardrails.Timeouts

	// upsert attempts per record; <=0 -> 1
	MaxRetries int
	// base backoff between upsert attempts; <=0 -> 200ms
	RetryBase time.Duration
}

// Service resolves known hashes, runs a batch and persists what changed
type Service struct {
	Store domain.Store
	Sink  domain.OutcomeSink // optional
	Coord *Coordinator
	Cfg   Config
}

var (
	_ domain.IngestPort = (*Service)(nil)
	_ domain.ReaderPort = (*Service)(nil)
)

// New constructs the Service, sink may be nil
func New(store domain.Store, f domain.Fetcher, p domain.Parser, sink domain.OutcomeSink, cfg Config) *Service {
	if store == nil {
		panic("menus.Service requires a non nil Store")
	}
	if f == nil || p == nil {
		panic("menus.Service requires a Fetcher and a Parser")
	}
	return &Service{
		Store: store,
		Sink:  sink,
		Coord: &Coordinator{
			Runner:   &Pipeline{Fetch: f, Parse: p, Timeouts: cfg.Timeouts},
			Workers:  cfg.Workers,
			Timeouts: cfg.Timeouts,
		},
		Cfg: cfg,
	}
}

// Ingest runs tasks once and upserts every changed record
// records that finished before a cancellation are still stored, the context error is returned with the summary
func (s *Service) Ingest(ctx context.Context, tasks []domain.FetchTask) (domain.RunSummary, error) {
	runID := newID().String()
	ctx = logger.WithRun(ctx, runID)
	started := nowFn().UTC()
	sum := domain.RunSummary{RunID: runID, StartedAt: started, Tasks: len(tasks)}

	tasks = s.resolveKnown(ctx, tasks)

	batch, runErr := s.Coord.RunAll(ctx, tasks)
	sum.Counts = batch.Counts()
	sum.Canceled = runErr != nil

	for _, o := range batch.Outcomes {
		if o.Status == domain.StatusChanged || o.Status == domain.StatusUnchanged {
			continue
		}
		sum.Failures = append(sum.Failures, domain.TaskFailure{URL: o.URL, Status: o.Status, Error: errText(o.Err)})
	}

	now := nowFn().UTC()
	for _, rec := range batch.Records {
		_, inserted, err := s.upsert(ctx, rec, now)
		if err != nil {
			sum.UpsertFailed++
			sum.Failures = append(sum.Failures, domain.TaskFailure{URL: rec.SourceURL, Status: domain.StatusChanged, Error: err.Error()})
			logger.C(ctx).Error().Err(err).Str("key", rec.Key().String()).Msg("menus: upsert failed")
			continue
		}
		sum.Upserted++
		if inserted {
			sum.Inserted++
		}
	}

	if s.Sink != nil && len(batch.Outcomes) > 0 {
		sctx, cancel := guardrails.Detached(ctx, s.dbTimeout())
		if err := s.Sink.WriteOutcomes(sctx, runID, started, batch.Outcomes); err != nil {
			logger.C(ctx).Warn().Err(err).Msg("menus: outcome sink failed")
		}
		cancel()
	}

	sum.Elapsed = nowFn().Sub(started)
	logger.C(ctx).Info().
		Int("tasks", sum.Tasks).
		Int("upserted", sum.Upserted).
		Int("inserted", sum.Inserted).
		Int("upsert_failed", sum.UpsertFailed).
		Bool("canceled", sum.Canceled).
		Dur("elapsed", sum.Elapsed).
		Msg("menus: run done")
	return sum, runErr
}

// Recheck re-ingests every stored page dated from..from+days, passing the stored digests as known hashes
func (s *Service) Recheck(ctx context.Context, from time.Time, days int) (domain.RunSummary, error) {
	if days <= 0 {
		return domain.RunSummary{}, perr.WithField(perr.Validationf("days must be positive"), "days")
	}
	dctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	infos, err := s.Store.HashesWithin(dctx, from, days)
	cancel()
	if err != nil {
		return domain.RunSummary{}, err
	}

	tasks := make([]domain.FetchTask, 0, len(infos))
	for _, in := range infos {
		raw, err := url.QueryUnescape(in.URL)
		if err != nil {
			raw = in.URL
		}
		t, err := domain.NewFetchTask(raw, in.Sum)
		if err != nil {
			logger.C(ctx).Warn().Err(err).Str("url", in.URL).Msg("menus: skipping stored url")
			continue
		}
		tasks = append(tasks, t)
	}
	return s.Ingest(ctx, tasks)
}

// Get returns the record of one location on one day
func (s *Service) Get(ctx context.Context, key domain.Key) (domain.MenuRecord, error) {
	if err := checkDate(key.MenuDate); err != nil {
		return domain.MenuRecord{}, err
	}
	if key.LocationNum == "" {
		return domain.MenuRecord{}, perr.WithField(perr.Validationf("location is required"), "location")
	}
	dctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer cancel()
	return s.Store.Get(dctx, key)
}

// ListByDate returns every location's record for menuDate
func (s *Service) ListByDate(ctx context.Context, menuDate string) ([]domain.MenuRecord, error) {
	if err := checkDate(menuDate); err != nil {
		return nil, err
	}
	dctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	defer cancel()
	return s.Store.ListByDate(dctx, menuDate)
}

// resolveKnown fills KnownHash from storage for tasks that came without one
// a lookup failure only costs change detection, so it is logged and the run goes on
func (s *Service) resolveKnown(ctx context.Context, tasks []domain.FetchTask) []domain.FetchTask {
	var keys []domain.Key
	idx := map[domain.Key][]int{}
	for i, t := range tasks {
		if t.KnownHash() != "" {
			continue
		}
		k, ok := domain.KeyFromURL(t.URL())
		if !ok {
			continue
		}
		if _, seen := idx[k]; !seen {
			keys = append(keys, k)
		}
		idx[k] = append(idx[k], i)
	}
	if len(keys) == 0 {
		return tasks
	}

	dctx, cancel := guardrails.ForDB(ctx, s.Cfg.Timeouts)
	known, err := s.Store.KnownHashes(dctx, keys)
	cancel()
	if err != nil {
		logger.C(ctx).Warn().Err(err).Int("keys", len(keys)).Msg("menus: known hash lookup failed; treating pages as new")
		return tasks
	}

	out := append([]domain.FetchTask(nil), tasks...)
	for k, h := range known {
		for _, i := range idx[k] {
			out[i] = out[i].WithKnownHash(h)
		}
	}
	return out
}

// upsert retries transient storage errors with jittered exponential backoff
// it runs detached from ctx so a canceled run still keeps the records it finished
func (s *Service) upsert(ctx context.Context, rec domain.MenuRecord, now time.Time) (domain.MenuRecord, bool, error) {
	attempts := max(s.Cfg.MaxRetries, 1)
	base := s.Cfg.RetryBase
	if base <= 0 {
		base = defaultRetryBase
	}

	var last error
	for i := range attempts {
		dctx, cancel := guardrails.Detached(ctx, s.dbTimeout())
		stored, inserted, err := s.Store.Upsert(dctx, rec, now)
		cancel()
		if err == nil {
			return stored, inserted, nil
		}
		last = err
		if !perr.Retryable(err) || i == attempts-1 {
			break
		}
		d := min(base<<i, 10*time.Second)
		j := d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
		_ = sleepCtx(context.WithoutCancel(ctx), j)
	}
	return domain.MenuRecord{}, false, last
}

func (s *Service) dbTimeout() time.Duration {
	if s.Cfg.Timeouts.DB > 0 {
		return s.Cfg.Timeouts.DB
	}
	return defaultDBTimeout
}

func checkDate(menuDate string) error {
	if _, ok := domain.ParseMenuDate(menuDate); !ok {
		return perr.WithField(perr.Validationf("date %q is not MM-DD-YYYY", menuDate), "date")
	}
	return nil
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
