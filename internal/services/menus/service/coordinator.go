package service

import (
	"context"
	"sync"
	"time"

	"ucrfood/internal/platform/logger"
	"ucrfood/internal/services/menus/domain"
	"ucrfood/internal/services/menus/guardrails"
)

// DefaultWorkers is the pool size when Coordinator.Workers is unset
const DefaultWorkers = 8

// Coordinator runs many tasks through a Runner on a bounded pool
type Coordinator struct {
	Runner   Runner
	Workers  int
	Timeouts guardrails.Timeouts
}

// RunAll processes tasks with at most Workers in flight and aggregates on the calling goroutine
// On cancellation tasks not yet started report StatusCanceled, finished records are kept
// and the context error is returned alongside the partial batch
func (c *Coordinator) RunAll(ctx context.Context, tasks []domain.FetchTask) (domain.Batch, error) {
	var b domain.Batch
	if len(tasks) == 0 {
		return b, nil
	}

	bctx, cancel := guardrails.ForBatch(ctx, c.Timeouts)
	defer cancel()

	w := c.Workers
	if w <= 0 {
		w = DefaultWorkers
	}
	w = min(w, len(tasks))

	start := time.Now()
	jobs := make(chan domain.FetchTask)
	results := make(chan domain.Outcome, w)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)
		for i, t := range tasks {
			select {
			case <-bctx.Done():
				for _, rest := range tasks[i:] {
					results <- canceled(rest, bctx.Err())
				}
				return
			case jobs <- t:
			}
		}
	}()

	for range w {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				if err := bctx.Err(); err != nil {
					results <- canceled(t, err)
					continue
				}
				results <- c.Runner.Run(bctx, t)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	b.Outcomes = make([]domain.Outcome, 0, len(tasks))
	for o := range results {
		b.Outcomes = append(b.Outcomes, o)
		if o.Record != nil {
			b.Records = append(b.Records, *o.Record)
		}
	}

	err := bctx.Err()
	counts := b.Counts()
	logger.C(ctx).Info().
		Int("tasks", len(tasks)).
		Int("workers", w).
		Int("changed", counts[domain.StatusChanged]).
		Int("unchanged", counts[domain.StatusUnchanged]).
		Int("failed", len(tasks)-counts[domain.StatusChanged]-counts[domain.StatusUnchanged]).
		Dur("elapsed", time.Since(start)).
		Bool("canceled", err != nil).
		Msg("menus: batch done")
	return b, err
}

func canceled(t domain.FetchTask, err error) domain.Outcome {
	return domain.Outcome{URL: t.URL(), Status: domain.StatusCanceled, Err: err}
}
