package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"ucrfood/internal/services/menus/domain"
	"ucrfood/internal/services/menus/guardrails"
)

// funcRunner adapts a closure to Runner
type funcRunner func(ctx context.Context, t domain.FetchTask) domain.Outcome

func (f funcRunner) Run(ctx context.Context, t domain.FetchTask) domain.Outcome { return f(ctx, t) }

func changedOutcome(t domain.FetchTask) domain.Outcome {
	return domain.Outcome{
		URL:    t.URL(),
		Status: domain.StatusChanged,
		Record: &domain.MenuRecord{SourceURL: t.URL()},
	}
}

func taskList(t *testing.T, n int) []domain.FetchTask {
	out := make([]domain.FetchTask, n)
	for i := range n {
		out[i] = mustTask(t, pageURL(fmt.Sprintf("%02d", i)), "")
	}
	return out
}

func TestRunAll_Empty(t *testing.T) {
	c := &Coordinator{Runner: funcRunner(func(context.Context, domain.FetchTask) domain.Outcome {
		t.Fatal("runner called for empty input")
		return domain.Outcome{}
	})}
	b, err := c.RunAll(context.Background(), nil)
	if err != nil || len(b.Outcomes) != 0 || len(b.Records) != 0 {
		t.Fatalf("empty run: %+v %v", b, err)
	}
}

func TestRunAll_BoundsConcurrency(t *testing.T) {
	var inflight, peak atomic.Int32
	run := funcRunner(func(_ context.Context, tk domain.FetchTask) domain.Outcome {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inflight.Add(-1)
		return changedOutcome(tk)
	})

	tasks := taskList(t, 24)
	b, err := (&Coordinator{Runner: run, Workers: 3}).RunAll(context.Background(), tasks)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if got := peak.Load(); got > 3 {
		t.Fatalf("peak in flight %d exceeds 3 workers", got)
	}
	if len(b.Outcomes) != 24 || len(b.Records) != 24 {
		t.Fatalf("outcomes %d records %d", len(b.Outcomes), len(b.Records))
	}

	var got []string
	for _, r := range b.Records {
		got = append(got, r.SourceURL)
	}
	sort.Strings(got)
	for i := 1; i < len(got); i++ {
		if got[i] == got[i-1] {
			t.Fatalf("task %s processed twice", got[i])
		}
	}
}

func TestRunAll_IsolatesFailures(t *testing.T) {
	tasks := taskList(t, 6)
	bad := tasks[2].URL()
	run := funcRunner(func(_ context.Context, tk domain.FetchTask) domain.Outcome {
		if tk.URL() == bad {
			return domain.Outcome{URL: tk.URL(), Status: domain.StatusUnreachable, Err: errors.New("down")}
		}
		return changedOutcome(tk)
	})

	b, err := (&Coordinator{Runner: run, Workers: 4}).RunAll(context.Background(), tasks)
	if err != nil {
		t.Fatalf("a failing task must not fail the batch: %v", err)
	}
	c := b.Counts()
	if c[domain.StatusChanged] != 5 || c[domain.StatusUnreachable] != 1 || len(b.Records) != 5 {
		t.Fatalf("counts %v records %d", c, len(b.Records))
	}
}

func TestRunAll_CancelKeepsFinishedRecords(t *testing.T) {
	tasks := taskList(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trigger := tasks[3].URL()
	run := funcRunner(func(ctx context.Context, tk domain.FetchTask) domain.Outcome {
		if ctx.Err() != nil {
			return domain.Outcome{URL: tk.URL(), Status: domain.StatusCanceled, Err: ctx.Err()}
		}
		if tk.URL() == trigger {
			cancel()
		}
		return changedOutcome(tk)
	})

	b, err := (&Coordinator{Runner: run, Workers: 1}).RunAll(ctx, tasks)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err %v, want context.Canceled", err)
	}
	if len(b.Outcomes) != len(tasks) {
		t.Fatalf("every task needs an outcome: got %d", len(b.Outcomes))
	}
	c := b.Counts()
	if c[domain.StatusChanged] != 4 || c[domain.StatusCanceled] != 6 {
		t.Fatalf("counts %v", c)
	}
	if len(b.Records) != 4 {
		t.Fatalf("finished records lost: %d", len(b.Records))
	}
}

func TestRunAll_BatchTimeout(t *testing.T) {
	tasks := taskList(t, 5)
	run := funcRunner(func(ctx context.Context, tk domain.FetchTask) domain.Outcome {
		<-ctx.Done()
		return domain.Outcome{URL: tk.URL(), Status: domain.StatusCanceled, Err: ctx.Err()}
	})

	c := &Coordinator{Runner: run, Workers: 2, Timeouts: guardrails.Timeouts{Batch: 20 * time.Millisecond}}
	b, err := c.RunAll(context.Background(), tasks)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err %v, want deadline", err)
	}
	if got := b.Counts()[domain.StatusCanceled]; got != 5 {
		t.Fatalf("canceled %d, want 5", got)
	}
}
