package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ucrfood/internal/platform/store"
	kit "ucrfood/internal/platform/testkit"
)

type tag string

func (t tag) String() string      { return string(t) }
func (t tag) RowsAffected() int64 { return 0 }

// recQ records every statement and runs Tx inline on itself
type recQ struct {
	stmts []string
	fail  string
}

func (q *recQ) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	q.stmts = append(q.stmts, sql)
	if q.fail != "" && strings.Contains(sql, q.fail) {
		return nil, errors.New("exec failed")
	}
	return tag("OK"), nil
}
func (q *recQ) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (q *recQ) QueryRow(context.Context, string, ...any) store.Row        { return nil }
func (q *recQ) Tx(_ context.Context, fn func(Queryer) error) error        { return fn(q) }

type pinger struct{ err error }

func (p pinger) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("no deadline")
	}
	return p.err
}

type guarder struct{ err error }

func (g guarder) Guard(context.Context) error { return g.err }

func TestWithBeginHooks_RunsHooksBeforeFn(t *testing.T) {
	q := &recQ{}
	tx := WithBeginHooks(q, StatementTimeout(1500*time.Millisecond), StatementTimeout(0))

	err := WithTx(context.Background(), tx, func(in Queryer) error {
		_, err := in.Exec(context.Background(), "INSERT INTO menus")
		return err
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"SET LOCAL statement_timeout = 1500", "INSERT INTO menus"}
	if strings.Join(q.stmts, "|") != strings.Join(want, "|") {
		t.Fatalf("statements = %q", q.stmts)
	}
}

func TestWithBeginHooks_HookErrorSkipsFn(t *testing.T) {
	q := &recQ{fail: "statement_timeout"}
	called := false
	err := WithBeginHooks(q, StatementTimeout(time.Second)).Tx(context.Background(), func(Queryer) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Fatalf("hook failure must abort the tx, err=%v called=%v", err, called)
	}
}

func TestWithBeginHooks_NoHooksReturnsInner(t *testing.T) {
	q := &recQ{}
	if got := WithBeginHooks(q); got != TxRunner(q) {
		t.Fatal("no hooks should hand back the inner runner")
	}
}

func TestBindFunc(t *testing.T) {
	q := &recQ{}
	b := BindFunc[*recQ](func(in Queryer) *recQ { return in.(*recQ) })
	if MustBind[*recQ](b, q) != q {
		t.Fatal("MustBind should pass the queryer through")
	}
	kit.MustPanic(t, func() { RequireQueryer(nil) })
}

func TestMustPingAndGuard(t *testing.T) {
	MustPing(context.Background(), "pg", pinger{})
	kit.MustPanic(t, func() { MustPing(context.Background(), "pg", pinger{err: errors.New("down")}) })
	kit.MustPanic(t, func() { MustPing(context.Background(), "pg", nil) })

	MustGuard(context.Background(), guarder{})
	kit.MustPanic(t, func() { MustGuard(context.Background(), guarder{err: errors.New("ch down")}) })
}
