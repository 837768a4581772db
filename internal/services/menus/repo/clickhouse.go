package repo

import (
	"context"
	"time"

	perr "ucrfood/internal/platform/errors"
	"ucrfood/internal/platform/store"
	"ucrfood/internal/services/menus/domain"
)

// OutcomesTable receives one row per task of every run
const OutcomesTable = "menu_fetch_outcomes"

const outcomesDDL = `CREATE TABLE IF NOT EXISTS menu_fetch_outcomes (
	run_id       String,
	at           DateTime64(3, 'UTC'),
	url          String,
	status       LowCardinality(String),
	error_code   LowCardinality(String),
	error        String,
	hash         String,
	location_num String,
	menu_date    String,
	elapsed_ms   UInt32
) ENGINE = MergeTree
ORDER BY (at, status)`

// Outcomes writes task outcomes to ClickHouse
type Outcomes struct {
	ch store.Clickhouse
}

var _ domain.OutcomeSink = (*Outcomes)(nil)

// NewOutcomes wraps ch
func NewOutcomes(ch store.Clickhouse) *Outcomes {
	if ch == nil {
		panic("menus outcomes require a non nil Clickhouse")
	}
	return &Outcomes{ch: ch}
}

// Ensure creates the outcomes table
func (o *Outcomes) Ensure(ctx context.Context) error {
	if err := o.ch.Exec(ctx, outcomesDDL); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "menus: ensure outcomes table")
	}
	return nil
}

// WriteOutcomes implements domain.OutcomeSink in one batch
func (o *Outcomes) WriteOutcomes(ctx context.Context, runID string, at time.Time, outs []domain.Outcome) error {
	if err := o.ch.Insert(ctx, OutcomesTable, outcomeRows(runID, at, outs)); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDB, "menus: write outcomes")
	}
	return nil
}

func outcomeRows(runID string, at time.Time, outs []domain.Outcome) [][]any {
	rows := make([][]any, 0, len(outs))
	for _, out := range outs {
		var code, msg string
		if out.Err != nil {
			code, msg = perr.CodeOf(out.Err).String(), out.Err.Error()
		}
		k, _ := domain.KeyFromURL(out.URL)
		rows = append(rows, []any{
			runID,
			at.UTC(),
			out.URL,
			string(out.Status),
			code,
			msg,
			out.Hash,
			k.LocationNum,
			k.MenuDate,
			uint32(min(out.Elapsed.Milliseconds(), int64(^uint32(0)))),
		})
	}
	return rows
}
