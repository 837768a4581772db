// Package service runs menu ingestion: the per task pipeline, the worker pool
// that fans tasks out, and the Service that wires both to storage
package service

import (
	"context"
	"strings"
	"time"

	"ucrfood/internal/core/digest"
	"ucrfood/internal/core/urlfield"
	perr "ucrfood/internal/platform/errors"
	"ucrfood/internal/platform/logger"
	pstrings "ucrfood/internal/platform/strings"
	"ucrfood/internal/services/menus/domain"
	"ucrfood/internal/services/menus/guardrails"

	"github.com/google/uuid"
)

// seams
var (
	nowFn = time.Now
	newID = uuid.New
)

// Runner processes one task, Pipeline is the production implementation
type Runner interface {
	Run(ctx context.Context, task domain.FetchTask) domain.Outcome
}

// Pipeline fetches one page, detects change and parses it into a record
type Pipeline struct {
	Fetch    domain.Fetcher
	Parse    domain.Parser
	Timeouts guardrails.Timeouts
}

// Run never returns an error, every failure is folded into the outcome status
// so one bad page cannot stop its batch
func (p *Pipeline) Run(ctx context.Context, task domain.FetchTask) domain.Outcome {
	start := time.Now()
	out := p.run(ctx, task)
	out.URL = task.URL()
	out.Elapsed = time.Since(start)

	ev := logger.C(ctx).Debug().
		Str("url", out.URL).
		Str("status", string(out.Status)).
		Dur("elapsed", out.Elapsed)
	if out.Err != nil {
		ev = ev.Err(out.Err)
	}
	ev.Msg("menus: task done")
	return out
}

func (p *Pipeline) run(ctx context.Context, task domain.FetchTask) domain.Outcome {
	fctx, cancel := guardrails.ForFetch(ctx, p.Timeouts)
	page, err := p.Fetch.Fetch(fctx, task.URL())
	cancel()
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return domain.Outcome{Status: domain.StatusCanceled, Err: cerr}
		}
		if !perr.IsCode(err, perr.ErrorCodeUnreachable) {
			// per fetch deadline or a fetcher that does not classify its errors
			err = perr.Wrap(err, perr.ErrorCodeUnreachable, "fetch menu page")
		}
		return domain.Outcome{Status: domain.StatusUnreachable, Err: err}
	}

	snap := domain.PageSnapshot{Raw: page.Body, ContentType: page.ContentType, Hash: digest.Sum(page.Body)}
	if !digest.Changed(task.KnownHash(), snap.Hash) {
		return domain.Outcome{Status: domain.StatusUnchanged, Hash: snap.Hash}
	}

	loc, menuDate, err := fieldsOf(task.URL())
	if err != nil {
		return domain.Outcome{Status: domain.StatusInvalid, Hash: snap.Hash, Err: err}
	}

	secs, err := p.Parse.Parse(snap.Raw, snap.ContentType)
	if err != nil {
		if !perr.IsCode(err, perr.ErrorCodePageFormat) {
			err = perr.Wrap(err, perr.ErrorCodePageFormat, "parse menu page")
		}
		return domain.Outcome{Status: domain.StatusPageFormat, Hash: snap.Hash, Err: err}
	}
	secs = pstrings.IfEmpty(secs, []domain.MenuSection{})

	rec := &domain.MenuRecord{
		ID:       newID(),
		Location: loc,
		TimeInfo: domain.TimeInfo{
			Generated: nowFn().UTC(),
			MenuDate:  menuDate,
		},
		SourceURL: urlfield.Escape(task.URL()),
		Hash:      snap.Hash,
		Sections:  secs,
	}
	return domain.Outcome{Status: domain.StatusChanged, Hash: snap.Hash, Record: rec}
}

// fieldsOf pulls the location and menu date out of a task url
func fieldsOf(rawURL string) (domain.Location, string, error) {
	found, missing := urlfield.GetAll(rawURL, domain.FieldLocationName, domain.FieldLocationNum, domain.FieldDate)
	for _, n := range []string{domain.FieldLocationName, domain.FieldLocationNum, domain.FieldDate} {
		if v, ok := found[n]; ok && strings.TrimSpace(v) == "" {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return domain.Location{}, "", perr.WithField(
			perr.InvalidArgf("task url lacks %s", strings.Join(missing, ", ")), missing[0])
	}

	menuDate := domain.MenuDateFromURL(found[domain.FieldDate])
	if _, ok := domain.ParseMenuDate(menuDate); !ok {
		return domain.Location{}, "", perr.WithField(
			perr.InvalidArgf("task url date %q is not MM/DD/YYYY", found[domain.FieldDate]), domain.FieldDate)
	}
	return domain.Location{
		Name: strings.TrimSpace(found[domain.FieldLocationName]),
		Num:  strings.TrimSpace(found[domain.FieldLocationNum]),
	}, menuDate, nil
}
