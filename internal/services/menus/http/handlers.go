// Package http serves stored menus and on demand ingest runs
package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"time"

	"ucrfood/internal/modkit/httpkit"
	"ucrfood/internal/platform/net/http/bind"
	"ucrfood/internal/services/menus/domain"
	"ucrfood/internal/services/menus/ingest"
)

// Register mounts the menus endpoints on r
func Register(r httpkit.Router, ing domain.IngestPort, rd domain.ReaderPort) {
	h := &handlers{ing: ing, rd: rd, now: time.Now}
	httpkit.Get(r, "/menus", h.list)
	httpkit.Get(r, "/menus/{location}/{date}", h.get)
	httpkit.PostJSON[RunInput](r, "/runs", stdhttp.StatusOK, h.run)
	httpkit.PostJSON[RecheckInput](r, "/runs/recheck", stdhttp.StatusOK, h.recheck)
}

// MenuQuery filters GET /menus
type MenuQuery struct {
	Date     string `json:"date" validate:"required,menu_date"`
	Location string `json:"location" validate:"omitempty,location_num"`
}

// RunInput is the POST /runs body, tasks is a url, a list of urls or a list of {url, sum}
type RunInput struct {
	Tasks json.RawMessage `json:"tasks" validate:"required"`
}

// RecheckInput is the POST /runs/recheck body
type RecheckInput struct {
	Days int `json:"days" validate:"required,min=1,max=60"`
}

type handlers struct {
	ing domain.IngestPort
	rd  domain.ReaderPort
	now func() time.Time
}

func (h *handlers) list(r *stdhttp.Request) (any, error) {
	q := MenuQuery{
		Date:     r.URL.Query().Get("date"),
		Location: r.URL.Query().Get("location"),
	}
	if err := bind.Struct(q); err != nil {
		return nil, err
	}
	if q.Location != "" {
		rec, err := h.rd.Get(r.Context(), domain.Key{LocationNum: q.Location, MenuDate: q.Date})
		if err != nil {
			return nil, err
		}
		return []domain.MenuRecord{rec}, nil
	}
	return h.rd.ListByDate(r.Context(), q.Date)
}

func (h *handlers) get(r *stdhttp.Request) (any, error) {
	q := MenuQuery{Date: httpkit.Param(r, "date"), Location: httpkit.Param(r, "location")}
	if err := bind.Struct(q); err != nil {
		return nil, err
	}
	return h.rd.Get(r.Context(), domain.Key{LocationNum: q.Location, MenuDate: q.Date})
}

func (h *handlers) run(r *stdhttp.Request, in RunInput) (any, error) {
	tasks, err := ingest.Normalize(in.Tasks)
	if err != nil {
		return nil, err
	}
	return summary(h.ing.Ingest(r.Context(), tasks))
}

func (h *handlers) recheck(r *stdhttp.Request, in RecheckInput) (any, error) {
	return summary(h.ing.Recheck(r.Context(), h.now(), in.Days))
}

// summary keeps the summary of a run its context cut short, records upserted before the cut are in it
// any other error, or a cut before the run started, replaces the summary
func summary(sum domain.RunSummary, err error) (any, error) {
	if err == nil {
		return sum, nil
	}
	if sum.RunID != "" && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return sum, nil
	}
	return nil, err
}
