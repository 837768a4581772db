// Package module wires the menus service to storage, the foodpro client and the router
package module

import (
	"context"
	"time"

	"ucrfood/internal/adapters/ingest/foodpro"
	"ucrfood/internal/modkit"
	"ucrfood/internal/modkit/httpkit"
	phttp "ucrfood/internal/platform/net/http"
	pstrings "ucrfood/internal/platform/strings"
	"ucrfood/internal/services/menus/domain"
	"ucrfood/internal/services/menus/guardrails"
	menushttp "ucrfood/internal/services/menus/http"
	"ucrfood/internal/services/menus/ingest"
	"ucrfood/internal/services/menus/repo"
	"ucrfood/internal/services/menus/service"
)

// Ports exposes the menus module to commands and other modules
type Ports struct {
	Ingest domain.IngestPort
	Reader domain.ReaderPort
}

// ensurer is implemented by every backend that owns a schema
type ensurer interface {
	Ensure(ctx context.Context) error
}

// Module implements the menus module
type Module struct {
	deps    modkit.Deps
	opts    Options
	built   modkit.Built
	ports   Ports
	schemas []ensurer
}

var _ modkit.Builder = func(d modkit.Deps, o ...modkit.Option) modkit.Module { return New(d, o...) }

// New wires the service from deps.Cfg, injected Ports (modkit.WithPorts) replace the wiring
// it panics when the configured backend has no connection in deps
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	m := &Module{deps: deps, opts: FromConfig(deps.Cfg), built: modkit.Build(opts...)}
	if p, ok := modkit.InjectedAs[Ports](m.built); ok {
		m.ports = p
		return m
	}

	var st domain.Store
	switch m.opts.Backend {
	case BackendMongo:
		if deps.Mongo == nil {
			deps.Log.Panic().Msg("menus: mongo backend selected but SERVICE_MONGO_ is not configured")
		}
		mg := repo.NewMongo(deps.Mongo)
		st = mg
		m.schemas = append(m.schemas, mg)
	default:
		if deps.PG == nil {
			deps.Log.Panic().Msg("menus: pg backend selected but SERVICE_PGSQL_ is not configured")
		}
		pg := repo.NewPG(deps.PG, m.opts.StmtTimeout)
		st = pg
		m.schemas = append(m.schemas, pg)
	}

	var sink domain.OutcomeSink
	if m.opts.Outcomes && deps.CH != nil {
		out := repo.NewOutcomes(deps.CH)
		sink = out
		m.schemas = append(m.schemas, out)
	}

	svc := service.New(st, ingest.NewFetcher(m.opts.FetcherOptions()), ingest.NewParser(), sink, service.Config{
		Workers: m.opts.Workers,
		Timeouts: guardrails.Timeouts{
			Fetch: m.opts.FetchTimeout,
			Batch: m.opts.BatchTimeout,
			DB:    m.opts.DBTimeout,
		},
		MaxRetries: m.opts.Retries,
		RetryBase:  m.opts.RetryBase,
	})
	m.ports = Ports{Ingest: svc, Reader: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string {
	if m.built.Name != "" {
		return m.built.Name
	}
	return "menus"
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the resolved settings
func (m *Module) Options() Options { return m.opts }

// Ensure creates tables, collections and indexes of every wired backend
func (m *Module) Ensure(ctx context.Context) error {
	for _, s := range m.schemas {
		if err := s.Ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}

// MountRoutes mounts the menus endpoints, under the module prefix when one is set
func (m *Module) MountRoutes(r phttp.Router) {
	mount := func(r phttp.Router) { menushttp.Register(r, m.ports.Ingest, m.ports.Reader) }
	if m.built.Prefix != "" {
		httpkit.MountUnder(r, pstrings.MustPrefix(m.built.Prefix), m.built.Mw, mount)
		return
	}
	r.Group(func(g phttp.Router) {
		if len(m.built.Mw) > 0 {
			g.Use(m.built.Mw...)
		}
		mount(g)
	})
}

// LocationTasks builds the url block of the locations file starting at now
func (m *Module) LocationTasks(now time.Time) ([]domain.FetchTask, error) {
	locs, err := foodpro.LoadLocations(m.opts.Locations)
	if err != nil {
		return nil, err
	}
	return ingest.Normalize(locs.Block(now, m.opts.Days))
}
