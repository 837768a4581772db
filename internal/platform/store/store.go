// Package store opens the storage backends a process needs and hands repos narrow seams over them
package store

import (
	"context"
	"errors"
	"fmt"

	"ucrfood/internal/platform/logger"

	"go.mongodb.org/mongo-driver/mongo"
)

// Store holds whichever backends were enabled; a nil seam means that backend is off
type Store struct {
	Log logger.Logger

	PG    TxRunner   // menus and recheck queries
	CH    Clickhouse // run outcomes, optional
	Mongo Documents  // alternative menus backend
}

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the sql surface shared by the pool and an open transaction
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also open a transaction; fn's error rolls it back
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the append-mostly analytics seam
type Clickhouse interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

// Documents hands out mongo collections from the configured database
type Documents interface {
	Collection(name string) *mongo.Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Pinger is implemented by seams that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open connects every backend cfg enables, in pg, ch, mongo order
// on failure anything already opened is closed again
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Logger()

	fail := func(err error) (*Store, error) {
		_ = s.Close(ctx)
		return nil, err
	}
	var err error
	if cfg.PG.Enabled {
		if s.PG, err = openPG(ctx, cfg, s.Log); err != nil {
			return fail(err)
		}
	}
	if cfg.CH.Enabled {
		if s.CH, err = openCH(ctx, cfg); err != nil {
			return fail(err)
		}
	}
	if cfg.Mongo.Enabled {
		if s.Mongo, err = openMongo(ctx, cfg); err != nil {
			return fail(err)
		}
	}
	return s, nil
}

type backend struct {
	name string
	seam any
}

func (s *Store) backends() []backend {
	var out []backend
	if s.PG != nil {
		out = append(out, backend{"pg", s.PG})
	}
	if s.CH != nil {
		out = append(out, backend{"ch", s.CH})
	}
	if s.Mongo != nil {
		out = append(out, backend{"mongo", s.Mongo})
	}
	return out
}

// Guard pings every open backend that supports it and joins the failures, each prefixed by its name
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store: nil")
	}
	var errs []error
	for _, b := range s.backends() {
		p, ok := b.seam.(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close releases every open backend, mongo first and pg last
func (s *Store) Close(ctx context.Context) error {
	bs := s.backends()
	var errs []error
	for i := len(bs) - 1; i >= 0; i-- {
		var err error
		switch c := bs[i].seam.(type) {
		case interface{ Close(context.Context) error }:
			err = c.Close(ctx)
		case interface{ Close() error }:
			err = c.Close()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", bs[i].name, err))
		}
	}
	return errors.Join(errs...)
}
