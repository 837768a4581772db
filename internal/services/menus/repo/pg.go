// Package repo persists menu records in Postgres or MongoDB and task outcomes in ClickHouse
package repo

import (
	"context"
	"encoding/json"
	"time"

	"ucrfood/internal/modkit/repokit"
	perr "ucrfood/internal/platform/errors"
	"ucrfood/internal/platform/store"
	pstrings "ucrfood/internal/platform/strings"
	ptime "ucrfood/internal/platform/time"
	"ucrfood/internal/services/menus/domain"
)

// Table is the Postgres table and Mongo collection name
const Table = "menus"

var pgSchema = []string{
	`CREATE TABLE IF NOT EXISTS menus (
		id            uuid        PRIMARY KEY,
		location_name text        NOT NULL,
		location_num  text        NOT NULL,
		menu_date     text        NOT NULL,
		menu_day      date        NOT NULL,
		generated_at  timestamptz NOT NULL,
		updated_at    timestamptz NULL,
		source_url    text        NOT NULL,
		sum           text        NOT NULL,
		menus         json        NOT NULL,
		CONSTRAINT menus_location_day_key UNIQUE (location_num, menu_date)
	)`,
	`CREATE INDEX IF NOT EXISTS menus_menu_day_idx ON menus (menu_day)`,
}

const recordCols = `id, location_name, location_num, menu_date, generated_at, updated_at, source_url, sum, menus`

type (
	pgq      struct{ q repokit.Queryer }
	pgBinder struct{}
)

// Bind implements repokit.Binder
func (pgBinder) Bind(q repokit.Queryer) *pgq { return &pgq{q: repokit.RequireQueryer(q)} }

// PG is the Postgres domain.Store, every call runs in its own transaction
type PG struct {
	db   repokit.TxRunner
	bind repokit.Binder[*pgq]
}

var _ domain.Store = (*PG)(nil)

// NewPG wraps db, stmtTimeout > 0 bounds every statement server side
func NewPG(db repokit.TxRunner, stmtTimeout time.Duration) *PG {
	if db == nil {
		panic("menus repo requires a non nil TxRunner")
	}
	return &PG{
		db:   repokit.WithBeginHooks(db, repokit.StatementTimeout(stmtTimeout)),
		bind: pgBinder{},
	}
}

func (s *PG) tx(ctx context.Context, fn func(r *pgq) error) error {
	return s.db.Tx(ctx, func(q repokit.Queryer) error { return fn(repokit.MustBind(s.bind, q)) })
}

// Ensure creates the table and its indexes
func (s *PG) Ensure(ctx context.Context) error {
	return s.tx(ctx, func(r *pgq) error {
		for _, ddl := range pgSchema {
			if _, err := store.Exec(ctx, r.q, ddl); err != nil {
				return perr.FromPostgres(err, "menus: ensure schema")
			}
		}
		return nil
	})
}

// KnownHashes implements domain.Store
func (s *PG) KnownHashes(ctx context.Context, keys []domain.Key) (map[domain.Key]string, error) {
	out := make(map[domain.Key]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	nums := make([]string, len(keys))
	days := make([]string, len(keys))
	for i, k := range keys {
		nums[i], days[i] = k.LocationNum, k.MenuDate
	}

	type hit struct {
		key domain.Key
		sum string
	}
	err := s.tx(ctx, func(r *pgq) error {
		hits, err := store.Many(ctx, r.q, func(row store.Row) (hit, error) {
			var h hit
			err := row.Scan(&h.key.LocationNum, &h.key.MenuDate, &h.sum)
			return h, err
		}, `SELECT m.location_num, m.menu_date, m.sum
			FROM menus m
			JOIN unnest($1::text[], $2::text[]) AS k(num, day)
			  ON m.location_num = k.num AND m.menu_date = k.day`, nums, days)
		if err != nil {
			return err
		}
		for _, h := range hits {
			out[h.key] = h.sum
		}
		return nil
	})
	if err != nil {
		return nil, perr.FromPostgres(err, "menus: known hashes")
	}
	return out, nil
}

// Upsert implements domain.Store, the xmax check tells a fresh insert from a conflict update
func (s *PG) Upsert(ctx context.Context, rec domain.MenuRecord, now time.Time) (domain.MenuRecord, bool, error) {
	day, ok := rec.Day()
	if !ok {
		return domain.MenuRecord{}, false, perr.WithField(perr.InvalidArgf("menu date %q is not MM-DD-YYYY", rec.TimeInfo.MenuDate), "menu_date")
	}
	menus, err := json.Marshal(sections(rec.Sections))
	if err != nil {
		return domain.MenuRecord{}, false, perr.Wrap(err, perr.ErrorCodeJSON, "menus: encode sections")
	}

	var inserted bool
	err = s.tx(ctx, func(r *pgq) error {
		return r.q.QueryRow(ctx, `
			INSERT INTO menus (id, location_name, location_num, menu_date, menu_day,
			                   generated_at, updated_at, source_url, sum, menus)
			VALUES ($1, $2, $3, $4, $5, $6, NULL, $7, $8, $9::json)
			ON CONFLICT (location_num, menu_date) DO UPDATE SET
				location_name = EXCLUDED.location_name,
				source_url    = EXCLUDED.source_url,
				sum           = EXCLUDED.sum,
				menus         = EXCLUDED.menus,
				updated_at    = $10
			RETURNING id, generated_at, updated_at, (xmax = 0)`,
			rec.ID, rec.Location.Name, rec.Location.Num, rec.TimeInfo.MenuDate, day,
			rec.TimeInfo.Generated, rec.SourceURL, rec.Hash, string(menus), now,
		).Scan(&rec.ID, &rec.TimeInfo.Generated, &rec.TimeInfo.Updated, &inserted)
	})
	if err != nil {
		return domain.MenuRecord{}, false, perr.FromPostgresWithField(err, "menus: upsert "+rec.Key().String())
	}
	rec.TimeInfo.Generated = rec.TimeInfo.Generated.UTC()
	rec.TimeInfo.Updated = ptime.UTCPtr(rec.TimeInfo.Updated)
	return rec, inserted, nil
}

// Get implements domain.Store
func (s *PG) Get(ctx context.Context, key domain.Key) (domain.MenuRecord, error) {
	var rec domain.MenuRecord
	err := s.tx(ctx, func(r *pgq) error {
		var err error
		rec, err = store.One(ctx, r.q, scanRecord,
			`SELECT `+recordCols+` FROM menus WHERE location_num = $1 AND menu_date = $2`,
			key.LocationNum, key.MenuDate)
		return err
	})
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.MenuRecord{}, perr.NotFoundf("menu %s not found", key)
	}
	if err != nil {
		return domain.MenuRecord{}, perr.FromPostgres(err, "menus: get "+key.String())
	}
	return rec, nil
}

// ListByDate implements domain.Store
func (s *PG) ListByDate(ctx context.Context, menuDate string) ([]domain.MenuRecord, error) {
	var out []domain.MenuRecord
	err := s.tx(ctx, func(r *pgq) error {
		var err error
		out, err = store.Many(ctx, r.q, scanRecord,
			`SELECT `+recordCols+` FROM menus WHERE menu_date = $1 ORDER BY location_num`, menuDate)
		return err
	})
	if err != nil {
		return nil, perr.FromPostgres(err, "menus: list "+menuDate)
	}
	return pstrings.IfEmpty(out, []domain.MenuRecord{}), nil
}

// HashesWithin implements domain.Store
func (s *PG) HashesWithin(ctx context.Context, from time.Time, days int) ([]domain.PageInfo, error) {
	lo, hi := window(from, days)
	var out []domain.PageInfo
	err := s.tx(ctx, func(r *pgq) error {
		var err error
		out, err = store.Many(ctx, r.q, func(row store.Row) (domain.PageInfo, error) {
			var p domain.PageInfo
			err := row.Scan(&p.URL, &p.Sum)
			return p, err
		}, `SELECT source_url, sum FROM menus
			WHERE menu_day >= $1 AND menu_day < $2
			ORDER BY menu_day, location_num`, lo, hi)
		return err
	})
	if err != nil {
		return nil, perr.FromPostgres(err, "menus: hashes within range")
	}
	return out, nil
}

func scanRecord(row store.Row) (domain.MenuRecord, error) {
	var (
		rec  domain.MenuRecord
		raw  []byte
		upd  *time.Time
		gen  time.Time
		secs []domain.MenuSection
	)
	if err := row.Scan(
		&rec.ID, &rec.Location.Name, &rec.Location.Num, &rec.TimeInfo.MenuDate,
		&gen, &upd, &rec.SourceURL, &rec.Hash, &raw,
	); err != nil {
		return domain.MenuRecord{}, err
	}
	if err := json.Unmarshal(raw, &secs); err != nil {
		return domain.MenuRecord{}, perr.Wrap(err, perr.ErrorCodeJSON, "menus: decode sections")
	}
	rec.TimeInfo.Generated = gen.UTC()
	rec.TimeInfo.Updated = ptime.UTCPtr(upd)
	rec.Sections = sections(secs)
	return rec, nil
}

// window returns the [lo, hi) day range starting at from's calendar day
func window(from time.Time, days int) (time.Time, time.Time) {
	lo := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	return lo, lo.AddDate(0, 0, max(days, 0))
}

func sections(s []domain.MenuSection) []domain.MenuSection {
	return pstrings.IfEmpty(s, []domain.MenuSection{})
}
